package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	PaymentStatusPending    = "Pending"
	PaymentStatusSuccessful = "Successful"
	PaymentStatusFailed     = "Failed"
)

// Payment est identifié par sa référence externe (tx_ref) : elle est
// unique et sert de clé d'idempotence pour le règlement.
type Payment struct {
	Reference   string     `json:"reference"`
	OrderID     gocql.UUID `json:"orderId"`
	Channel     string     `json:"channel"` // Flutterwave, Squadco, Stripe
	Amount      float64    `json:"amount"`
	CurrencyID  int        `json:"currencyId"`
	Status      string     `json:"status"`
	Meta        string     `json:"meta,omitempty"` // réponse brute du provider (JSON)
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
