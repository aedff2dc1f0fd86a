package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
	OrderStatusFailed    = "Failed"
)

type Order struct {
	ID         gocql.UUID  `json:"id"`
	Code       string      `json:"code"`
	CustomerID gocql.UUID  `json:"customerId"`
	SubTotal   float64     `json:"subTotal"`
	TaxID      int         `json:"taxId"`
	Total      float64     `json:"total"`
	Address1   string      `json:"address1"`
	Address2   string      `json:"address2,omitempty"`
	PostalCode string      `json:"postalCode"`
	City       string      `json:"city"`
	State      string      `json:"state"`
	Country    string      `json:"country"`
	Notes      string      `json:"notes,omitempty"`
	Status     string      `json:"status"`
	Items      []OrderItem `json:"orderItems,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// OrderItem fige le prix au moment de la commande : les changements
// de prix ultérieurs ne touchent jamais une commande existante.
type OrderItem struct {
	OrderID          gocql.UUID `json:"orderId"`
	ProductVariantID gocql.UUID `json:"productVariantId"`
	PricePerItem     float64    `json:"pricePerItem"`
	Quantity         int        `json:"quantity"`
}
