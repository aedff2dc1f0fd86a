package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gocql/gocql"
)

// Erreurs du flux de règlement, traduites en JSON à la frontière HTTP.
var (
	ErrReferenceNotFound = errors.New("Transaction reference not found")
	ErrAlreadyCompleted  = errors.New("Order has already been completed")
	ErrPaymentFailed     = errors.New("Payment failed")
	ErrCurrencyNotFound  = errors.New("Currency not found")
	ErrMissingSecret     = errors.New("clé secrète du provider manquante")
	ErrProviderResponse  = errors.New("réponse du provider invalide")
)

// PaymentProvider est la capacité commune à tous les providers de
// paiement hébergés (Flutterwave, Squad, Stripe).
type PaymentProvider interface {
	Name() string

	// InitiatePayment génère une référence de transaction unique, persiste
	// un Payment en Pending AVANT l'appel externe, puis retourne la réponse
	// du provider telle quelle (en général l'URL de checkout hébergé).
	InitiatePayment(ctx context.Context, email string, orderID string, amount float64) (json.RawMessage, error)

	// VerifyTransaction re-vérifie la transaction auprès du provider,
	// compare statut/montant/devise avec le Payment local, puis règle la
	// commande exactement une fois.
	VerifyTransaction(ctx context.Context, reference string) (*SettlementResult, error)
}

// httpClient partagé par les providers REST. Le timeout borne les
// appels sortants : une vérification ne peut pas bloquer une requête
// entrante indéfiniment.
var httpClient = &http.Client{Timeout: 15 * time.Second}

func parseOrderID(orderID string) (gocql.UUID, error) {
	oid, err := gocql.ParseUUID(orderID)
	if err != nil {
		return gocql.UUID{}, fmt.Errorf("id de commande invalide %q: %v", orderID, err)
	}
	return oid, nil
}
