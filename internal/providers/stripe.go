package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"

	"africana_backend/internal/models"
	"africana_backend/internal/store"
	"africana_backend/internal/utils"
)

const stripeCurrency = "EUR"

// StripeProvider règle les paiements en EUR via une Checkout Session
// hébergée Stripe. La clé globale stripe.Key est posée dans main.
type StripeProvider struct {
	store       store.Store
	frontendURL string

	// newSession crée la Checkout Session côté Stripe ; injecté pour les
	// tests, session.New en production.
	newSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewStripeProvider(st store.Store) (*StripeProvider, error) {
	if stripe.Key == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY: %w", ErrMissingSecret)
	}
	return &StripeProvider{
		store:       st,
		frontendURL: os.Getenv("FRONTEND_URL"),
		newSession:  session.New,
	}, nil
}

func (p *StripeProvider) Name() string { return "Stripe" }

// stripeMeta est stocké dans Payment.Meta : il relie notre référence
// locale à la session Stripe à re-vérifier.
type stripeMeta struct {
	SessionID string `json:"session_id"`
}

func (p *StripeProvider) InitiatePayment(ctx context.Context, email string, orderID string, amount float64) (json.RawMessage, error) {
	txRef := utils.GenerateRandomStringWithoutSymbols(12)

	currency, err := p.store.GetCurrencyByCode(ctx, stripeCurrency)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrCurrencyNotFound
		}
		return nil, err
	}

	oid, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:     stripe.String(email),
		ClientReferenceID: stripe.String(txRef),
		SuccessURL:        stripe.String(p.frontendURL + "/order/complete?reference=" + txRef),
		CancelURL:         stripe.String(p.frontendURL + "/order/cancelled"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("eur"),
					UnitAmount: stripe.Int64(int64(amount * 100)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Commande Africana " + orderID),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("reference", txRef)

	// Le paiement Pending est persisté AVANT l'appel externe : pas de
	// session Stripe vivante sans trace locale.
	payment := &models.Payment{
		Reference:  txRef,
		OrderID:    oid,
		Channel:    "Stripe",
		Amount:     amount,
		CurrencyID: currency.ID,
		Status:     models.PaymentStatusPending,
		CreatedAt:  time.Now(),
	}
	if err := p.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	sess, err := p.newSession(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderResponse, err)
	}

	meta, _ := json.Marshal(stripeMeta{SessionID: sess.ID})
	if err := p.store.UpdatePaymentMeta(ctx, txRef, string(meta)); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{
		"reference":    txRef,
		"session_id":   sess.ID,
		"checkout_url": sess.URL,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(payload), nil
}

func (p *StripeProvider) VerifyTransaction(ctx context.Context, reference string) (*SettlementResult, error) {
	payment, err := p.store.GetPaymentByReference(ctx, reference)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}

	var meta stripeMeta
	if err := json.Unmarshal([]byte(payment.Meta), &meta); err != nil || meta.SessionID == "" {
		return nil, fmt.Errorf("%w: session Stripe inconnue pour %s", ErrProviderResponse, reference)
	}

	sess, err := session.Get(meta.SessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderResponse, err)
	}

	matched := sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid &&
		sess.AmountTotal == int64(payment.Amount*100) &&
		string(sess.Currency) == "eur"

	raw, _ := json.Marshal(map[string]interface{}{
		"session_id":     sess.ID,
		"payment_status": sess.PaymentStatus,
		"amount_total":   sess.AmountTotal,
		"currency":       sess.Currency,
	})

	return settle(ctx, p.store, payment, string(raw), matched)
}
