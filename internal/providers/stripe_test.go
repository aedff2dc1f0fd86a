package providers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"africana_backend/internal/models"

	"github.com/stripe/stripe-go/v83"
)

func newTestStripe(st *fakeStore, newSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)) *StripeProvider {
	return &StripeProvider{
		store:       st,
		frontendURL: "http://localhost:3000",
		newSession:  newSession,
	}
}

func TestStripeInitiatePersistsPendingBeforeSessionCreate(t *testing.T) {
	st := newFakeStore()
	st.currs["EUR"] = &models.Currency{ID: 3, Code: "EUR", Name: "Euro", IsActive: true}
	orderID, _ := st.seedOrder(1075, 1, 5)

	// La création de session échoue : le paiement Pending doit déjà
	// exister localement à ce moment-là.
	p := newTestStripe(st, func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		st.mu.Lock()
		defer st.mu.Unlock()
		if len(st.payments) != 1 {
			t.Errorf("paiements persistés avant l'appel Stripe = %d, attendu 1", len(st.payments))
		}
		for _, pay := range st.payments {
			if pay.Status != models.PaymentStatusPending {
				t.Errorf("statut avant l'appel Stripe = %s, attendu Pending", pay.Status)
			}
		}
		return nil, errors.New("stripe indisponible")
	})

	_, err := p.InitiatePayment(context.Background(), "client@test.com", orderID.String(), 1075)
	if !errors.Is(err, ErrProviderResponse) {
		t.Fatalf("err = %v, attendu ErrProviderResponse", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.payments) != 1 {
		t.Fatalf("paiements persistés = %d, attendu 1", len(st.payments))
	}
}

func TestStripeInitiateStoresSessionID(t *testing.T) {
	st := newFakeStore()
	st.currs["EUR"] = &models.Currency{ID: 3, Code: "EUR", Name: "Euro", IsActive: true}
	orderID, _ := st.seedOrder(1075, 1, 5)

	p := newTestStripe(st, func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		if got := *params.CustomerEmail; got != "client@test.com" {
			t.Errorf("CustomerEmail = %q", got)
		}
		if got := *params.LineItems[0].PriceData.UnitAmount; got != 107500 {
			t.Errorf("UnitAmount = %d, attendu 107500", got)
		}
		return &stripe.CheckoutSession{
			ID:  "cs_test_123",
			URL: "https://checkout.stripe.com/c/pay/cs_test_123",
		}, nil
	})

	payload, err := p.InitiatePayment(context.Background(), "client@test.com", orderID.String(), 1075)
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	var body map[string]string
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("payload non JSON: %v", err)
	}
	if body["session_id"] != "cs_test_123" || body["checkout_url"] == "" {
		t.Errorf("payload inattendu: %v", body)
	}

	pay, err := st.GetPaymentByReference(context.Background(), body["reference"])
	if err != nil {
		t.Fatalf("paiement introuvable pour %q: %v", body["reference"], err)
	}
	if pay.Status != models.PaymentStatusPending {
		t.Errorf("statut = %s, attendu Pending", pay.Status)
	}
	if !strings.Contains(pay.Meta, "cs_test_123") {
		t.Errorf("meta sans l'id de session: %q", pay.Meta)
	}
}

func TestStripeInitiateUnknownCurrency(t *testing.T) {
	st := newFakeStore()
	orderID, _ := st.seedOrder(1075, 1, 5)

	p := newTestStripe(st, func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		t.Error("appel Stripe inattendu sans devise connue")
		return nil, errors.New("inattendu")
	})

	if _, err := p.InitiatePayment(context.Background(), "client@test.com", orderID.String(), 1075); !errors.Is(err, ErrCurrencyNotFound) {
		t.Fatalf("err = %v, attendu ErrCurrencyNotFound", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.payments) != 0 {
		t.Errorf("paiements persistés = %d, attendu 0", len(st.payments))
	}
}
