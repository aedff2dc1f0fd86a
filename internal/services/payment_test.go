package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"africana_backend/internal/providers"
)

type stubProvider struct {
	name      string
	initiated int
	verified  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) InitiatePayment(_ context.Context, _, _ string, _ float64) (json.RawMessage, error) {
	s.initiated++
	return json.RawMessage(`{"ok":true}`), nil
}

func (s *stubProvider) VerifyTransaction(_ context.Context, _ string) (*providers.SettlementResult, error) {
	s.verified++
	return &providers.SettlementResult{Message: "Order completed"}, nil
}

func TestPaymentServiceRoutesByNameCaseInsensitive(t *testing.T) {
	flw := &stubProvider{name: "Flutterwave"}
	squad := &stubProvider{name: "Squad"}
	svc := NewPaymentService(flw, squad)

	if _, err := svc.InitiatePayment(context.Background(), "flutterwave", "a@b.c", "id", 10); err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}
	if _, err := svc.VerifyTransaction(context.Background(), "FLUTTERWAVE", "ref"); err != nil {
		t.Fatalf("VerifyTransaction: %v", err)
	}

	if flw.initiated != 1 || flw.verified != 1 {
		t.Errorf("Flutterwave: initiated=%d verified=%d, attendu 1/1", flw.initiated, flw.verified)
	}
	if squad.initiated != 0 || squad.verified != 0 {
		t.Errorf("Squad sollicité à tort: initiated=%d verified=%d", squad.initiated, squad.verified)
	}
}

func TestPaymentServiceUnknownProvider(t *testing.T) {
	svc := NewPaymentService(&stubProvider{name: "Flutterwave"})

	if _, err := svc.InitiatePayment(context.Background(), "paystack", "a@b.c", "id", 10); !errors.Is(err, providers.ErrCurrencyNotFound) {
		t.Fatalf("err = %v, attendu ErrCurrencyNotFound", err)
	}
	if _, ok := svc.Provider("paystack"); ok {
		t.Error("provider inconnu résolu")
	}
}
