package services

import (
	"context"
	"encoding/json"
	"strings"

	"africana_backend/internal/providers"
)

// PaymentService route chaque opération vers le bon prestataire de
// paiement, identifié par son nom ("flutterwave", "squad", "stripe").
type PaymentService struct {
	registry map[string]providers.PaymentProvider
}

func NewPaymentService(list ...providers.PaymentProvider) *PaymentService {
	registry := make(map[string]providers.PaymentProvider, len(list))
	for _, p := range list {
		registry[strings.ToLower(p.Name())] = p
	}
	return &PaymentService{registry: registry}
}

// Provider retourne le prestataire demandé, ou false s'il est inconnu.
func (s *PaymentService) Provider(name string) (providers.PaymentProvider, bool) {
	p, ok := s.registry[strings.ToLower(name)]
	return p, ok
}

// InitiatePayment délègue l'initiation au prestataire choisi et
// retourne sa réponse telle quelle. Un prestataire inconnu se traduit
// par ErrCurrencyNotFound, chaque prestataire étant lié à une devise.
func (s *PaymentService) InitiatePayment(ctx context.Context, providerName, email, orderID string, amount float64) (json.RawMessage, error) {
	p, ok := s.Provider(providerName)
	if !ok {
		return nil, providers.ErrCurrencyNotFound
	}
	return p.InitiatePayment(ctx, email, orderID, amount)
}

// VerifyTransaction délègue la vérification au prestataire choisi.
func (s *PaymentService) VerifyTransaction(ctx context.Context, providerName, reference string) (*providers.SettlementResult, error) {
	p, ok := s.Provider(providerName)
	if !ok {
		return nil, providers.ErrCurrencyNotFound
	}
	return p.VerifyTransaction(ctx, reference)
}
