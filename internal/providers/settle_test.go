package providers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"africana_backend/internal/models"
)

// Deux callbacks de vérification peuvent arriver en même temps : la
// garde conditionnelle doit ne laisser passer qu'un seul règlement.
func TestSettleConcurrentVerificationsSettleOnce(t *testing.T) {
	st := newFakeStore()
	orderID, variantID := st.seedOrder(500, 2, 10)
	reference := seedPendingPayment(st, orderID, 500)

	const workers = 8

	var wg sync.WaitGroup
	results := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payment, err := st.GetPaymentByReference(context.Background(), reference)
			if err != nil {
				results[i] = err
				return
			}
			_, err = settle(context.Background(), st, payment, "{}", true)
			results[i] = err
		}(i)
	}
	wg.Wait()

	settled := 0
	for _, err := range results {
		switch {
		case err == nil:
			settled++
		case errors.Is(err, ErrAlreadyCompleted):
		default:
			t.Errorf("erreur inattendue: %v", err)
		}
	}

	if settled != 1 {
		t.Fatalf("%d règlements appliqués, attendu exactement 1", settled)
	}
	if st.decrements[variantID] != 1 {
		t.Errorf("décrémentations = %d, attendu 1", st.decrements[variantID])
	}
	if st.variants[variantID].Quantity != 8 {
		t.Errorf("stock = %d, attendu 8", st.variants[variantID].Quantity)
	}
}

func TestSettleFailedVerificationIsTerminal(t *testing.T) {
	st := newFakeStore()
	orderID, _ := st.seedOrder(500, 1, 10)
	reference := seedPendingPayment(st, orderID, 500)

	payment, _ := st.GetPaymentByReference(context.Background(), reference)
	if _, err := settle(context.Background(), st, payment, "{}", false); !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("err = %v, attendu ErrPaymentFailed", err)
	}

	// Une vérification positive ultérieure ne ressuscite pas le paiement
	payment, _ = st.GetPaymentByReference(context.Background(), reference)
	if _, err := settle(context.Background(), st, payment, "{}", true); !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("après échec terminal: err = %v, attendu ErrPaymentFailed", err)
	}
	if st.payments[reference].Status != models.PaymentStatusFailed {
		t.Errorf("paiement = %q, attendu Failed", st.payments[reference].Status)
	}
}
