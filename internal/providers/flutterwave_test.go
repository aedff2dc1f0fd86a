package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"africana_backend/internal/models"

	"github.com/gocql/gocql"
)

func newFlutterwaveTestServer(t *testing.T, verifyStatus string, verifyAmount float64, verifyCurrency string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v3/payments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("méthode inattendue sur /v3/payments: %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-secret" {
			t.Errorf("Authorization inattendu: %q", auth)
		}
		fmt.Fprint(w, `{"status":"success","data":{"link":"https://checkout.flutterwave.com/v3/hosted/pay/abc"}}`)
	})
	mux.HandleFunc("/v3/transactions/verify_by_reference", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"status":   verifyStatus,
				"amount":   verifyAmount,
				"currency": verifyCurrency,
			},
		}
		json.NewEncoder(w).Encode(resp)
	})

	return httptest.NewServer(mux)
}

func newTestFlutterwave(st *fakeStore, baseURL string) *FlutterwaveProvider {
	return &FlutterwaveProvider{
		store:       st,
		client:      &http.Client{Timeout: 5 * time.Second},
		baseURL:     baseURL,
		secretKey:   "test-secret",
		frontendURL: "http://localhost:3000",
		appURL:      "http://localhost:8080",
	}
}

func seedPendingPayment(st *fakeStore, orderID gocql.UUID, amount float64) string {
	reference := "FLWREF123456"
	st.CreatePayment(context.Background(), &models.Payment{
		Reference:  reference,
		OrderID:    orderID,
		Channel:    "Flutterwave",
		Amount:     amount,
		CurrencyID: 1,
		Status:     models.PaymentStatusPending,
		Meta:       "{}",
		CreatedAt:  time.Now(),
	})
	return reference
}

func TestFlutterwaveInitiatePersistsPendingBeforeCall(t *testing.T) {
	st := newFakeStore()
	st.currs["NGN"] = &models.Currency{ID: 1, Code: "NGN", Name: "Nigerian Naira", IsActive: true}
	orderID, _ := st.seedOrder(1075, 1, 5)

	srv := newFlutterwaveTestServer(t, "successful", 1075, "NGN")
	defer srv.Close()

	p := newTestFlutterwave(st, srv.URL)

	payload, err := p.InitiatePayment(context.Background(), "amina@example.com", orderID.String(), 1075)
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	// La réponse du provider est retournée telle quelle
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatalf("payload non relayé tel quel: %v", err)
	}
	if resp.Data.Link == "" {
		t.Fatal("lien de checkout absent du payload relayé")
	}

	// Exactement un paiement Pending créé
	if len(st.payments) != 1 {
		t.Fatalf("attendu 1 paiement, trouvé %d", len(st.payments))
	}
	for _, pay := range st.payments {
		if pay.Status != models.PaymentStatusPending {
			t.Errorf("statut initial = %q, attendu Pending", pay.Status)
		}
		if pay.Amount != 1075 {
			t.Errorf("montant = %v, attendu 1075", pay.Amount)
		}
		if pay.OrderID != orderID {
			t.Errorf("orderID = %v, attendu %v", pay.OrderID, orderID)
		}
		if len(pay.Reference) != 12 {
			t.Errorf("référence %q: longueur %d, attendu 12", pay.Reference, len(pay.Reference))
		}
	}
}

func TestFlutterwaveInitiateUnknownCurrency(t *testing.T) {
	st := newFakeStore() // pas de NGN
	orderID, _ := st.seedOrder(100, 1, 1)

	srv := newFlutterwaveTestServer(t, "successful", 100, "NGN")
	defer srv.Close()

	p := newTestFlutterwave(st, srv.URL)

	_, err := p.InitiatePayment(context.Background(), "a@b.c", orderID.String(), 100)
	if !errors.Is(err, ErrCurrencyNotFound) {
		t.Fatalf("err = %v, attendu ErrCurrencyNotFound", err)
	}
	if len(st.payments) != 0 {
		t.Fatal("aucun paiement ne doit être créé sans devise")
	}
}

func TestFlutterwaveVerifySettlesExactlyOnce(t *testing.T) {
	st := newFakeStore()
	orderID, variantID := st.seedOrder(1075, 1, 5)
	reference := seedPendingPayment(st, orderID, 1075)

	srv := newFlutterwaveTestServer(t, "successful", 1075, "NGN")
	defer srv.Close()

	p := newTestFlutterwave(st, srv.URL)

	result, err := p.VerifyTransaction(context.Background(), reference)
	if err != nil {
		t.Fatalf("VerifyTransaction: %v", err)
	}
	if result.Message != "Order completed" {
		t.Errorf("message = %q, attendu %q", result.Message, "Order completed")
	}
	if len(result.StockErrors) != 0 {
		t.Errorf("StockErrors inattendus: %v", result.StockErrors)
	}

	if st.payments[reference].Status != models.PaymentStatusSuccessful {
		t.Errorf("paiement = %q, attendu Successful", st.payments[reference].Status)
	}
	if st.payments[reference].CompletedAt == nil {
		t.Error("completed_at non renseigné")
	}
	if st.orders[orderID].Status != models.OrderStatusCompleted {
		t.Errorf("commande = %q, attendu Completed", st.orders[orderID].Status)
	}
	if st.variants[variantID].Quantity != 4 {
		t.Errorf("stock = %d, attendu 4", st.variants[variantID].Quantity)
	}

	// Deuxième vérification : idempotente, aucun effet de bord
	_, err = p.VerifyTransaction(context.Background(), reference)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("re-vérification: err = %v, attendu ErrAlreadyCompleted", err)
	}
	if st.variants[variantID].Quantity != 4 {
		t.Errorf("stock décrémenté deux fois: %d", st.variants[variantID].Quantity)
	}
	if st.decrements[variantID] != 1 {
		t.Errorf("décrémentations = %d, attendu 1", st.decrements[variantID])
	}
}

func TestFlutterwaveVerifyAmountMismatchFailsPayment(t *testing.T) {
	st := newFakeStore()
	orderID, variantID := st.seedOrder(1075, 1, 5)
	reference := seedPendingPayment(st, orderID, 1075)

	// Le provider annonce un montant différent du paiement local
	srv := newFlutterwaveTestServer(t, "successful", 900, "NGN")
	defer srv.Close()

	p := newTestFlutterwave(st, srv.URL)

	_, err := p.VerifyTransaction(context.Background(), reference)
	if !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("err = %v, attendu ErrPaymentFailed", err)
	}

	// Issue déterministe : paiement ET commande en échec, stock intact
	if st.payments[reference].Status != models.PaymentStatusFailed {
		t.Errorf("paiement = %q, attendu Failed", st.payments[reference].Status)
	}
	if st.orders[orderID].Status != models.OrderStatusFailed {
		t.Errorf("commande = %q, attendu Failed", st.orders[orderID].Status)
	}
	if st.variants[variantID].Quantity != 5 {
		t.Errorf("stock modifié sur échec: %d", st.variants[variantID].Quantity)
	}
}

func TestFlutterwaveVerifyWrongStatusFailsPayment(t *testing.T) {
	st := newFakeStore()
	orderID, _ := st.seedOrder(1075, 1, 5)
	reference := seedPendingPayment(st, orderID, 1075)

	srv := newFlutterwaveTestServer(t, "failed", 1075, "NGN")
	defer srv.Close()

	p := newTestFlutterwave(st, srv.URL)

	if _, err := p.VerifyTransaction(context.Background(), reference); !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("err = %v, attendu ErrPaymentFailed", err)
	}
}

func TestFlutterwaveVerifyUnknownReference(t *testing.T) {
	st := newFakeStore()

	srv := newFlutterwaveTestServer(t, "successful", 100, "NGN")
	defer srv.Close()

	p := newTestFlutterwave(st, srv.URL)

	if _, err := p.VerifyTransaction(context.Background(), "UNKNOWNREF"); !errors.Is(err, ErrReferenceNotFound) {
		t.Fatalf("err = %v, attendu ErrReferenceNotFound", err)
	}
}

func TestFlutterwaveVerifyPartialStockFailureReported(t *testing.T) {
	st := newFakeStore()
	orderID, variantID := st.seedOrder(1075, 3, 1) // 3 demandés, 1 en stock
	reference := seedPendingPayment(st, orderID, 1075)

	srv := newFlutterwaveTestServer(t, "successful", 1075, "NGN")
	defer srv.Close()

	p := newTestFlutterwave(st, srv.URL)

	result, err := p.VerifyTransaction(context.Background(), reference)
	if err != nil {
		t.Fatalf("VerifyTransaction: %v", err)
	}

	// La commande reste réglée, l'échec de stock est remonté
	if st.orders[orderID].Status != models.OrderStatusCompleted {
		t.Errorf("commande = %q, attendu Completed", st.orders[orderID].Status)
	}
	if len(result.StockErrors) != 1 {
		t.Fatalf("StockErrors = %d, attendu 1", len(result.StockErrors))
	}
	if st.variants[variantID].Quantity != 1 {
		t.Errorf("stock = %d, il ne doit pas passer en négatif", st.variants[variantID].Quantity)
	}
}
