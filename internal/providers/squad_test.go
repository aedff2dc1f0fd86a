package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"africana_backend/internal/models"

	"github.com/gocql/gocql"
)

func newSquadTestServer(t *testing.T, success bool, amountKobo float64, status string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/transaction/initiate", func(w http.ResponseWriter, r *http.Request) {
		var body squadInitiateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("corps initiate illisible: %v", err)
		}
		// Squad reçoit le montant en centimes
		if body.Amount != 107500 {
			t.Errorf("montant envoyé = %v, attendu 107500", body.Amount)
		}
		if body.Currency != "USD" {
			t.Errorf("devise envoyée = %q, attendu USD", body.Currency)
		}
		w.Write([]byte(`{"success":true,"data":{"checkout_url":"https://sandbox-pay.squadco.com/abc"}}`))
	})
	mux.HandleFunc("/transaction/verify/", func(w http.ResponseWriter, r *http.Request) {
		ref := strings.TrimPrefix(r.URL.Path, "/transaction/verify/")
		if ref == "" {
			t.Error("référence absente du chemin de vérification")
		}
		json.NewEncoder(w).Encode(squadVerifyResponse{
			Success:           success,
			TransactionAmount: amountKobo,
			TransactionStatus: status,
		})
	})

	return httptest.NewServer(mux)
}

func newTestSquad(st *fakeStore, baseURL string) *SquadProvider {
	return &SquadProvider{
		store:       st,
		client:      &http.Client{Timeout: 5 * time.Second},
		baseURL:     baseURL,
		apiKey:      "test-key",
		frontendURL: "http://localhost:3000",
	}
}

func seedSquadPayment(st *fakeStore, orderID gocql.UUID, amount float64) string {
	reference := "SQUADREF1234"
	st.CreatePayment(context.Background(), &models.Payment{
		Reference:  reference,
		OrderID:    orderID,
		Channel:    "Squadco",
		Amount:     amount,
		CurrencyID: 2,
		Status:     models.PaymentStatusPending,
		Meta:       "{}",
		CreatedAt:  time.Now(),
	})
	return reference
}

func TestSquadInitiateSendsCents(t *testing.T) {
	st := newFakeStore()
	st.currs["USD"] = &models.Currency{ID: 2, Code: "USD", Name: "US Dollar", IsActive: true}
	orderID, _ := st.seedOrder(1075, 1, 5)

	srv := newSquadTestServer(t, true, 107500, "Success")
	defer srv.Close()

	p := newTestSquad(st, srv.URL)

	payload, err := p.InitiatePayment(context.Background(), "kwame@example.com", orderID.String(), 1075)
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil || !resp.Success {
		t.Fatalf("payload non relayé tel quel: %v (%s)", err, payload)
	}

	// Le Payment local reste en unités, pas en centimes
	for _, pay := range st.payments {
		if pay.Amount != 1075 {
			t.Errorf("montant local = %v, attendu 1075", pay.Amount)
		}
		if pay.Status != models.PaymentStatusPending {
			t.Errorf("statut = %q, attendu Pending", pay.Status)
		}
	}
}

func TestSquadVerifyComparesCents(t *testing.T) {
	st := newFakeStore()
	orderID, variantID := st.seedOrder(1075, 1, 3)
	reference := seedSquadPayment(st, orderID, 1075)

	srv := newSquadTestServer(t, true, 107500, "Success")
	defer srv.Close()

	p := newTestSquad(st, srv.URL)

	result, err := p.VerifyTransaction(context.Background(), reference)
	if err != nil {
		t.Fatalf("VerifyTransaction: %v", err)
	}
	if result.Message != "Order completed" {
		t.Errorf("message = %q", result.Message)
	}
	if st.payments[reference].Status != models.PaymentStatusSuccessful {
		t.Errorf("paiement = %q, attendu Successful", st.payments[reference].Status)
	}
	if st.variants[variantID].Quantity != 2 {
		t.Errorf("stock = %d, attendu 2", st.variants[variantID].Quantity)
	}
}

func TestSquadVerifyAmountMismatch(t *testing.T) {
	st := newFakeStore()
	orderID, _ := st.seedOrder(1075, 1, 3)
	reference := seedSquadPayment(st, orderID, 1075)

	// 1075 unités annoncées là où 107500 centimes sont attendus
	srv := newSquadTestServer(t, true, 1075, "Success")
	defer srv.Close()

	p := newTestSquad(st, srv.URL)

	if _, err := p.VerifyTransaction(context.Background(), reference); !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("err = %v, attendu ErrPaymentFailed", err)
	}
	if st.payments[reference].Status != models.PaymentStatusFailed {
		t.Errorf("paiement = %q, attendu Failed", st.payments[reference].Status)
	}
	if st.orders[orderID].Status != models.OrderStatusFailed {
		t.Errorf("commande = %q, attendu Failed", st.orders[orderID].Status)
	}
}

func TestSquadVerifyUnsuccessfulResponseDoesNotSettle(t *testing.T) {
	st := newFakeStore()
	orderID, _ := st.seedOrder(1075, 1, 3)
	reference := seedSquadPayment(st, orderID, 1075)

	// success=false : Squad ne connaît pas (encore) la transaction
	srv := newSquadTestServer(t, false, 0, "")
	defer srv.Close()

	p := newTestSquad(st, srv.URL)

	_, err := p.VerifyTransaction(context.Background(), reference)
	if !errors.Is(err, ErrProviderResponse) {
		t.Fatalf("err = %v, attendu ErrProviderResponse", err)
	}

	// Rien n'est réglé ni marqué en échec : l'appel est retentable
	if st.payments[reference].Status != models.PaymentStatusPending {
		t.Errorf("paiement = %q, attendu Pending", st.payments[reference].Status)
	}
	if st.orders[orderID].Status != models.OrderStatusPending {
		t.Errorf("commande = %q, attendu Pending", st.orders[orderID].Status)
	}
}

func TestSquadVerifyUnknownReference(t *testing.T) {
	st := newFakeStore()

	srv := newSquadTestServer(t, true, 100, "Success")
	defer srv.Close()

	p := newTestSquad(st, srv.URL)

	if _, err := p.VerifyTransaction(context.Background(), "NOPE"); !errors.Is(err, ErrReferenceNotFound) {
		t.Fatalf("err = %v, attendu ErrReferenceNotFound", err)
	}
}
