package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"africana_backend/internal/models"
	"africana_backend/internal/providers"
	"africana_backend/internal/services"
	"africana_backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// callbackStore ne sert qu'à la consultation : les callbacks passent
// par le PaymentService, le règlement est testé côté providers.
type callbackStore struct {
	payment *models.Payment
}

func (s *callbackStore) GetPaymentByReference(_ context.Context, reference string) (*models.Payment, error) {
	if s.payment == nil || s.payment.Reference != reference {
		return nil, store.ErrNotFound
	}
	cp := *s.payment
	return &cp, nil
}

func (s *callbackStore) CreatePayment(context.Context, *models.Payment) error { return nil }
func (s *callbackStore) MarkPaymentSuccessful(context.Context, string, string, time.Time) (bool, string, error) {
	return false, "", nil
}
func (s *callbackStore) MarkPaymentFailed(context.Context, string) error { return nil }
func (s *callbackStore) UpdatePaymentMeta(context.Context, string, string) error {
	return nil
}
func (s *callbackStore) CreateOrder(context.Context, *models.Order, []models.OrderItem) error {
	return nil
}
func (s *callbackStore) GetOrder(context.Context, gocql.UUID) (*models.Order, error) {
	return nil, store.ErrNotFound
}
func (s *callbackStore) SetOrderStatus(context.Context, gocql.UUID, string) error { return nil }
func (s *callbackStore) GetOrderItems(context.Context, gocql.UUID) ([]models.OrderItem, error) {
	return nil, nil
}
func (s *callbackStore) GetProductVariant(context.Context, gocql.UUID) (*models.ProductVariant, error) {
	return nil, store.ErrNotFound
}
func (s *callbackStore) DecrementVariantQuantity(context.Context, gocql.UUID, int) error { return nil }
func (s *callbackStore) GetTax(context.Context, int) (*models.Tax, error) {
	return nil, store.ErrNotFound
}
func (s *callbackStore) GetCurrencyByCode(context.Context, string) (*models.Currency, error) {
	return nil, store.ErrNotFound
}

// errProvider répond toujours la même issue de vérification.
type errProvider struct {
	name string
	err  error
}

func (p *errProvider) Name() string { return p.name }
func (p *errProvider) InitiatePayment(context.Context, string, string, float64) (json.RawMessage, error) {
	return nil, p.err
}
func (p *errProvider) VerifyTransaction(context.Context, string) (*providers.SettlementResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &providers.SettlementResult{Message: "Order completed"}, nil
}

func newCallbackRouter(st store.Store, verifyErr error) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := services.NewPaymentService(&errProvider{name: "Flutterwave", err: verifyErr})
	h := NewHandler(st, svc)

	r := gin.New()
	r.GET("/api/v1/flutterwave/payment-callback", h.FlutterwaveCallback)
	r.GET("/api/v1/payments/:reference", h.GetPayment)
	return r
}

func doCallback(t *testing.T, r *gin.Engine, path string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("réponse non JSON: %s", w.Body.String())
	}
	return w.Code, body
}

func TestCallbackMissingReference(t *testing.T) {
	r := newCallbackRouter(&callbackStore{}, nil)

	code, body := doCallback(t, r, "/api/v1/flutterwave/payment-callback")
	if code != http.StatusBadRequest {
		t.Errorf("code = %d, attendu 400", code)
	}
	if body["success"] != false || body["message"] != "Transaction reference not found" {
		t.Errorf("corps inattendu: %v", body)
	}
}

func TestCallbackUnknownReference(t *testing.T) {
	r := newCallbackRouter(&callbackStore{}, providers.ErrReferenceNotFound)

	code, body := doCallback(t, r, "/api/v1/flutterwave/payment-callback?tx_ref=NOPE")
	if code != http.StatusNotFound {
		t.Errorf("code = %d, attendu 404", code)
	}
	if body["message"] != "Transaction reference not found" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestCallbackAlreadyCompleted(t *testing.T) {
	r := newCallbackRouter(&callbackStore{}, providers.ErrAlreadyCompleted)

	code, body := doCallback(t, r, "/api/v1/flutterwave/payment-callback?tx_ref=REF123")
	if code != http.StatusConflict {
		t.Errorf("code = %d, attendu 409", code)
	}
	if body["success"] != false || body["message"] != "Order has already been completed" {
		t.Errorf("corps inattendu: %v", body)
	}
}

func TestCallbackPaymentFailed(t *testing.T) {
	r := newCallbackRouter(&callbackStore{}, providers.ErrPaymentFailed)

	code, body := doCallback(t, r, "/api/v1/flutterwave/payment-callback?tx_ref=REF123")
	if code != http.StatusBadRequest {
		t.Errorf("code = %d, attendu 400", code)
	}
	if body["message"] != "Payment failed" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestCallbackSuccess(t *testing.T) {
	// Le paiement restitué n'est pas Successful : les effets de bord
	// post-règlement (mail, panier) ne se déclenchent pas ici.
	st := &callbackStore{payment: &models.Payment{
		Reference: "REF123",
		Status:    models.PaymentStatusPending,
	}}
	r := newCallbackRouter(st, nil)

	code, body := doCallback(t, r, "/api/v1/flutterwave/payment-callback?tx_ref=REF123")
	if code != http.StatusOK {
		t.Errorf("code = %d, attendu 200", code)
	}
	if body["success"] != true || body["message"] != "Order completed" {
		t.Errorf("corps inattendu: %v", body)
	}
}

func TestGetPaymentDetail(t *testing.T) {
	st := &callbackStore{payment: &models.Payment{
		Reference: "REF123",
		Channel:   "Flutterwave",
		Amount:    1075,
		Status:    models.PaymentStatusSuccessful,
	}}
	r := newCallbackRouter(st, nil)

	code, body := doCallback(t, r, "/api/v1/payments/REF123")
	if code != http.StatusOK {
		t.Fatalf("code = %d, attendu 200", code)
	}
	if body["reference"] != "REF123" || body["channel"] != "Flutterwave" {
		t.Errorf("corps inattendu: %v", body)
	}

	code, _ = doCallback(t, r, "/api/v1/payments/UNKNOWN")
	if code != http.StatusNotFound {
		t.Errorf("code = %d, attendu 404", code)
	}
}
