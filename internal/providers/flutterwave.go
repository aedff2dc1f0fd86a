package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"africana_backend/internal/models"
	"africana_backend/internal/store"
	"africana_backend/internal/utils"
)

const flutterwaveCurrency = "NGN"

// FlutterwaveProvider règle les paiements en NGN via l'API REST v3 de
// Flutterwave (checkout hébergé).
type FlutterwaveProvider struct {
	store       store.Store
	client      *http.Client
	baseURL     string
	secretKey   string
	frontendURL string
	appURL      string
}

func NewFlutterwaveProvider(st store.Store) (*FlutterwaveProvider, error) {
	secret := os.Getenv("FLW_SECRET_KEY")
	if secret == "" {
		return nil, fmt.Errorf("FLW_SECRET_KEY: %w", ErrMissingSecret)
	}

	baseURL := os.Getenv("FLW_API_URL")
	if baseURL == "" {
		baseURL = "https://api.flutterwave.com"
	}

	return &FlutterwaveProvider{
		store:       st,
		client:      httpClient,
		baseURL:     baseURL,
		secretKey:   secret,
		frontendURL: os.Getenv("FRONTEND_URL"),
		appURL:      os.Getenv("APP_URL"),
	}, nil
}

func (p *FlutterwaveProvider) Name() string { return "Flutterwave" }

type flutterwaveCustomer struct {
	Email string `json:"email"`
}

type flutterwaveCustomizations struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

type flutterwaveChargeRequest struct {
	TxRef          string                    `json:"tx_ref"`
	Amount         float64                   `json:"amount"`
	Currency       string                    `json:"currency"`
	RedirectURL    string                    `json:"redirect_url"`
	PaymentOptions string                    `json:"payment_options"`
	Customer       flutterwaveCustomer       `json:"customer"`
	Meta           map[string]string         `json:"meta"`
	Customizations flutterwaveCustomizations `json:"customizations"`
}

func (p *FlutterwaveProvider) InitiatePayment(ctx context.Context, email string, orderID string, amount float64) (json.RawMessage, error) {
	txRef := utils.GenerateRandomStringWithoutSymbols(12)

	reqBody := flutterwaveChargeRequest{
		TxRef:          txRef,
		Amount:         amount,
		Currency:       flutterwaveCurrency,
		RedirectURL:    p.frontendURL + "/order/complete",
		PaymentOptions: "card",
		Customer:       flutterwaveCustomer{Email: email},
		Meta:           map[string]string{"provider": "flutterwave"},
		Customizations: flutterwaveCustomizations{
			Title:       "Africana Couture",
			Description: "Payment of order items from Africana e-commerce",
			Logo:        p.appURL + "/img/africana-logo.png",
		},
	}

	currency, err := p.store.GetCurrencyByCode(ctx, flutterwaveCurrency)
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

	// Le Payment est persisté en Pending AVANT l'appel externe : si le
	// provider répond mais que nous tombons ensuite, la référence existe
	// déjà et la vérification retrouvera ses petits.
	payment := &models.Payment{
		Reference:  txRef,
		OrderID:    oid,
		Channel:    "Flutterwave",
		Amount:     amount,
		CurrencyID: currency.ID,
		Status:     models.PaymentStatusPending,
		Meta:       "{}",
		CreatedAt:  time.Now(),
	}
	if err := p.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	return p.post(ctx, "/v3/payments", reqBody)
}

type flutterwaveVerifyResponse struct {
	Status string `json:"status"`
	Data   struct {
		Status   string  `json:"status"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"data"`
}

func (p *FlutterwaveProvider) VerifyTransaction(ctx context.Context, reference string) (*SettlementResult, error) {
	payment, err := p.store.GetPaymentByReference(ctx, reference)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}

	// La référence locale est le tx_ref : on vérifie par référence plutôt
	// que par id de transaction Flutterwave.
	verifyURL := fmt.Sprintf("%s/v3/transactions/verify_by_reference?tx_ref=%s",
		p.baseURL, url.QueryEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, verifyURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: verify %d: %s", ErrProviderResponse, resp.StatusCode, body)
	}

	var verify flutterwaveVerifyResponse
	if err := json.Unmarshal(body, &verify); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderResponse, err)
	}

	// Comparaison stricte : statut, montant exact et devise attendue.
	matched := verify.Data.Status == "successful" &&
		verify.Data.Amount == payment.Amount &&
		verify.Data.Currency == flutterwaveCurrency

	return settle(ctx, p.store, payment, string(body), matched)
}

func (p *FlutterwaveProvider) post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %d: %s", ErrProviderResponse, path, resp.StatusCode, respBody)
	}

	return json.RawMessage(respBody), nil
}
