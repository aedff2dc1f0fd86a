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

const squadCurrency = "USD"

// SquadProvider règle les paiements en USD via l'API Squad (GTCO).
// Squad travaille en centimes : les montants envoyés et vérifiés sont
// multipliés par 100, le Payment local reste en unités.
type SquadProvider struct {
	store       store.Store
	client      *http.Client
	baseURL     string
	apiKey      string
	frontendURL string
}

func NewSquadProvider(st store.Store) (*SquadProvider, error) {
	apiKey := os.Getenv("SQUAD_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("SQUAD_API_KEY: %w", ErrMissingSecret)
	}

	baseURL := os.Getenv("SQUAD_API_URL")
	if baseURL == "" {
		baseURL = "https://sandbox-api-d.squadco.com"
	}

	return &SquadProvider{
		store:       st,
		client:      httpClient,
		baseURL:     baseURL,
		apiKey:      apiKey,
		frontendURL: os.Getenv("FRONTEND_URL"),
	}, nil
}

func (p *SquadProvider) Name() string { return "Squad" }

type squadInitiateRequest struct {
	Email           string            `json:"email"`
	Amount          float64           `json:"amount"`
	Currency        string            `json:"currency"`
	TransactionRef  string            `json:"transaction_ref"`
	CallbackURL     string            `json:"callback_url"`
	PaymentChannels []string          `json:"payment_channels"`
	InitiateType    string            `json:"initiate_type"`
	Metadata        map[string]string `json:"metadata"`
}

func (p *SquadProvider) InitiatePayment(ctx context.Context, email string, orderID string, amount float64) (json.RawMessage, error) {
	txRef := utils.GenerateRandomStringWithoutSymbols(12)

	reqBody := squadInitiateRequest{
		Email:           email,
		Amount:          amount * 100,
		Currency:        squadCurrency,
		TransactionRef:  txRef,
		CallbackURL:     p.frontendURL + "/order/complete",
		PaymentChannels: []string{"card"},
		InitiateType:    "inline",
		Metadata:        map[string]string{"provider": "squad"},
	}

	currency, err := p.store.GetCurrencyByCode(ctx, squadCurrency)
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

	payment := &models.Payment{
		Reference:  txRef,
		OrderID:    oid,
		Channel:    "Squadco",
		Amount:     amount,
		CurrencyID: currency.ID,
		Status:     models.PaymentStatusPending,
		Meta:       "{}",
		CreatedAt:  time.Now(),
	}
	if err := p.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/transaction/initiate", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
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
		return nil, fmt.Errorf("%w: initiate %d: %s", ErrProviderResponse, resp.StatusCode, respBody)
	}

	return json.RawMessage(respBody), nil
}

type squadVerifyResponse struct {
	Success           bool    `json:"success"`
	TransactionAmount float64 `json:"transaction_amount"`
	TransactionStatus string  `json:"transaction_status"`
}

func (p *SquadProvider) VerifyTransaction(ctx context.Context, reference string) (*SettlementResult, error) {
	payment, err := p.store.GetPaymentByReference(ctx, reference)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}

	verifyURL := fmt.Sprintf("%s/transaction/verify/%s", p.baseURL, url.PathEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, verifyURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

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

	var verify squadVerifyResponse
	if err := json.Unmarshal(body, &verify); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderResponse, err)
	}

	if !verify.Success {
		// La transaction n'est pas connue côté Squad : on ne règle rien,
		// l'appelant pourra retenter quand le provider aura la transaction.
		return nil, fmt.Errorf("%w: verify sans succès pour %s", ErrProviderResponse, reference)
	}

	matched := verify.TransactionStatus == "Success" &&
		verify.TransactionAmount == payment.Amount*100

	return settle(ctx, p.store, payment, string(body), matched)
}
