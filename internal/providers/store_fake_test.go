package providers

import (
	"context"
	"sync"
	"time"

	"africana_backend/internal/models"
	"africana_backend/internal/store"

	"github.com/gocql/gocql"
)

// fakeStore reproduit en mémoire la sémantique du store Scylla, y
// compris la garde conditionnelle sur la transition de statut.
type fakeStore struct {
	mu       sync.Mutex
	payments map[string]*models.Payment
	orders   map[gocql.UUID]*models.Order
	items    map[gocql.UUID][]models.OrderItem
	variants map[gocql.UUID]*models.ProductVariant
	taxes    map[int]*models.Tax
	currs    map[string]*models.Currency

	decrements map[gocql.UUID]int // nombre d'appels par variante
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		payments:   make(map[string]*models.Payment),
		orders:     make(map[gocql.UUID]*models.Order),
		items:      make(map[gocql.UUID][]models.OrderItem),
		variants:   make(map[gocql.UUID]*models.ProductVariant),
		taxes:      make(map[int]*models.Tax),
		currs:      make(map[string]*models.Currency),
		decrements: make(map[gocql.UUID]int),
	}
}

func (f *fakeStore) GetPaymentByReference(_ context.Context, reference string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[reference]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) CreatePayment(_ context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.payments[p.Reference] = &cp
	return nil
}

func (f *fakeStore) MarkPaymentSuccessful(_ context.Context, reference, meta string, completedAt time.Time) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[reference]
	if !ok {
		return false, "", store.ErrNotFound
	}
	if p.Status != models.PaymentStatusPending {
		return false, p.Status, nil
	}
	p.Status = models.PaymentStatusSuccessful
	p.Meta = meta
	p.CompletedAt = &completedAt
	return true, models.PaymentStatusSuccessful, nil
}

func (f *fakeStore) UpdatePaymentMeta(_ context.Context, reference, meta string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[reference]
	if !ok {
		return store.ErrNotFound
	}
	p.Meta = meta
	return nil
}

func (f *fakeStore) MarkPaymentFailed(_ context.Context, reference string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[reference]
	if !ok {
		return store.ErrNotFound
	}
	if p.Status == models.PaymentStatusPending {
		p.Status = models.PaymentStatusFailed
	}
	return nil
}

func (f *fakeStore) CreateOrder(_ context.Context, o *models.Order, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	co := *o
	f.orders[o.ID] = &co
	f.items[o.ID] = append([]models.OrderItem(nil), items...)
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, orderID gocql.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	co := *o
	return &co, nil
}

func (f *fakeStore) SetOrderStatus(_ context.Context, orderID gocql.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeStore) GetOrderItems(_ context.Context, orderID gocql.UUID) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.OrderItem(nil), f.items[orderID]...), nil
}

func (f *fakeStore) GetProductVariant(_ context.Context, variantID gocql.UUID) (*models.ProductVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.variants[variantID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cv := *v
	return &cv, nil
}

func (f *fakeStore) DecrementVariantQuantity(_ context.Context, variantID gocql.UUID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decrements[variantID]++
	v, ok := f.variants[variantID]
	if !ok {
		return store.ErrNotFound
	}
	if v.Quantity < qty {
		return store.ErrInsufficientStock
	}
	v.Quantity -= qty
	return nil
}

func (f *fakeStore) GetTax(_ context.Context, taxID int) (*models.Tax, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.taxes[taxID]
	if !ok {
		return nil, store.ErrNotFound
	}
	ct := *t
	return &ct, nil
}

func (f *fakeStore) GetCurrencyByCode(_ context.Context, code string) (*models.Currency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.currs[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

// seedOrder installe une commande Pending avec une ligne et son stock.
func (f *fakeStore) seedOrder(amount float64, qty, stock int) (gocql.UUID, gocql.UUID) {
	orderID := gocql.TimeUUID()
	variantID := gocql.TimeUUID()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[orderID] = &models.Order{
		ID:     orderID,
		Code:   "TESTORDER123",
		Total:  amount,
		Status: models.OrderStatusPending,
	}
	f.items[orderID] = []models.OrderItem{{
		OrderID:          orderID,
		ProductVariantID: variantID,
		PricePerItem:     amount / float64(qty),
		Quantity:         qty,
	}}
	f.variants[variantID] = &models.ProductVariant{
		ID:       variantID,
		Quantity: stock,
		Price:    amount / float64(qty),
	}
	return orderID, variantID
}
