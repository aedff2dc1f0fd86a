package store

import (
	"context"
	"fmt"
	"time"

	"africana_backend/internal/models"

	"github.com/gocql/gocql"
)

const decrementMaxAttempts = 5

// ScyllaStore implémente Store sur les keyspaces commandes et produits.
type ScyllaStore struct {
	orders   *gocql.Session
	products *gocql.Session
}

func NewScyllaStore(orders, products *gocql.Session) *ScyllaStore {
	return &ScyllaStore{orders: orders, products: products}
}

// =============================================
// PAIEMENTS
// =============================================

func (s *ScyllaStore) GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var p models.Payment
	var completedAt time.Time

	err := s.orders.Query(`SELECT reference, order_id, channel, amount, currency_id, status, meta, completed_at, created_at
		FROM payments WHERE reference = ?`, reference).WithContext(ctx).
		Scan(&p.Reference, &p.OrderID, &p.Channel, &p.Amount, &p.CurrencyID, &p.Status, &p.Meta, &completedAt, &p.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if !completedAt.IsZero() {
		p.CompletedAt = &completedAt
	}
	return &p, nil
}

func (s *ScyllaStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	return s.orders.Query(`INSERT INTO payments (reference, order_id, channel, amount, currency_id, status, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Reference, p.OrderID, p.Channel, p.Amount, p.CurrencyID, p.Status, p.Meta, p.CreatedAt).
		WithContext(ctx).Exec()
}

func (s *ScyllaStore) MarkPaymentSuccessful(ctx context.Context, reference, meta string, completedAt time.Time) (bool, string, error) {
	// LWT : la transition Pending → Successful ne peut s'appliquer qu'une
	// fois, même si deux callbacks de vérification arrivent en même temps.
	var currentStatus string
	applied, err := s.orders.Query(`UPDATE payments SET status = ?, meta = ?, completed_at = ?
		WHERE reference = ? IF status = ?`,
		models.PaymentStatusSuccessful, meta, completedAt, reference, models.PaymentStatusPending).
		WithContext(ctx).ScanCAS(&currentStatus)
	if err != nil {
		return false, "", err
	}
	if applied {
		return true, models.PaymentStatusSuccessful, nil
	}
	return false, currentStatus, nil
}

func (s *ScyllaStore) MarkPaymentFailed(ctx context.Context, reference string) error {
	// Un paiement déjà réglé ne doit pas être rétrogradé : même garde LWT.
	applied, err := s.orders.Query(`UPDATE payments SET status = ? WHERE reference = ? IF status = ?`,
		models.PaymentStatusFailed, reference, models.PaymentStatusPending).
		WithContext(ctx).ScanCAS(new(string))
	if err != nil {
		return err
	}
	if !applied {
		return nil // déjà dans un état terminal, on n'écrase pas
	}
	return nil
}

func (s *ScyllaStore) UpdatePaymentMeta(ctx context.Context, reference, meta string) error {
	return s.orders.Query(`UPDATE payments SET meta = ? WHERE reference = ?`, meta, reference).
		WithContext(ctx).Exec()
}

// =============================================
// COMMANDES
// =============================================

func (s *ScyllaStore) CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	if err := s.orders.Query(`INSERT INTO orders (order_id, code, customer_id, sub_total, tax_id, total,
		address1, address2, postal_code, city, state, country, notes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Code, o.CustomerID, o.SubTotal, o.TaxID, o.Total,
		o.Address1, o.Address2, o.PostalCode, o.City, o.State, o.Country, o.Notes, o.Status, o.CreatedAt).
		WithContext(ctx).Exec(); err != nil {
		return err
	}

	// Table de correspondance pour l'historique client
	if err := s.orders.Query(`INSERT INTO orders_by_customer (customer_id, created_at, order_id)
		VALUES (?, ?, ?)`, o.CustomerID, o.CreatedAt, o.ID).WithContext(ctx).Exec(); err != nil {
		return err
	}

	// Les lignes de commande partagent la partition de la commande
	batch := s.orders.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, item := range items {
		batch.Query(`INSERT INTO order_items (order_id, variant_id, price_per_item, quantity) VALUES (?, ?, ?, ?)`,
			o.ID, item.ProductVariantID, item.PricePerItem, item.Quantity)
	}
	return s.orders.ExecuteBatch(batch)
}

func (s *ScyllaStore) GetOrder(ctx context.Context, orderID gocql.UUID) (*models.Order, error) {
	var o models.Order
	err := s.orders.Query(`SELECT order_id, code, customer_id, sub_total, tax_id, total,
		address1, address2, postal_code, city, state, country, notes, status, created_at
		FROM orders WHERE order_id = ?`, orderID).WithContext(ctx).
		Scan(&o.ID, &o.Code, &o.CustomerID, &o.SubTotal, &o.TaxID, &o.Total,
			&o.Address1, &o.Address2, &o.PostalCode, &o.City, &o.State, &o.Country, &o.Notes, &o.Status, &o.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *ScyllaStore) SetOrderStatus(ctx context.Context, orderID gocql.UUID, status string) error {
	return s.orders.Query(`UPDATE orders SET status = ? WHERE order_id = ?`, status, orderID).
		WithContext(ctx).Exec()
}

func (s *ScyllaStore) GetOrderItems(ctx context.Context, orderID gocql.UUID) ([]models.OrderItem, error) {
	iter := s.orders.Query(`SELECT order_id, variant_id, price_per_item, quantity
		FROM order_items WHERE order_id = ?`, orderID).WithContext(ctx).Iter()

	var items []models.OrderItem
	var item models.OrderItem
	for iter.Scan(&item.OrderID, &item.ProductVariantID, &item.PricePerItem, &item.Quantity) {
		items = append(items, item)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return items, nil
}

// =============================================
// CATALOGUE
// =============================================

func (s *ScyllaStore) GetProductVariant(ctx context.Context, variantID gocql.UUID) (*models.ProductVariant, error) {
	var v models.ProductVariant
	var oldPrice float64
	err := s.products.Query(`SELECT variant_id, product_id, sku, size, color, price, old_price, quantity
		FROM product_variants WHERE variant_id = ?`, variantID).WithContext(ctx).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color, &v.Price, &oldPrice, &v.Quantity)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if oldPrice > 0 {
		v.OldPrice = &oldPrice
	}
	return &v, nil
}

func (s *ScyllaStore) DecrementVariantQuantity(ctx context.Context, variantID gocql.UUID, qty int) error {
	for attempt := 0; attempt < decrementMaxAttempts; attempt++ {
		var current int
		err := s.products.Query(`SELECT quantity FROM product_variants WHERE variant_id = ?`, variantID).
			WithContext(ctx).Scan(&current)
		if err == gocql.ErrNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if current < qty {
			return fmt.Errorf("%w: variante %s (%d demandé, %d disponible)",
				ErrInsufficientStock, variantID, qty, current)
		}

		// CAS : n'applique la décrémentation que si personne n'a écrit
		// entre la lecture et la mise à jour.
		applied, err := s.products.Query(`UPDATE product_variants SET quantity = ? WHERE variant_id = ? IF quantity = ?`,
			current-qty, variantID, current).WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}
	return ErrStockContention
}

// =============================================
// RÉFÉRENTIELS
// =============================================

func (s *ScyllaStore) GetTax(ctx context.Context, taxID int) (*models.Tax, error) {
	var t models.Tax
	err := s.orders.Query(`SELECT id, name, value, type, is_active FROM taxes WHERE id = ?`, taxID).
		WithContext(ctx).Scan(&t.ID, &t.Name, &t.Value, &t.Type, &t.IsActive)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *ScyllaStore) GetCurrencyByCode(ctx context.Context, code string) (*models.Currency, error) {
	var c models.Currency
	err := s.orders.Query(`SELECT code, id, name, exchange_rate, is_default, is_active
		FROM currencies WHERE code = ?`, code).WithContext(ctx).
		Scan(&c.Code, &c.ID, &c.Name, &c.ExchangeRate, &c.IsDefault, &c.IsActive)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
