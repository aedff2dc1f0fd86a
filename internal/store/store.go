package store

import (
	"context"
	"errors"
	"time"

	"africana_backend/internal/models"

	"github.com/gocql/gocql"
)

var (
	ErrNotFound = errors.New("enregistrement introuvable")

	// ErrStockContention : la mise à jour conditionnelle du stock n'a pas
	// abouti après plusieurs tentatives (écritures concurrentes).
	ErrStockContention = errors.New("conflit d'écriture sur le stock")

	ErrInsufficientStock = errors.New("stock insuffisant")
)

// Store est le point d'accès aux données du flux de règlement.
// Il est construit une fois au démarrage et passé explicitement aux
// providers de paiement — pas de session globale dans ce flux.
type Store interface {
	// Paiements
	GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error)
	CreatePayment(ctx context.Context, p *models.Payment) error

	// MarkPaymentSuccessful passe le paiement de Pending à Successful par
	// une mise à jour conditionnelle (LWT). Retourne applied=false et le
	// statut existant si le paiement n'était plus Pending : c'est la garde
	// d'idempotence, atomique côté base.
	MarkPaymentSuccessful(ctx context.Context, reference, meta string, completedAt time.Time) (applied bool, currentStatus string, err error)
	MarkPaymentFailed(ctx context.Context, reference string) error

	// UpdatePaymentMeta complète le blob méta d'un paiement déjà persisté,
	// par exemple avec l'identifiant de session retourné par le provider.
	UpdatePaymentMeta(ctx context.Context, reference, meta string) error

	// Commandes
	CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error
	GetOrder(ctx context.Context, orderID gocql.UUID) (*models.Order, error)
	SetOrderStatus(ctx context.Context, orderID gocql.UUID, status string) error
	GetOrderItems(ctx context.Context, orderID gocql.UUID) ([]models.OrderItem, error)

	// Catalogue
	GetProductVariant(ctx context.Context, variantID gocql.UUID) (*models.ProductVariant, error)

	// DecrementVariantQuantity retire qty du stock de la variante sans
	// jamais le rendre négatif (boucle compare-and-set).
	DecrementVariantQuantity(ctx context.Context, variantID gocql.UUID, qty int) error

	// Référentiels
	GetTax(ctx context.Context, taxID int) (*models.Tax, error)
	GetCurrencyByCode(ctx context.Context, code string) (*models.Currency, error)
}
