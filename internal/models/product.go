package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID               gocql.UUID       `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Description      string           `json:"description"`
	CurrencyID       int              `json:"currencyId"`
	LowOnStockMargin int              `json:"lowOnStockMargin"`
	TotalQuantity    int              `json:"totalQuantity"`
	CategoryIDs      []int            `json:"categoryIds,omitempty"`
	TagIDs           []int            `json:"tagIds,omitempty"`
	ImageURLs        []string         `json:"imageUrls,omitempty"`
	Variants         []ProductVariant `json:"productVariants,omitempty"`
	CreatedAt        *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time       `json:"updatedAt,omitempty"`
}

// ProductVariant porte le stock et le prix : c'est elle qui est
// décrémentée exactement une fois quand une commande est réglée.
type ProductVariant struct {
	ID        gocql.UUID `json:"id"`
	ProductID gocql.UUID `json:"productId"`
	SKU       string     `json:"sku"`
	Size      string     `json:"size,omitempty"`
	Color     string     `json:"color,omitempty"`
	Price     float64    `json:"price"`
	OldPrice  *float64   `json:"oldPrice,omitempty"`
	Quantity  int        `json:"quantity"`
}

type ProductReview struct {
	ID        gocql.UUID `json:"id"`
	ProductID gocql.UUID `json:"productId"`
	Name      string     `json:"name"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}
