package product

import (
	"context"
	"net/http"

	"africana_backend/internal/cache"
	"africana_backend/internal/database"
	"africana_backend/internal/models"
	"africana_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 🟢 POST /api/v1/admin/products/:id/variants
//
func AddVariant(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		SKU      string   `json:"sku" binding:"required"`
		Size     string   `json:"size"`
		Color    string   `json:"color"`
		Price    float64  `json:"price" binding:"required"`
		OldPrice *float64 `json:"oldPrice"`
		Quantity int      `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	product, err := loadProduct(session, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	variant := models.ProductVariant{
		ID:        gocql.TimeUUID(),
		ProductID: productID,
		SKU:       input.SKU,
		Size:      input.Size,
		Color:     input.Color,
		Price:     input.Price,
		OldPrice:  input.OldPrice,
		Quantity:  input.Quantity,
	}

	oldPrice := 0.0
	if variant.OldPrice != nil {
		oldPrice = *variant.OldPrice
	}
	if err := session.Query(`INSERT INTO product_variants (variant_id, product_id, sku, size, color,
		price, old_price, quantity) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		variant.ID, variant.ProductID, variant.SKU, variant.Size, variant.Color,
		variant.Price, oldPrice, variant.Quantity).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := session.Query(`INSERT INTO variants_by_product (product_id, variant_id) VALUES (?, ?)`,
		productID, variant.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	refreshTotalQuantity(session, productID)
	cache.InvalidateProductCache(productID.String(), variant.ID.String())
	database.Redis.Del(context.Background(), productsCacheKey)
	product.Variants = append(product.Variants, variant)
	go services.IndexProduct(*product)

	c.JSON(http.StatusCreated, variant)
}

//
// 🟢 PUT /api/v1/admin/variants/:id — prix et réassort
//
func UpdateVariant(c *gin.Context) {
	variantID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID variante invalide"})
		return
	}

	var input struct {
		Price    *float64 `json:"price"`
		OldPrice *float64 `json:"oldPrice"`
		Quantity *int     `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	var v models.ProductVariant
	var oldPrice float64
	if err := session.Query(`SELECT variant_id, product_id, sku, size, color, price, old_price, quantity
		FROM product_variants WHERE variant_id = ?`, variantID).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color, &v.Price, &oldPrice, &v.Quantity); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Variante introuvable"})
		return
	}

	if input.Price != nil {
		v.Price = *input.Price
	}
	if input.OldPrice != nil {
		oldPrice = *input.OldPrice
	}
	if input.Quantity != nil {
		v.Quantity = *input.Quantity
	}

	if err := session.Query(`UPDATE product_variants SET price = ?, old_price = ?, quantity = ?
		WHERE variant_id = ?`, v.Price, oldPrice, v.Quantity, variantID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	refreshTotalQuantity(session, v.ProductID)
	cache.InvalidateProductCache(v.ProductID.String(), variantID.String())
	database.Redis.Del(context.Background(), productsCacheKey)

	c.JSON(http.StatusOK, v)
}

//
// 🟢 GET /api/v1/admin/products/low-stock
//
func LowStockProducts(c *gin.Context) {
	products, err := scanProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	low := make([]models.Product, 0)
	for _, p := range products {
		if p.TotalQuantity <= p.LowOnStockMargin {
			low = append(low, p)
		}
	}

	c.JSON(http.StatusOK, gin.H{"products": low, "count": len(low)})
}

// refreshTotalQuantity recalcule le cumul de stock du produit à partir
// de ses variantes.
func refreshTotalQuantity(session *gocql.Session, productID gocql.UUID) {
	iter := session.Query(`SELECT variant_id FROM variants_by_product WHERE product_id = ?`, productID).Iter()
	var variantID gocql.UUID
	total := 0
	for iter.Scan(&variantID) {
		var qty int
		if err := session.Query(`SELECT quantity FROM product_variants WHERE variant_id = ?`, variantID).
			Scan(&qty); err == nil {
			total += qty
		}
	}
	iter.Close()

	session.Query(`UPDATE products SET total_quantity = ? WHERE product_id = ?`, total, productID).Exec()
}
