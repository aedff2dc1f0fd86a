package product

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"africana_backend/internal/cache"
	"africana_backend/internal/database"
	"africana_backend/internal/models"
	"africana_backend/internal/services"
	"africana_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const productsCacheKey = "products:all"
const productsCacheTTL = 5 * time.Minute

//
// 🟢 GET /api/v1/products
//
func ListProducts(c *gin.Context) {
	ctx := context.Background()

	// Cache Redis de la liste complète
	if data, err := database.Redis.Get(ctx, productsCacheKey).Result(); err == nil && data != "" {
		var cached []models.Product
		if json.Unmarshal([]byte(data), &cached) == nil {
			c.JSON(http.StatusOK, gin.H{"products": cached, "count": len(cached), "cached": true})
			return
		}
	}

	products, err := scanProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if data, err := json.Marshal(products); err == nil {
		database.Redis.Set(ctx, productsCacheKey, data, productsCacheTTL)
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

//
// 🟢 GET /api/v1/products/:slug
//
func GetProductBySlug(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	var productID gocql.UUID
	if err := session.Query(`SELECT product_id FROM products_by_slug WHERE slug = ?`,
		c.Param("slug")).Scan(&productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	product, err := loadProduct(session, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	c.JSON(http.StatusOK, product)
}

//
// 🟢 GET /api/v1/products/search?q=...
//
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q manquant"})
		return
	}

	// Elasticsearch d'abord, repli Scylla si l'index est indisponible
	results, err := services.SearchProducts(query)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
		return
	}
	log.Println("⚠️ Recherche Elastic indisponible, repli Scylla:", err)

	products, err := scanProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	slug := utils.Slugify(query)
	fallback := make([]models.Product, 0)
	for _, p := range products {
		if containsFold(p.Name, query) || containsFold(p.Slug, slug) || containsFold(p.Description, query) {
			fallback = append(fallback, p)
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": fallback, "count": len(fallback), "fallback": true})
}

//
// 🟢 POST /api/v1/admin/products
//
func CreateProduct(c *gin.Context) {
	var input struct {
		Name             string  `json:"name" binding:"required"`
		Description      string  `json:"description"`
		CurrencyID       int     `json:"currencyId"`
		LowOnStockMargin int     `json:"lowOnStockMargin"`
		CategoryIDs      []int   `json:"categoryIds"`
		TagIDs           []int   `json:"tagIds"`
		Variants         []struct {
			SKU      string   `json:"sku" binding:"required"`
			Size     string   `json:"size"`
			Color    string   `json:"color"`
			Price    float64  `json:"price" binding:"required"`
			OldPrice *float64 `json:"oldPrice"`
			Quantity int      `json:"quantity"`
		} `json:"productVariants" binding:"required,min=1"`
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

	slug := utils.Slugify(input.Name)

	// Unicité du slug via la table de correspondance (LWT)
	applied, err := session.Query(`INSERT INTO products_by_slug (slug, product_id) VALUES (?, ?) IF NOT EXISTS`,
		slug, gocql.UUID{}).ScanCAS(new(string), new(gocql.UUID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"error": "Un produit avec ce slug existe déjà", "slug": slug})
		return
	}

	now := time.Now()
	product := models.Product{
		ID:               gocql.TimeUUID(),
		Name:             input.Name,
		Slug:             slug,
		Description:      input.Description,
		CurrencyID:       input.CurrencyID,
		LowOnStockMargin: input.LowOnStockMargin,
		CategoryIDs:      input.CategoryIDs,
		TagIDs:           input.TagIDs,
		CreatedAt:        &now,
		UpdatedAt:        &now,
	}

	total := 0
	for _, v := range input.Variants {
		total += v.Quantity
	}
	product.TotalQuantity = total

	if err := session.Query(`INSERT INTO products (product_id, name, slug, description, currency_id,
		low_stock_margin, total_quantity, category_ids, tag_ids, image_urls, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Slug, product.Description, product.CurrencyID,
		product.LowOnStockMargin, product.TotalQuantity, product.CategoryIDs, product.TagIDs,
		[]string{}, now, now).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Pointe la correspondance slug vers le vrai product_id
	if err := session.Query(`UPDATE products_by_slug SET product_id = ? WHERE slug = ?`,
		product.ID, slug).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, v := range input.Variants {
		variant := models.ProductVariant{
			ID:        gocql.TimeUUID(),
			ProductID: product.ID,
			SKU:       v.SKU,
			Size:      v.Size,
			Color:     v.Color,
			Price:     v.Price,
			OldPrice:  v.OldPrice,
			Quantity:  v.Quantity,
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
			product.ID, variant.ID).Exec(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		product.Variants = append(product.Variants, variant)
	}

	database.Redis.Del(context.Background(), productsCacheKey)
	go services.IndexProduct(product)

	c.JSON(http.StatusCreated, product)
}

//
// 🟢 PUT /api/v1/admin/products/:id
//
func UpdateProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		Name             *string `json:"name"`
		Description      *string `json:"description"`
		LowOnStockMargin *int    `json:"lowOnStockMargin"`
		CategoryIDs      []int   `json:"categoryIds"`
		TagIDs           []int   `json:"tagIds"`
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

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.LowOnStockMargin != nil {
		product.LowOnStockMargin = *input.LowOnStockMargin
	}
	if input.CategoryIDs != nil {
		product.CategoryIDs = input.CategoryIDs
	}
	if input.TagIDs != nil {
		product.TagIDs = input.TagIDs
	}

	now := time.Now()
	if err := session.Query(`UPDATE products SET name = ?, description = ?, low_stock_margin = ?,
		category_ids = ?, tag_ids = ?, updated_at = ? WHERE product_id = ?`,
		product.Name, product.Description, product.LowOnStockMargin,
		product.CategoryIDs, product.TagIDs, now, productID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	variantIDs := make([]string, 0, len(product.Variants))
	for _, v := range product.Variants {
		variantIDs = append(variantIDs, v.ID.String())
	}
	cache.InvalidateProductCache(productID.String(), variantIDs...)
	database.Redis.Del(context.Background(), productsCacheKey)
	go services.IndexProduct(*product)

	c.JSON(http.StatusOK, product)
}

//
// 🟢 DELETE /api/v1/admin/products/:id
//
func DeleteProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
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

	for _, v := range product.Variants {
		session.Query(`DELETE FROM product_variants WHERE variant_id = ?`, v.ID).Exec()
	}
	session.Query(`DELETE FROM variants_by_product WHERE product_id = ?`, productID).Exec()
	session.Query(`DELETE FROM products_by_slug WHERE slug = ?`, product.Slug).Exec()
	if err := session.Query(`DELETE FROM products WHERE product_id = ?`, productID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	variantIDs := make([]string, 0, len(product.Variants))
	for _, v := range product.Variants {
		variantIDs = append(variantIDs, v.ID.String())
	}
	cache.InvalidateProductCache(productID.String(), variantIDs...)
	database.Redis.Del(context.Background(), productsCacheKey)
	go services.RemoveProductFromIndex(productID.String())

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

// ================== HELPERS ==================

func scanProducts() ([]models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT product_id, name, slug, description, currency_id, low_stock_margin,
		total_quantity, category_ids, tag_ids, image_urls, created_at, updated_at FROM products`).Iter()

	var products []models.Product
	for {
		var p models.Product
		var createdAt, updatedAt time.Time
		if !iter.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.CurrencyID, &p.LowOnStockMargin,
			&p.TotalQuantity, &p.CategoryIDs, &p.TagIDs, &p.ImageURLs, &createdAt, &updatedAt) {
			break
		}
		if !createdAt.IsZero() {
			t := createdAt
			p.CreatedAt = &t
		}
		if !updatedAt.IsZero() {
			t := updatedAt
			p.UpdatedAt = &t
		}
		products = append(products, p)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return products, nil
}

// loadProduct charge un produit et ses variantes.
func loadProduct(session *gocql.Session, productID gocql.UUID) (*models.Product, error) {
	var p models.Product
	var createdAt, updatedAt time.Time
	err := session.Query(`SELECT product_id, name, slug, description, currency_id, low_stock_margin,
		total_quantity, category_ids, tag_ids, image_urls, created_at, updated_at
		FROM products WHERE product_id = ?`, productID).
		Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.CurrencyID, &p.LowOnStockMargin,
			&p.TotalQuantity, &p.CategoryIDs, &p.TagIDs, &p.ImageURLs, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if !createdAt.IsZero() {
		p.CreatedAt = &createdAt
	}
	if !updatedAt.IsZero() {
		p.UpdatedAt = &updatedAt
	}

	iter := session.Query(`SELECT variant_id FROM variants_by_product WHERE product_id = ?`, productID).Iter()
	var variantID gocql.UUID
	var variantIDs []gocql.UUID
	for iter.Scan(&variantID) {
		variantIDs = append(variantIDs, variantID)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	for _, vid := range variantIDs {
		var v models.ProductVariant
		var oldPrice float64
		if err := session.Query(`SELECT variant_id, product_id, sku, size, color, price, old_price, quantity
			FROM product_variants WHERE variant_id = ?`, vid).
			Scan(&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color, &v.Price, &oldPrice, &v.Quantity); err != nil {
			continue
		}
		if oldPrice > 0 {
			v.OldPrice = &oldPrice
		}
		p.Variants = append(p.Variants, v)
	}

	return &p, nil
}

func containsFold(haystack, needle string) bool {
	return needle != "" && strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
