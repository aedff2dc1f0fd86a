package product

import (
	"net/http"
	"time"

	"africana_backend/internal/database"
	"africana_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 🟢 GET /api/v1/products/:slug/reviews
//
func ListReviews(c *gin.Context) {
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

	iter := session.Query(`SELECT review_id, product_id, name, rating, comment, created_at
		FROM reviews WHERE product_id = ?`, productID).Iter()

	var reviews []models.ProductReview
	for {
		var r models.ProductReview
		var createdAt time.Time
		if !iter.Scan(&r.ID, &r.ProductID, &r.Name, &r.Rating, &r.Comment, &createdAt) {
			break
		}
		if !createdAt.IsZero() {
			t := createdAt
			r.CreatedAt = &t
		}
		reviews = append(reviews, r)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}

//
// 🟢 POST /api/v1/products/:slug/reviews
//
func CreateReview(c *gin.Context) {
	var input struct {
		Name    string `json:"name" binding:"required"`
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment"`
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

	var productID gocql.UUID
	if err := session.Query(`SELECT product_id FROM products_by_slug WHERE slug = ?`,
		c.Param("slug")).Scan(&productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	now := time.Now()
	review := models.ProductReview{
		ID:        gocql.TimeUUID(),
		ProductID: productID,
		Name:      input.Name,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: &now,
	}

	if err := session.Query(`INSERT INTO reviews (review_id, product_id, name, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID, review.ProductID, review.Name, review.Rating, review.Comment, now).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, review)
}
