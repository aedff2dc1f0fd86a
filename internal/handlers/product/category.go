package product

import (
	"context"
	"net/http"

	"africana_backend/internal/database"
	"africana_backend/internal/models"
	"africana_backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// Les ids de catégories et tags sont des entiers séquentiels générés
// via INCR Redis, Scylla n'ayant pas d'auto-increment.

//
// 🟢 GET /api/v1/categories
//
func ListCategories(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	iter := session.Query(`SELECT id, name, slug, parent_id FROM categories`).Iter()

	var categories []models.Category
	for {
		var cat models.Category
		var parentID int
		if !iter.Scan(&cat.ID, &cat.Name, &cat.Slug, &parentID) {
			break
		}
		if parentID != 0 {
			p := parentID
			cat.ParentID = &p
		}
		categories = append(categories, cat)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

//
// 🟢 POST /api/v1/admin/categories
//
func CreateCategory(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		ParentID *int   `json:"parentId"`
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

	id, err := database.Redis.Incr(context.Background(), "seq:categories").Result()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération id"})
		return
	}

	category := models.Category{
		ID:       int(id),
		Name:     input.Name,
		Slug:     utils.Slugify(input.Name),
		ParentID: input.ParentID,
	}

	parentID := 0
	if category.ParentID != nil {
		parentID = *category.ParentID
	}
	if err := session.Query(`INSERT INTO categories (id, name, slug, parent_id) VALUES (?, ?, ?, ?)`,
		category.ID, category.Name, category.Slug, parentID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, category)
}

//
// 🟢 GET /api/v1/tags
//
func ListTags(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	iter := session.Query(`SELECT id, name, slug FROM tags`).Iter()

	var tags []models.Tag
	var t models.Tag
	for iter.Scan(&t.ID, &t.Name, &t.Slug) {
		tags = append(tags, t)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags, "count": len(tags)})
}

//
// 🟢 POST /api/v1/admin/tags
//
func CreateTag(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
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

	id, err := database.Redis.Incr(context.Background(), "seq:tags").Result()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération id"})
		return
	}

	tag := models.Tag{
		ID:   int(id),
		Name: input.Name,
		Slug: utils.Slugify(input.Name),
	}

	if err := session.Query(`INSERT INTO tags (id, name, slug) VALUES (?, ?, ?)`,
		tag.ID, tag.Name, tag.Slug).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, tag)
}
