package product

import (
	"context"
	"net/http"

	"africana_backend/internal/database"
	"africana_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 🟢 POST /api/v1/admin/products/:id/images (multipart)
//
func UploadProductImage(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image manquant"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	var imageURLs []string
	if err := session.Query(`SELECT image_urls FROM products WHERE product_id = ?`, productID).
		Scan(&imageURLs); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	objectName, err := services.UploadProductImage(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image: " + err.Error()})
		return
	}

	imageURLs = append(imageURLs, objectName)
	if err := session.Query(`UPDATE products SET image_urls = ? WHERE product_id = ?`,
		imageURLs, productID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	database.Redis.Del(context.Background(), productsCacheKey)

	c.JSON(http.StatusCreated, gin.H{"object": objectName, "imageUrls": imageURLs})
}

//
// 🟢 GET /api/v1/products/:slug/images — URLs présignées MinIO
//
func GetProductImages(c *gin.Context) {
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

	var imageURLs []string
	if err := session.Query(`SELECT image_urls FROM products WHERE product_id = ?`, productID).
		Scan(&imageURLs); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	signed := make([]string, 0, len(imageURLs))
	for _, objectName := range imageURLs {
		url, err := services.GenerateSignedURL(objectName)
		if err != nil {
			continue
		}
		signed = append(signed, url)
	}

	c.JSON(http.StatusOK, gin.H{"images": signed, "count": len(signed)})
}
