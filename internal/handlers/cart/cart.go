package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"africana_backend/internal/database"
	"africana_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

const (
	sessionCookie = "africana_session_id"
	cartTTL       = 7 * 24 * time.Hour
)

// cartKey retourne la clé Redis du panier : l'id utilisateur si
// connecté, sinon un cookie de session anonyme posé à la volée.
func cartKey(c *gin.Context) string {
	if userID := c.GetString("user_id"); userID != "" {
		return "cart:" + userID
	}

	sessionID, err := c.Cookie(sessionCookie)
	if err != nil || sessionID == "" {
		sessionID = uuid.NewString()
		c.SetCookie(sessionCookie, sessionID, int(cartTTL.Seconds()), "/", "", false, true)
	}
	return "cart:" + sessionID
}

func loadCart(ctx context.Context, key string) []models.CartItem {
	data, err := database.Redis.Get(ctx, key).Result()
	if err != nil || data == "" {
		return []models.CartItem{}
	}
	var cart []models.CartItem
	if json.Unmarshal([]byte(data), &cart) != nil {
		return []models.CartItem{}
	}
	return cart
}

func saveCart(ctx context.Context, key string, cart []models.CartItem) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if err := database.Redis.Set(ctx, key, data, cartTTL).Err(); err != nil {
		return err
	}
	// Notifie les websockets ouverts sur ce panier
	database.Redis.Publish(ctx, key, "updated")
	return nil
}

//
// 🟢 GET /api/v1/cart
//
func GetCart(c *gin.Context) {
	cart := loadCart(context.Background(), cartKey(c))

	total := 0.0
	for _, item := range cart {
		total += item.Price * float64(item.Quantity)
	}

	c.JSON(http.StatusOK, gin.H{"items": cart, "total": total, "count": len(cart)})
}

//
// 🟢 POST /api/v1/cart/add
//
func AddToCart(c *gin.Context) {
	var input struct {
		ProductVariantID string `json:"productVariantId"`
		Quantity         int    `json:"quantity"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	variantID, err := gocql.ParseUUID(input.ProductVariantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID variante invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var (
		productID       gocql.UUID
		size, color     string
		price           float64
		quantityInStock int
	)
	err = session.Query(`SELECT product_id, size, color, price, quantity
		FROM product_variants WHERE variant_id = ?`, variantID).
		Scan(&productID, &size, &color, &price, &quantityInStock)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Variante introuvable"})
		return
	}

	if quantityInStock < input.Quantity {
		c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant", "available": quantityInStock})
		return
	}

	var productName string
	var imageURLs []string
	if err := session.Query(`SELECT name, image_urls FROM products WHERE product_id = ?`, productID).
		Scan(&productName, &imageURLs); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	imageURL := ""
	if len(imageURLs) > 0 {
		imageURL = imageURLs[0]
	}

	ctx := context.Background()
	key := cartKey(c)
	cart := loadCart(ctx, key)

	// Fusionne avec une ligne existante pour la même variante
	found := false
	for i := range cart {
		if cart[i].ProductVariantID == input.ProductVariantID {
			cart[i].Quantity += input.Quantity
			cart[i].Price = price // rafraîchit l'instantané
			found = true
			break
		}
	}
	if !found {
		cart = append(cart, models.CartItem{
			ProductVariantID: input.ProductVariantID,
			ProductName:      productName,
			Size:             size,
			Color:            color,
			Price:            price,
			Quantity:         input.Quantity,
			ImageURL:         imageURL,
		})
	}

	if err := saveCart(ctx, key, cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": cart, "count": len(cart)})
}

//
// 🟢 POST /api/v1/cart/remove
//
func RemoveFromCart(c *gin.Context) {
	var input struct {
		ProductVariantID string `json:"productVariantId"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx := context.Background()
	key := cartKey(c)
	cart := loadCart(ctx, key)

	filtered := cart[:0]
	for _, item := range cart {
		if item.ProductVariantID != input.ProductVariantID {
			filtered = append(filtered, item)
		}
	}

	if err := saveCart(ctx, key, filtered); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": filtered, "count": len(filtered)})
}

//
// 🟢 POST /api/v1/cart/clear
//
func ClearCart(c *gin.Context) {
	ctx := context.Background()
	key := cartKey(c)

	database.Redis.Del(ctx, key)
	database.Redis.Publish(ctx, key, "cleared")

	c.JSON(http.StatusOK, gin.H{"items": []models.CartItem{}, "count": 0})
}

// ClearCartForKey vide un panier hors requête HTTP (après règlement).
func ClearCartForKey(ctx context.Context, owner string) {
	key := "cart:" + owner
	database.Redis.Del(ctx, key)
	database.Redis.Publish(ctx, key, "cleared")
}
