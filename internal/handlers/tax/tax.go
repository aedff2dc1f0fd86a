package tax

import (
	"context"
	"net/http"

	"africana_backend/internal/database"
	"africana_backend/internal/models"

	"github.com/gin-gonic/gin"
)

//
// 🟢 GET /api/v1/taxes
//
func ListTaxes(c *gin.Context) {
	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base commandes indisponible"})
		return
	}

	iter := session.Query(`SELECT id, name, value, type, is_active FROM taxes`).Iter()

	var taxes []models.Tax
	var t models.Tax
	for iter.Scan(&t.ID, &t.Name, &t.Value, &t.Type, &t.IsActive) {
		taxes = append(taxes, t)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"taxes": taxes, "count": len(taxes)})
}

//
// 🟢 POST /api/v1/admin/taxes
//
func CreateTax(c *gin.Context) {
	var input struct {
		Name     string  `json:"name" binding:"required"`
		Value    float64 `json:"value" binding:"required"`
		Type     string  `json:"type" binding:"required"`
		IsActive *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Type != models.TaxTypePercentage && input.Type != models.TaxTypeFixedAmount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type de taxe invalide (Percentage ou FixedAmount)"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base commandes indisponible"})
		return
	}

	id, err := database.Redis.Incr(context.Background(), "seq:taxes").Result()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération id"})
		return
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	tax := models.Tax{
		ID:       int(id),
		Name:     input.Name,
		Value:    input.Value,
		Type:     input.Type,
		IsActive: isActive,
	}

	if err := session.Query(`INSERT INTO taxes (id, name, value, type, is_active) VALUES (?, ?, ?, ?, ?)`,
		tax.ID, tax.Name, tax.Value, tax.Type, tax.IsActive).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, tax)
}
