package currency

import (
	"net/http"

	"africana_backend/internal/database"
	"africana_backend/internal/models"

	"github.com/gin-gonic/gin"
)

//
// 🟢 GET /api/v1/currencies
//
func ListCurrencies(c *gin.Context) {
	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base commandes indisponible"})
		return
	}

	iter := session.Query(`SELECT code, id, name, exchange_rate, is_default, is_active FROM currencies`).Iter()

	var currencies []models.Currency
	var cur models.Currency
	for iter.Scan(&cur.Code, &cur.ID, &cur.Name, &cur.ExchangeRate, &cur.IsDefault, &cur.IsActive) {
		currencies = append(currencies, cur)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"currencies": currencies, "count": len(currencies)})
}
