package auth

import (
	"context"
	"net/http"
	"time"

	"africana_backend/internal/database"
	"africana_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/markbates/goth/gothic"
)

// BeginAuth redirige vers la page de consentement du provider OAuth
// (google ou facebook).
func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth termine le flux OAuth, crée le client au premier login
// et émet le même couple de jetons que le login local.
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customer, err := FindCustomerByEmail(ctx, gothUser.Email)
	if err != nil {
		// Premier login OAuth : création à la volée, adresse considérée
		// comme vérifiée par le provider.
		session, serr := database.GetCustomersSession()
		if serr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Base clients indisponible"})
			return
		}

		now := time.Now()
		fresh := models.Customer{
			ID:              gocql.TimeUUID(),
			FirstName:       gothUser.FirstName,
			LastName:        gothUser.LastName,
			Email:           gothUser.Email,
			Provider:        provider,
			EmailVerifiedAt: &now,
			CreatedAt:       &now,
		}
		if err := insertCustomer(ctx, session, fresh); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := session.Query(`UPDATE customers SET email_verified_at = ? WHERE customer_id = ?`,
			now, fresh.ID).WithContext(ctx).Exec(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		customer = &fresh
	}

	issueTokens(c, customer.ID.String(), customer.Email, "customer")
}
