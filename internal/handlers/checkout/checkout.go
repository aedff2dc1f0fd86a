package checkout

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"africana_backend/internal/database"
	"africana_backend/internal/handlers/auth"
	"africana_backend/internal/models"
	"africana_backend/internal/providers"
	"africana_backend/internal/services"
	"africana_backend/internal/store"
	"africana_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// Handler porte le flux de checkout : accès données explicite, pas de
// session globale, pour que la commande et le paiement partagent le
// même handle.
type Handler struct {
	store    store.Store
	payments *services.PaymentService

	// upsert retrouve ou crée le client du checkout ; injectable pour
	// les tests, Scylla en production.
	upsert func(ctx context.Context, in checkoutCustomer) (*models.Customer, error)
}

func NewHandler(st store.Store, payments *services.PaymentService) *Handler {
	h := &Handler{store: st, payments: payments}
	h.upsert = h.upsertCustomer
	return h
}

type checkoutCustomer struct {
	Email      string `json:"email" binding:"required,email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
}

type checkoutItem struct {
	ProductVariantID string `json:"productVariantId" binding:"required"`
	Quantity         int    `json:"quantity" binding:"required,min=1"`
}

type checkoutInput struct {
	Customer      checkoutCustomer `json:"customer" binding:"required"`
	OrderItems    []checkoutItem   `json:"orderItems" binding:"required,min=1"`
	TaxID         int              `json:"taxId"`
	PaymentMethod string           `json:"paymentMethod" binding:"required"`
	Notes         string           `json:"notes"`
}

//
// 🟢 POST /api/v1/checkout
//
func (h *Handler) Checkout(c *gin.Context) {
	var input checkoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// Le prestataire est validé avant toute écriture
	if _, ok := h.payments.Provider(input.PaymentMethod); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Currency not found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	customer, err := h.upsert(ctx, input.Customer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	// Sous-total au prix COURANT des variantes : une variante inconnue
	// fait échouer tout le checkout avant la moindre écriture.
	subTotal := 0.0
	items := make([]models.OrderItem, 0, len(input.OrderItems))
	for _, line := range input.OrderItems {
		variantID, err := gocql.ParseUUID(line.ProductVariantID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false,
				"message": "Product variant not found: " + line.ProductVariantID})
			return
		}

		variant, err := h.store.GetProductVariant(ctx, variantID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false,
					"message": "Product variant not found: " + line.ProductVariantID})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}

		subTotal += variant.Price * float64(line.Quantity)
		items = append(items, models.OrderItem{
			ProductVariantID: variant.ID,
			PricePerItem:     variant.Price,
			Quantity:         line.Quantity,
		})
	}

	tax, err := h.store.GetTax(ctx, input.TaxID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Tax not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	total := tax.Apply(subTotal)

	order := &models.Order{
		ID:         gocql.TimeUUID(),
		Code:       utils.GenerateRandomStringWithoutSymbols(12),
		CustomerID: customer.ID,
		SubTotal:   subTotal,
		TaxID:      tax.ID,
		Total:      total,
		Address1:   input.Customer.Address1,
		Address2:   input.Customer.Address2,
		PostalCode: input.Customer.PostalCode,
		City:       input.Customer.City,
		State:      input.Customer.State,
		Country:    input.Customer.Country,
		Notes:      input.Notes,
		Status:     models.OrderStatusPending,
		CreatedAt:  time.Now(),
	}
	for i := range items {
		items[i].OrderID = order.ID
	}

	if err := h.store.CreateOrder(ctx, order, items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	payload, err := h.payments.InitiatePayment(ctx, input.PaymentMethod,
		customer.Email, order.ID.String(), total)
	if err != nil {
		if errors.Is(err, providers.ErrCurrencyNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Currency not found"})
			return
		}
		log.Printf("❌ Initiation paiement %s échouée (commande %s): %v",
			input.PaymentMethod, order.Code, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Payment failed"})
		return
	}

	// La réponse du prestataire est retournée telle quelle au front
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orderId": order.ID.String(),
		"code":    order.Code,
		"total":   total,
		"payment": payload,
	})
}

// upsertCustomer retrouve le client par email ou le crée à la volée
// (inscription invitée, confirmation envoyée en tâche de fond).
func (h *Handler) upsertCustomer(ctx context.Context, in checkoutCustomer) (*models.Customer, error) {
	if existing, err := auth.FindCustomerByEmail(ctx, in.Email); err == nil {
		return existing, nil
	}

	session, err := database.GetCustomersSession()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	customer := models.Customer{
		ID:         gocql.TimeUUID(),
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Phone:      in.Phone,
		Address1:   in.Address1,
		Address2:   in.Address2,
		PostalCode: in.PostalCode,
		City:       in.City,
		State:      in.State,
		Country:    in.Country,
		Provider:   "local",
		CreatedAt:  &now,
	}

	if err := session.Query(`INSERT INTO customers (customer_id, first_name, last_name, email, phone,
		address1, address2, postal_code, city, state, country, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID, customer.FirstName, customer.LastName, customer.Email, customer.Phone,
		customer.Address1, customer.Address2, customer.PostalCode, customer.City, customer.State,
		customer.Country, customer.Provider, now).WithContext(ctx).Exec(); err != nil {
		return nil, err
	}
	if err := session.Query(`INSERT INTO customers_by_email (email, customer_id) VALUES (?, ?)`,
		customer.Email, customer.ID).WithContext(ctx).Exec(); err != nil {
		return nil, err
	}

	token := utils.GenerateRandomStringWithoutSymbols(32)
	database.Redis.Set(ctx, "confirm_email:"+token, customer.Email, 24*time.Hour)
	go func() {
		if err := utils.SendConfirmEmail(customer.Email, token); err != nil {
			log.Println("❌ Envoi e-mail de confirmation échoué:", err)
		}
	}()

	return &customer, nil
}
