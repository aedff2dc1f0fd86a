package order

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"africana_backend/internal/cache"
	"africana_backend/internal/database"
	"africana_backend/internal/models"
	"africana_backend/internal/store"
	"africana_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// Handler expose la consultation des commandes (admin et client).
type Handler struct {
	store store.Store
}

func NewHandler(st store.Store) *Handler {
	return &Handler{store: st}
}

//
// 🟢 GET /api/v1/admin/orders
//
func (h *Handler) ListOrders(c *gin.Context) {
	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base commandes indisponible"})
		return
	}

	iter := session.Query(`SELECT order_id, code, customer_id, sub_total, tax_id, total,
		address1, address2, postal_code, city, state, country, notes, status, created_at
		FROM orders`).Iter()

	var orders []models.Order
	var o models.Order
	for iter.Scan(&o.ID, &o.Code, &o.CustomerID, &o.SubTotal, &o.TaxID, &o.Total,
		&o.Address1, &o.Address2, &o.PostalCode, &o.City, &o.State, &o.Country,
		&o.Notes, &o.Status, &o.CreatedAt) {
		orders = append(orders, o)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

//
// 🟢 GET /api/v1/orders — historique du client connecté
//
func (h *Handler) MyOrders(c *gin.Context) {
	customerID, err := gocql.ParseUUID(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base commandes indisponible"})
		return
	}

	iter := session.Query(`SELECT order_id FROM orders_by_customer WHERE customer_id = ?`,
		customerID).WithContext(ctx).Iter()

	var orderIDs []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		orderIDs = append(orderIDs, id)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	orders := make([]models.Order, 0, len(orderIDs))
	for _, oid := range orderIDs {
		o, err := h.store.GetOrder(ctx, oid)
		if err != nil {
			continue
		}
		orders = append(orders, *o)
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

//
// 🟢 GET /api/v1/orders/:id — détail avec contrôle de propriété
//
func (h *Handler) GetOrder(c *gin.Context) {
	o, ok := h.loadOwnedOrder(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	items, err := h.store.GetOrderItems(ctx, o.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	o.Items = items

	variantIDs := make([]string, 0, len(items))
	for _, item := range items {
		variantIDs = append(variantIDs, item.ProductVariantID.String())
	}
	names := cache.GetProductNamesFromCache(variantIDs)

	c.JSON(http.StatusOK, gin.H{"order": o, "productNames": names})
}

//
// 🟢 GET /api/v1/orders/:id/invoice — facture PDF
//
func (h *Handler) GetOrderInvoice(c *gin.Context) {
	o, ok := h.loadOwnedOrder(c)
	if !ok {
		return
	}

	qr, err := utils.GeneratePaymentQRBase64(os.Getenv("FRONTEND_URL") + "/order/" + o.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération QR"})
		return
	}

	pdf, err := utils.RenderInvoicePDF(utils.GetFrontendInvoiceBaseURL(), o.ID.String(), qr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération facture"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="facture_`+o.Code+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// loadOwnedOrder charge la commande et vérifie que l'appelant est admin
// ou son propriétaire. Répond lui-même en cas d'échec.
func (h *Handler) loadOwnedOrder(c *gin.Context) (*models.Order, bool) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	o, err := h.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}

	role := c.GetString("role")
	if role != "admin" && o.CustomerID.String() != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Commande d'un autre client"})
		return nil, false
	}

	return o, true
}
