package payment

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"africana_backend/internal/cache"
	"africana_backend/internal/handlers/cart"
	"africana_backend/internal/models"
	"africana_backend/internal/providers"
	"africana_backend/internal/services"
	"africana_backend/internal/store"
	"africana_backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// Handler traite les callbacks de vérification des prestataires et les
// endpoints de consultation des paiements.
type Handler struct {
	store    store.Store
	payments *services.PaymentService
}

func NewHandler(st store.Store, payments *services.PaymentService) *Handler {
	return &Handler{store: st, payments: payments}
}

//
// 🟢 GET /api/v1/flutterwave/payment-callback?tx_ref=...
//
func (h *Handler) FlutterwaveCallback(c *gin.Context) {
	h.verify(c, "flutterwave", c.Query("tx_ref"))
}

//
// 🟢 GET /api/v1/squad/payment-callback?transaction_ref=...
//
func (h *Handler) SquadCallback(c *gin.Context) {
	h.verify(c, "squad", c.Query("transaction_ref"))
}

//
// 🟢 GET /api/v1/stripe/payment-callback?reference=...
//
func (h *Handler) StripeCallback(c *gin.Context) {
	h.verify(c, "stripe", c.Query("reference"))
}

// verify délègue la vérification au prestataire et traduit la taxonomie
// d'erreurs du règlement en JSON {success, message}.
func (h *Handler) verify(c *gin.Context, providerName, reference string) {
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Transaction reference not found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result, err := h.payments.VerifyTransaction(ctx, providerName, reference)
	if err != nil {
		switch {
		case errors.Is(err, providers.ErrReferenceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Transaction reference not found"})
		case errors.Is(err, providers.ErrAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Order has already been completed"})
		case errors.Is(err, providers.ErrPaymentFailed):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Payment failed"})
		default:
			log.Printf("❌ Vérification %s (réf %s) en erreur: %v", providerName, reference, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		}
		return
	}

	// Effets de bord post-règlement, meilleure volonté : panier vidé et
	// e-mail de confirmation avec facture PDF.
	go h.afterSettlement(reference)

	response := gin.H{"success": true, "message": result.Message}
	if len(result.StockErrors) > 0 {
		msgs := make([]string, 0, len(result.StockErrors))
		for _, serr := range result.StockErrors {
			msgs = append(msgs, serr.Error())
		}
		response["stockWarnings"] = msgs
	}
	c.JSON(http.StatusOK, response)
}

//
// 🟢 GET /api/v1/payments/:reference (admin)
//
func (h *Handler) GetPayment(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	p, err := h.store.GetPaymentByReference(ctx, c.Param("reference"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction reference not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, p)
}

//
// 🟢 GET /api/v1/payments/:reference/qr — QR PNG du lien de paiement
//
func (h *Handler) GetPaymentQR(c *gin.Context) {
	reference := c.Param("reference")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if _, err := h.store.GetPaymentByReference(ctx, reference); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction reference not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	payLink := os.Getenv("FRONTEND_URL") + "/pay/" + reference
	png, err := utils.GeneratePaymentQRPNG(payLink)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération QR"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// afterSettlement vide le panier du client et envoie la confirmation de
// commande avec la facture en pièce jointe. Tout est best-effort : un
// échec ici ne remet pas le règlement en cause.
func (h *Handler) afterSettlement(reference string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	p, err := h.store.GetPaymentByReference(ctx, reference)
	if err != nil || p.Status != models.PaymentStatusSuccessful {
		return
	}

	order, err := h.store.GetOrder(ctx, p.OrderID)
	if err != nil {
		log.Printf("⚠️ Post-règlement %s: commande introuvable: %v", reference, err)
		return
	}

	customer, err := cache.GetCustomerFromCache(order.CustomerID.String())
	if err != nil {
		log.Printf("⚠️ Post-règlement %s: client introuvable: %v", reference, err)
		return
	}

	cart.ClearCartForKey(ctx, customer.ID.String())

	items, err := h.store.GetOrderItems(ctx, order.ID)
	if err != nil {
		log.Printf("⚠️ Post-règlement %s: lignes introuvables: %v", reference, err)
		return
	}

	variantIDs := make([]string, 0, len(items))
	for _, item := range items {
		variantIDs = append(variantIDs, item.ProductVariantID.String())
	}
	names := cache.GetProductNamesFromCache(variantIDs)

	lines := make([]utils.OrderLine, 0, len(items))
	for _, item := range items {
		name := names[item.ProductVariantID.String()]
		if name == "" {
			name = item.ProductVariantID.String()
		}
		lines = append(lines, utils.OrderLine{
			Name:     name,
			Quantity: item.Quantity,
			Price:    item.PricePerItem,
		})
	}

	symbol := currencySymbol(p.Channel)
	html := utils.GenerateOrderConfirmationHTML(*order, lines, symbol)

	// Facture PDF : page front imprimée par chromedp, QR du lien de
	// paiement incrusté.
	var pdf []byte
	qr, err := utils.GeneratePaymentQRBase64(os.Getenv("FRONTEND_URL") + "/pay/" + reference)
	if err == nil {
		pdf, err = utils.RenderInvoicePDF(utils.GetFrontendInvoiceBaseURL(), order.ID.String(), qr)
		if err != nil {
			log.Printf("⚠️ Génération facture PDF échouée (commande %s): %v", order.Code, err)
			pdf = nil
		}
	}

	if err := utils.SendEmail(customer.Email, "Confirmation de votre commande "+order.Code, html, pdf); err != nil {
		log.Printf("⚠️ E-mail de confirmation non envoyé (commande %s): %v", order.Code, err)
	}
}

func currencySymbol(channel string) string {
	switch channel {
	case "Flutterwave":
		return "₦"
	case "Squadco":
		return "$"
	case "Stripe":
		return "€"
	default:
		return ""
	}
}
