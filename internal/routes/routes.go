package routes

import (
	"os"
	"time"

	"africana_backend/internal/handlers/auth"
	"africana_backend/internal/handlers/cart"
	"africana_backend/internal/handlers/checkout"
	"africana_backend/internal/handlers/currency"
	"africana_backend/internal/handlers/order"
	"africana_backend/internal/handlers/payment"
	"africana_backend/internal/handlers/product"
	"africana_backend/internal/handlers/tax"
	"africana_backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers regroupe les handlers à état injectés depuis main.
type Handlers struct {
	Checkout *checkout.Handler
	Payment  *payment.Handler
	Order    *order.Handler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api/v1")
	api.Use(middleware.APIRateLimit())

	// ================== AUTH ==================
	api.POST("/auth/register", middleware.RegisterRateLimit(), auth.Register)
	api.GET("/auth/confirm-email", auth.ConfirmEmail)
	api.POST("/auth/login", middleware.LoginRateLimit(), auth.Login)
	api.POST("/auth/admin/login", middleware.LoginRateLimit(), auth.AdminLogin)
	api.POST("/auth/refresh", auth.Refresh)
	api.GET("/auth/:provider", auth.BeginAuth)
	api.GET("/auth/:provider/callback", auth.CallbackAuth)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	authed.POST("/auth/change-password", auth.ChangePassword)
	authed.POST("/auth/logout", auth.Logout)

	// ================== CATALOGUE ==================
	api.GET("/products", product.ListProducts)
	api.GET("/products/search", middleware.SearchRateLimit(), product.SearchProducts)
	api.GET("/products/:slug", product.GetProductBySlug)
	api.GET("/products/:slug/images", product.GetProductImages)
	api.GET("/products/:slug/reviews", product.ListReviews)
	api.POST("/products/:slug/reviews", product.CreateReview)
	api.GET("/categories", product.ListCategories)
	api.GET("/tags", product.ListTags)
	api.GET("/taxes", tax.ListTaxes)
	api.GET("/currencies", currency.ListCurrencies)

	// ================== PANIER ==================
	api.GET("/cart", cart.GetCart)
	api.POST("/cart/add", cart.AddToCart)
	api.POST("/cart/remove", cart.RemoveFromCart)
	api.POST("/cart/clear", cart.ClearCart)
	authed.GET("/cart/ws", cart.CartWebSocket)

	// ================== CHECKOUT & PAIEMENT ==================
	api.POST("/checkout", h.Checkout.Checkout)
	api.GET("/flutterwave/payment-callback", h.Payment.FlutterwaveCallback)
	api.GET("/squad/payment-callback", h.Payment.SquadCallback)
	api.GET("/stripe/payment-callback", h.Payment.StripeCallback)
	api.GET("/payments/:reference", middleware.AuthRequired(), middleware.RequireAdmin, h.Payment.GetPayment)
	api.GET("/payments/:reference/qr", h.Payment.GetPaymentQR)

	// ================== COMMANDES ==================
	authed.GET("/orders", h.Order.MyOrders)
	authed.GET("/orders/:id", h.Order.GetOrder)
	authed.GET("/orders/:id/invoice", h.Order.GetOrderInvoice)

	// ================== ADMIN ==================
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	admin.GET("/orders", h.Order.ListOrders)
	admin.POST("/products", product.CreateProduct)
	admin.PUT("/products/:id", product.UpdateProduct)
	admin.DELETE("/products/:id", product.DeleteProduct)
	admin.GET("/products/low-stock", product.LowStockProducts)
	admin.POST("/products/:id/variants", product.AddVariant)
	admin.PUT("/variants/:id", product.UpdateVariant)
	admin.POST("/products/:id/images", product.UploadProductImage)
	admin.POST("/categories", product.CreateCategory)
	admin.POST("/tags", product.CreateTag)
	admin.POST("/taxes", tax.CreateTax)
}
