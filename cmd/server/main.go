package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"africana_backend/internal/config"
	"africana_backend/internal/database"
	"africana_backend/internal/handlers/checkout"
	"africana_backend/internal/handlers/order"
	"africana_backend/internal/handlers/payment"
	"africana_backend/internal/providers"
	"africana_backend/internal/routes"
	"africana_backend/internal/services"
	"africana_backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
	"github.com/stripe/stripe-go/v83"
)

func main() {
	config.Load()

	database.ConnectDatabases()
	defer database.CloseScylla()

	warmupRedisCache()
	initOAuthProviders()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		log.Fatalf("❌ Session commandes indisponible: %v", err)
	}
	productsSession, err := database.GetProductsSession()
	if err != nil {
		log.Fatalf("❌ Session produits indisponible: %v", err)
	}

	st := store.NewScyllaStore(ordersSession, productsSession)

	flutterwave, err := providers.NewFlutterwaveProvider(st)
	if err != nil {
		log.Fatalf("❌ Flutterwave non configuré: %v", err)
	}
	squad, err := providers.NewSquadProvider(st)
	if err != nil {
		log.Fatalf("❌ Squad non configuré: %v", err)
	}
	stripeProvider, err := providers.NewStripeProvider(st)
	if err != nil {
		log.Fatalf("❌ Stripe non configuré: %v", err)
	}

	payments := services.NewPaymentService(flutterwave, squad, stripeProvider)

	h := routes.Handlers{
		Checkout: checkout.NewHandler(st, payments),
		Payment:  payment.NewHandler(st, payments),
		Order:    order.NewHandler(st),
	}

	r := gin.Default()
	routes.RegisterRoutes(r, h)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Africana lancé sur le port", port)
	r.Run(":" + port)
}

func initOAuthProviders() {
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("❌ SESSION_SECRET manquant dans .env")
	}

	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.MaxAge(86400 * 30)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   false, // false en dev, true en prod
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	gothic.GetProviderName = func(req *http.Request) (string, error) {
		if provider := req.URL.Query().Get("provider"); provider != "" {
			return provider, nil
		}
		if provider := req.FormValue("provider"); provider != "" {
			return provider, nil
		}
		return "", errors.New("provider not found")
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	googleCallback := baseURL + "/api/v1/auth/google/callback"
	facebookCallback := baseURL + "/api/v1/auth/facebook/callback"

	googleClientID := os.Getenv("GOOGLE_CLIENT_ID")
	googleClientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	facebookClientID := os.Getenv("FACEBOOK_CLIENT_ID")
	facebookClientSecret := os.Getenv("FACEBOOK_CLIENT_SECRET")

	var oauthProviders []goth.Provider

	if googleClientID != "" && googleClientSecret != "" {
		oauthProviders = append(oauthProviders, google.New(
			googleClientID,
			googleClientSecret,
			googleCallback,
		))
		log.Println("✅ Google OAuth activé")
	}

	if facebookClientID != "" && facebookClientSecret != "" {
		oauthProviders = append(oauthProviders, facebook.New(
			facebookClientID,
			facebookClientSecret,
			facebookCallback,
		))
		log.Println("✅ Facebook OAuth activé")
	}

	if len(oauthProviders) == 0 {
		log.Println("⚠️ Aucun provider OAuth configuré")
		return
	}

	goth.UseProviders(oauthProviders...)
	log.Printf("✅ %d OAuth provider(s) initialisé(s)", len(oauthProviders))
}

// warmupRedisCache pré-chauffe la connexion Redis pour éviter la
// latence du premier appel.
func warmupRedisCache() {
	ctx := context.Background()
	if err := database.Redis.Ping(ctx).Err(); err == nil {
		log.Println("✅ Cache Redis pré-chauffé")
	}
}
