package auth

import (
	"context"
	"log"
	"net/http"
	"time"

	"africana_backend/internal/database"
	"africana_backend/internal/models"
	"africana_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const confirmTokenTTL = 24 * time.Hour

// ================== INSCRIPTION ==================

// Register crée un compte client à partir du seul email : le mot de
// passe n'est généré qu'à la confirmation de l'adresse.
func Register(c *gin.Context) {
	var input struct {
		Email     string `json:"email" binding:"required,email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := database.GetCustomersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base clients indisponible"})
		return
	}

	// Vérifier si l'email existe déjà
	if _, err := FindCustomerByEmail(ctx, input.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Un compte avec cet email existe déjà",
			"email": input.Email,
		})
		return
	}

	now := time.Now()
	customer := models.Customer{
		ID:        gocql.TimeUUID(),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Provider:  "local",
		CreatedAt: &now,
	}

	if err := insertCustomer(ctx, session, customer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Jeton de confirmation à usage unique, 24 h en Redis
	token := utils.GenerateRandomStringWithoutSymbols(32)
	database.Redis.Set(ctx, "confirm_email:"+token, input.Email, confirmTokenTTL)

	go func() {
		if err := utils.SendConfirmEmail(input.Email, token); err != nil {
			log.Println("❌ Envoi e-mail de confirmation échoué:", err)
		}
	}()

	c.JSON(http.StatusCreated, gin.H{
		"id":    customer.ID.String(),
		"email": customer.Email,
	})
}

// ConfirmEmail valide le jeton, génère le mot de passe initial et
// l'envoie par e-mail.
func ConfirmEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Jeton manquant"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email, err := database.Redis.Get(ctx, "confirm_email:"+token).Result()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Jeton invalide ou expiré"})
		return
	}

	customer, err := FindCustomerByEmail(ctx, email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	password := utils.GenerateRandomStringWithoutSymbols(12)
	hashed, err := utils.HashPassword(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hash mot de passe"})
		return
	}

	session, err := database.GetCustomersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base clients indisponible"})
		return
	}

	now := time.Now()
	if err := session.Query(`UPDATE customers SET password = ?, email_verified_at = ? WHERE customer_id = ?`,
		hashed, now, customer.ID).WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	database.Redis.Del(ctx, "confirm_email:"+token)

	go func() {
		if err := utils.SendLoginDetailsEmail(email, password); err != nil {
			log.Println("❌ Envoi des identifiants échoué:", err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"message": "Adresse confirmée, identifiants envoyés par e-mail"})
}

// ================== CONNEXION ==================

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	customer, err := FindCustomerByEmail(ctx, input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if customer.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Adresse e-mail non confirmée"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, customer.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe incorrect"})
		return
	}

	issueTokens(c, customer.ID.String(), customer.Email, "customer")
}

// AdminLogin authentifie sur la table admins, rôle "admin" dans le JWT.
func AdminLogin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := database.GetCustomersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base clients indisponible"})
		return
	}

	var admin models.Admin
	err = session.Query(`SELECT admin_id, name, email, password FROM admins_by_email WHERE email = ?`,
		input.Email).WithContext(ctx).Scan(&admin.ID, &admin.Name, &admin.Email, &admin.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, admin.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe incorrect"})
		return
	}

	issueTokens(c, admin.ID.String(), admin.Email, "admin")
}

// ================== SESSION ==================

// ChangePassword remplace le mot de passe du client connecté après
// vérification de l'ancien.
func ChangePassword(c *gin.Context) {
	var input struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	cid, err := gocql.ParseUUID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := database.GetCustomersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base clients indisponible"})
		return
	}

	var currentHash string
	if err := session.Query(`SELECT password FROM customers WHERE customer_id = ?`, cid).
		WithContext(ctx).Scan(&currentHash); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	ok, err := utils.VerifyPassword(input.OldPassword, currentHash)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe incorrect"})
		return
	}

	newHash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hash mot de passe"})
		return
	}

	if err := session.Query(`UPDATE customers SET password = ? WHERE customer_id = ?`, newHash, cid).
		WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe mis à jour"})
}

// Refresh échange le cookie de refresh contre un nouveau couple de jetons.
func Refresh(c *gin.Context) {
	cookie, err := c.Cookie("refresh_token")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token manquant"})
		return
	}

	email, err := utils.ParseRefreshToken(cookie)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	customer, err := FindCustomerByEmail(ctx, email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	// Le refresh token présenté doit être celui stocké (rotation)
	if customer.RefreshToken != cookie {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token révoqué"})
		return
	}

	issueTokens(c, customer.ID.String(), customer.Email, "customer")
}

// Logout révoque le refresh token stocké et efface le cookie.
func Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	if cid, err := gocql.ParseUUID(userID); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if session, err := database.GetCustomersSession(); err == nil {
			session.Query(`UPDATE customers SET refresh_token = '' WHERE customer_id = ?`, cid).
				WithContext(ctx).Exec()
		}
	}

	c.SetCookie("refresh_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

// ================== HELPERS ==================

// FindCustomerByEmail passe par la table de correspondance
// customers_by_email puis charge la ligne complète.
func FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	session, err := database.GetCustomersSession()
	if err != nil {
		return nil, err
	}

	var customerID gocql.UUID
	if err := session.Query(`SELECT customer_id FROM customers_by_email WHERE email = ?`, email).
		WithContext(ctx).Scan(&customerID); err != nil {
		return nil, err
	}

	var customer models.Customer
	var emailVerifiedAt, createdAt time.Time
	err = session.Query(`SELECT customer_id, first_name, last_name, email, phone, address1, address2,
		postal_code, city, state, country, password, refresh_token, provider, email_verified_at, created_at
		FROM customers WHERE customer_id = ?`, customerID).WithContext(ctx).
		Scan(&customer.ID, &customer.FirstName, &customer.LastName, &customer.Email, &customer.Phone,
			&customer.Address1, &customer.Address2, &customer.PostalCode, &customer.City,
			&customer.State, &customer.Country, &customer.Password, &customer.RefreshToken,
			&customer.Provider, &emailVerifiedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	if !emailVerifiedAt.IsZero() {
		customer.EmailVerifiedAt = &emailVerifiedAt
	}
	if !createdAt.IsZero() {
		customer.CreatedAt = &createdAt
	}
	return &customer, nil
}

func insertCustomer(ctx context.Context, session *gocql.Session, customer models.Customer) error {
	if err := session.Query(`INSERT INTO customers (customer_id, first_name, last_name, email, phone,
		address1, address2, postal_code, city, state, country, password, refresh_token, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID, customer.FirstName, customer.LastName, customer.Email, customer.Phone,
		customer.Address1, customer.Address2, customer.PostalCode, customer.City, customer.State,
		customer.Country, customer.Password, customer.RefreshToken, customer.Provider, customer.CreatedAt).
		WithContext(ctx).Exec(); err != nil {
		return err
	}

	return session.Query(`INSERT INTO customers_by_email (email, customer_id) VALUES (?, ?)`,
		customer.Email, customer.ID).WithContext(ctx).Exec()
}

// issueTokens signe le couple access/refresh, persiste le refresh et
// pose le cookie httpOnly.
func issueTokens(c *gin.Context, userID, email, role string) {
	accessToken, err := utils.GenerateAccessToken(userID, email, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	refreshToken, err := utils.GenerateRefreshToken(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération refresh token"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if session, err := database.GetCustomersSession(); err == nil {
		if cid, perr := gocql.ParseUUID(userID); perr == nil {
			if role == "admin" {
				session.Query(`UPDATE admins SET refresh_token = ? WHERE admin_id = ?`, refreshToken, cid).
					WithContext(ctx).Exec()
			} else {
				session.Query(`UPDATE customers SET refresh_token = ? WHERE customer_id = ?`, refreshToken, cid).
					WithContext(ctx).Exec()
			}
		}
	}

	c.SetCookie("refresh_token", refreshToken, int(utils.RefreshTokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"user": gin.H{
			"id":    userID,
			"email": email,
			"role":  role,
		},
	})
}
