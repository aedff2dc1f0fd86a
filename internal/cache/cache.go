package cache

import (
	"context"
	"encoding/json"
	"time"

	"africana_backend/internal/database"
	"africana_backend/internal/models"

	"github.com/gocql/gocql"
)

const (
	CustomerCacheTTL = 5 * time.Minute
	ProductCacheTTL  = 10 * time.Minute
)

// GetCustomerFromCache récupère un client depuis Redis ou ScyllaDB
func GetCustomerFromCache(customerID string) (*models.Customer, error) {
	ctx := context.Background()
	key := "customer:" + customerID

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var customer models.Customer
		if json.Unmarshal([]byte(data), &customer) == nil {
			return &customer, nil
		}
	}

	// 2. Récupérer de ScyllaDB
	session, err := database.GetCustomersSession()
	if err != nil {
		return nil, err
	}

	cid, err := gocql.ParseUUID(customerID)
	if err != nil {
		return nil, err
	}

	var customer models.Customer
	customer.ID = cid
	err = session.Query(`SELECT first_name, last_name, email, phone, address1, address2,
		postal_code, city, state, country, provider
		FROM customers WHERE customer_id = ?`, cid).Scan(
		&customer.FirstName, &customer.LastName, &customer.Email, &customer.Phone,
		&customer.Address1, &customer.Address2, &customer.PostalCode,
		&customer.City, &customer.State, &customer.Country, &customer.Provider)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(customer)
	database.Redis.Set(ctx, key, jsonData, CustomerCacheTTL)

	return &customer, nil
}

// InvalidateCustomerCache invalide le cache d'un client
func InvalidateCustomerCache(customerID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "customer:"+customerID)
}

// GetProductNamesFromCache récupère plusieurs noms de produits par
// variante (pour les détails de commande et les e-mails).
func GetProductNamesFromCache(variantIDs []string) map[string]string {
	ctx := context.Background()
	result := make(map[string]string)
	missingIDs := []string{}

	// 1. Essayer de récupérer depuis Redis
	for _, variantID := range variantIDs {
		key := "variant_name:" + variantID
		name, err := database.Redis.Get(ctx, key).Result()
		if err == nil {
			result[variantID] = name
		} else {
			missingIDs = append(missingIDs, variantID)
		}
	}

	// 2. Récupérer les variantes manquantes depuis ScyllaDB
	if len(missingIDs) > 0 {
		session, err := database.GetProductsSession()
		if err != nil {
			return result
		}
		for _, variantID := range missingIDs {
			vid, err := gocql.ParseUUID(variantID)
			if err != nil {
				continue
			}
			var productID gocql.UUID
			var sku string
			if err := session.Query(`SELECT product_id, sku FROM product_variants WHERE variant_id = ?`,
				vid).Scan(&productID, &sku); err != nil {
				continue
			}
			var name string
			if err := session.Query(`SELECT name FROM products WHERE product_id = ?`,
				productID).Scan(&name); err != nil {
				continue
			}
			if sku != "" {
				name = name + " (" + sku + ")"
			}
			result[variantID] = name
			database.Redis.Set(ctx, "variant_name:"+variantID, name, ProductCacheTTL)
		}
	}

	return result
}

// InvalidateProductCache invalide le cache d'un produit et de ses variantes
func InvalidateProductCache(productID string, variantIDs ...string) {
	ctx := context.Background()
	keys := []string{"product:" + productID}
	for _, vid := range variantIDs {
		keys = append(keys, "variant_name:"+vid)
	}
	database.Redis.Del(ctx, keys...)
}
