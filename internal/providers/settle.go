package providers

import (
	"context"
	"fmt"
	"log"
	"time"

	"africana_backend/internal/models"
	"africana_backend/internal/store"
)

// SettlementResult décrit l'issue d'une vérification réussie.
type SettlementResult struct {
	Message string `json:"message"`

	// StockErrors contient les décrémentations de stock qui ont échoué.
	// La commande reste Completed : ces lignes sont à réconcilier à la
	// main, jamais perdues en silence.
	StockErrors []error `json:"-"`
}

// settle applique l'issue d'une vérification : transition du paiement,
// statut de la commande, décrémentation du stock. Partagé par tous les
// providers — seule la comparaison statut/montant/devise leur est propre.
func settle(ctx context.Context, st store.Store, payment *models.Payment, providerMeta string, matched bool) (*SettlementResult, error) {
	if !matched {
		// Décision déterministe : toute vérification négative marque le
		// paiement ET la commande en échec, jamais de Pending résiduel.
		if err := st.MarkPaymentFailed(ctx, payment.Reference); err != nil {
			log.Printf("❌ Erreur marquage paiement %s en échec: %v", payment.Reference, err)
		}
		if err := st.SetOrderStatus(ctx, payment.OrderID, models.OrderStatusFailed); err != nil {
			log.Printf("❌ Erreur marquage commande %s en échec: %v", payment.OrderID, err)
		}
		return nil, ErrPaymentFailed
	}

	// Garde d'idempotence atomique : la référence est la clé. Si la
	// transition Pending → Successful n'est pas appliquée, quelqu'un est
	// passé avant nous et les effets de bord ont déjà eu lieu.
	applied, currentStatus, err := st.MarkPaymentSuccessful(ctx, payment.Reference, providerMeta, time.Now())
	if err != nil {
		return nil, err
	}
	if !applied {
		if currentStatus == models.PaymentStatusSuccessful {
			return nil, ErrAlreadyCompleted
		}
		// Déjà marqué Failed par une vérification antérieure : terminal.
		return nil, ErrPaymentFailed
	}

	if err := st.SetOrderStatus(ctx, payment.OrderID, models.OrderStatusCompleted); err != nil {
		return nil, fmt.Errorf("commande %s: %w", payment.OrderID, err)
	}

	items, err := st.GetOrderItems(ctx, payment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("lignes de commande %s: %w", payment.OrderID, err)
	}

	// Décrémentation séquentielle, un CAS par ligne : chaque échec est
	// remonté dans le résultat.
	result := &SettlementResult{Message: "Order completed"}
	for _, item := range items {
		if err := st.DecrementVariantQuantity(ctx, item.ProductVariantID, item.Quantity); err != nil {
			log.Printf("⚠️ Stock non décrémenté pour la variante %s (commande %s): %v",
				item.ProductVariantID, payment.OrderID, err)
			result.StockErrors = append(result.StockErrors,
				fmt.Errorf("variante %s: %w", item.ProductVariantID, err))
		}
	}

	log.Printf("✅ Commande %s réglée via %s (réf %s)", payment.OrderID, payment.Channel, payment.Reference)
	return result, nil
}
