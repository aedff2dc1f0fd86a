package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"africana_backend/internal/database"
	"africana_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// CartWebSocket pousse l'état du panier à chaque modification, via le
// canal pub/sub Redis partagé avec les handlers HTTP.
func CartWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()
	key := "cart:" + userID

	pubsub := database.Redis.Subscribe(ctx, key)
	defer pubsub.Close()

	ch := pubsub.Channel()

	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Synchronisation panier activée",
	})

	for {
		select {
		case msg := <-ch:
			if msg.Payload != "updated" && msg.Payload != "cleared" {
				continue
			}

			data, err := database.Redis.Get(ctx, key).Result()

			var response map[string]interface{}
			if err != nil || data == "" {
				response = map[string]interface{}{
					"type":  "cart_updated",
					"items": []interface{}{},
					"total": 0,
					"count": 0,
				}
			} else {
				var items []models.CartItem
				json.Unmarshal([]byte(data), &items)

				total := 0.0
				for _, item := range items {
					total += item.Price * float64(item.Quantity)
				}

				response = map[string]interface{}{
					"type":  "cart_updated",
					"items": items,
					"total": total,
					"count": len(items),
				}
			}

			if err := conn.WriteJSON(response); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
