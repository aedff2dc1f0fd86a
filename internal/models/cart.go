package models

// CartItem est stocké en JSON dans Redis sous la clé cart:<session>.
// Le prix est un instantané au moment de l'ajout ; le checkout
// recalcule toujours avec le prix courant de la variante.
type CartItem struct {
	ProductVariantID string  `json:"productVariantId"`
	ProductName      string  `json:"productName"`
	Size             string  `json:"size,omitempty"`
	Color            string  `json:"color,omitempty"`
	Price            float64 `json:"price"`
	Quantity         int     `json:"quantity"`
	ImageURL         string  `json:"imageUrl,omitempty"`
}
