package models

type Currency struct {
	ID           int     `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	ExchangeRate float64 `json:"exchangeRate"`
	IsDefault    bool    `json:"isDefault"`
	IsActive     bool    `json:"isActive"`
}
