package models

const (
	TaxTypePercentage  = "Percentage"
	TaxTypeFixedAmount = "FixedAmount"
)

type Tax struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Type     string  `json:"type"` // Percentage ou FixedAmount
	IsActive bool    `json:"isActive"`
}

// Apply ajoute la taxe à un sous-total selon son type.
func (t Tax) Apply(subTotal float64) float64 {
	if t.Type == TaxTypePercentage {
		return subTotal + (subTotal * t.Value / 100)
	}
	return subTotal + t.Value
}
