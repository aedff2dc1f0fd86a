package models

import "testing"

func TestTaxApply(t *testing.T) {
	tests := []struct {
		name     string
		tax      Tax
		subTotal float64
		want     float64
	}{
		{
			name:     "pourcentage",
			tax:      Tax{Type: TaxTypePercentage, Value: 7.5},
			subTotal: 1000,
			want:     1075,
		},
		{
			name:     "montant fixe",
			tax:      Tax{Type: TaxTypeFixedAmount, Value: 50},
			subTotal: 1000,
			want:     1050,
		},
		{
			name:     "pourcentage nul",
			tax:      Tax{Type: TaxTypePercentage, Value: 0},
			subTotal: 1000,
			want:     1000,
		},
		{
			name:     "sous-total nul",
			tax:      Tax{Type: TaxTypeFixedAmount, Value: 25},
			subTotal: 0,
			want:     25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tax.Apply(tt.subTotal); got != tt.want {
				t.Errorf("Apply(%v) = %v, attendu %v", tt.subTotal, got, tt.want)
			}
		})
	}
}
