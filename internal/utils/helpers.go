package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRandomStringWithoutSymbols produit une chaîne alphanumérique
// aléatoire. Sert de code de commande et de référence de transaction
// (clé d'idempotence) : elle doit être imprévisible, d'où crypto/rand.
func GenerateRandomStringWithoutSymbols(length int) string {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// rand.Reader ne tombe pas en pratique ; on ne dégrade pas.
			panic(err)
		}
		b.WriteByte(referenceAlphabet[n.Int64()])
	}
	return b.String()
}

// Slugify transforme un nom en slug URL (minuscules, tirets).
func Slugify(word string) string {
	slug := strings.ToLower(strings.TrimSpace(word))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
