package utils

import (
	"strings"
	"testing"
)

func TestGenerateRandomStringWithoutSymbols(t *testing.T) {
	ref := GenerateRandomStringWithoutSymbols(12)
	if len(ref) != 12 {
		t.Fatalf("longueur = %d, attendu 12", len(ref))
	}
	for _, r := range ref {
		if !strings.ContainsRune(referenceAlphabet, r) {
			t.Errorf("caractère hors alphabet: %q", r)
		}
	}

	// Deux tirages consécutifs ne doivent pas se répéter
	if GenerateRandomStringWithoutSymbols(12) == ref {
		t.Error("deux références identiques consécutives")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Robe Ankara Premium", "robe-ankara-premium"},
		{"  Boubou  Grand   Bazin ", "boubou-grand-bazin"},
		{"KENTE", "kente"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, attendu %q", tt.in, got, tt.want)
		}
	}
}
