// Package audit inspects the ledger for semantic drift, checksum corruption,
// and orphaned records. It reports; it never repairs. Repairs flow through
// normal edits so history stays honest.
package audit

import (
	"math"
	"strings"
	"unicode"
)

// Similarity computes token-frequency cosine similarity between two names.
// Result is in [0, 1]; 1 means identical token multisets. Tokenization is
// case-insensitive and ignores punctuation, so "re:" and "re" compare equal.
func Similarity(a, b string) float64 {
	va := termFrequencies(a)
	vb := termFrequencies(b)
	if len(va) == 0 || len(vb) == 0 {
		if len(va) == 0 && len(vb) == 0 {
			return 1
		}
		return 0
	}

	var dot, normA, normB float64
	for term, fa := range va {
		normA += fa * fa
		if fb, ok := vb[term]; ok {
			dot += fa * fb
		}
	}
	for _, fb := range vb {
		normB += fb * fb
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func termFrequencies(text string) map[string]float64 {
	freq := make(map[string]float64)
	for _, tok := range tokenize(text) {
		freq[tok]++
	}
	return freq
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
