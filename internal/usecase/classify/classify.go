// Package classify maps free-text analyzer fields to votes using fixed keyword tables.
package classify

import (
	"strings"
	"unicode"

	"StockPulse/internal/domain/models"
)

// Keywords are matched against whole words, so "slow" never reads as "low".
var (
	buyKeywords  = []string{"buy", "bullish", "bull", "outperform", "overweight", "accumulate", "positive"}
	sellKeywords = []string{"sell", "bearish", "bear", "underperform", "underweight", "reduce", "negative"}

	lowRisk  = []string{"low"}
	highRisk = []string{"high"}
)

// Recommendation classifies a recommendation-like string. Matching is
// case-insensitive per word; text hitting both tables, or neither, is no vote.
func Recommendation(text string) models.Vote {
	return vote(words(text), buyKeywords, sellKeywords)
}

// RiskLevel classifies a risk label: low risk leans buy, high risk leans sell.
// "moderate-high" is high; "low to high" is no vote.
func RiskLevel(text string) models.Vote {
	return vote(words(text), lowRisk, highRisk)
}

func vote(ws map[string]struct{}, buyWords, sellWords []string) models.Vote {
	buy := containsAny(ws, buyWords)
	sell := containsAny(ws, sellWords)
	switch {
	case buy && !sell:
		return models.VoteBuy
	case sell && !buy:
		return models.VoteSell
	default:
		return models.VoteNone
	}
}

// words splits text on anything that is not a letter and lowercases the parts.
func words(text string) map[string]struct{} {
	parts := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) })
	out := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		out[p] = struct{}{}
	}
	return out
}

func containsAny(ws map[string]struct{}, keywords []string) bool {
	for _, k := range keywords {
		if _, ok := ws[k]; ok {
			return true
		}
	}
	return false
}
