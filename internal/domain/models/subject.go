package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"StockPulse/pkg/util"
)

// ErrInvalidSubject marks a run that could not be dispatched at all.
var ErrInvalidSubject = errors.New("invalid analysis subject")

// AnalyzerID is the stable key of one analyzer within a run.
type AnalyzerID string

var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-^=:]{0,19}$`)

// Subject is the immutable input of one analysis run.
type Subject struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name,omitempty"`
}

// NewSubject normalizes and validates a subject.
func NewSubject(symbol, companyName string) (Subject, error) {
	sym := util.NormalizeSymbol(symbol)
	if sym == "" {
		return Subject{}, fmt.Errorf("%w: symbol required", ErrInvalidSubject)
	}
	if !symbolPattern.MatchString(sym) {
		return Subject{}, fmt.Errorf("%w: malformed symbol %q", ErrInvalidSubject, symbol)
	}
	return Subject{Symbol: sym, CompanyName: strings.TrimSpace(companyName)}, nil
}

// DisplayName returns "Company (SYM)" or just the symbol.
func (s Subject) DisplayName() string {
	if s.CompanyName == "" {
		return s.Symbol
	}
	return fmt.Sprintf("%s (%s)", s.CompanyName, s.Symbol)
}
