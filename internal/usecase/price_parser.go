package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// Package-level compiled regex patterns for performance
var nonPriceCharsRegex = regexp.MustCompile(`[^\d.,]`)

// PriceParser turns free-form, locale-ambiguous price strings into floats.
// Inputs mix decimal commas, decimal points and thousands separators
// ("1.299,99 ДЕН", "150,50", "209"), so the separator roles are decided from
// which separators are present rather than from a fixed locale.
type PriceParser struct{}

// NewPriceParser creates a new price parser
func NewPriceParser() *PriceParser {
	return &PriceParser{}
}

// Parse extracts a float value from a raw price string. It strips everything
// except digits, '.' and ','. When both separators appear the commas are
// dropped and the dot keeps its role; a lone comma is taken as the decimal
// point. Returns nil on empty input or parse failure, never an error.
func (p *PriceParser) Parse(text string) *float64 {
	if text == "" {
		return nil
	}

	cleaned := nonPriceCharsRegex.ReplaceAllString(text, "")
	if strings.Contains(cleaned, ",") && strings.Contains(cleaned, ".") {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	} else if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}
