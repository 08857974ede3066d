package usecase

import (
	"math"
	"regexp"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var whitespaceRunRegex = regexp.MustCompile(`\s+`)

// outputUnitNames maps a measurement kind to the unit name the canonical
// schema uses.
var outputUnitNames = map[domain.MeasurementKind]string{
	domain.KindVolume: domain.UnitLiter,
	domain.KindWeight: domain.UnitKilogram,
	domain.KindPieces: domain.UnitPiece,
}

// Normalizer builds one canonical product record from the seven raw text
// fields of a scraped item. It is deterministic and side-effect free: parse
// failures resolve to defaults, never to errors.
type Normalizer struct {
	priceParser *PriceParser
	extractor   *MeasurementExtractor
	strategy    MarketStrategy
}

// NewNormalizer creates a normalizer bound to a market strategy
func NewNormalizer(priceParser *PriceParser, extractor *MeasurementExtractor, strategy MarketStrategy) *Normalizer {
	return &Normalizer{
		priceParser: priceParser,
		extractor:   extractor,
		strategy:    strategy,
	}
}

// Normalize converts raw text fields into a canonical product record.
//
// The measurement source of truth is resolved in a fixed order: a measurement
// found in the product name wins over one found in the price-per-unit field,
// and when neither yields anything the record defaults to a single piece.
// Product names state the package size far more reliably than per-unit
// annotations, which on several markets just restate the selling price.
func (n *Normalizer) Normalize(raw domain.RawProductFields) domain.CanonicalProduct {
	currentPrice := n.priceParser.Parse(raw.CurrentPrice)
	regularPrice := n.priceParser.Parse(raw.RegularPrice)

	nameMeasurement := n.extractor.FromText(raw.ProductName)
	ppuMeasurement := n.extractor.FromPricePerUnit(raw.PricePerUnit, raw.CurrentPrice)

	measurement := resolveMeasurement(nameMeasurement, ppuMeasurement)

	discount := 0.0
	if regularPrice != nil && currentPrice != nil &&
		*regularPrice > 0 && *currentPrice < *regularPrice {
		discount = round2(((*regularPrice - *currentPrice) / *regularPrice) * 100)
	}

	var pricePerUnit *float64
	if currentPrice != nil && *currentPrice != 0 &&
		measurement.StandardQuantity != nil && *measurement.StandardQuantity > 0 {
		v := round2(*currentPrice / *measurement.StandardQuantity)
		pricePerUnit = &v
	}

	return domain.CanonicalProduct{
		ProductName:        normalizeProductName(raw.ProductName),
		CurrentPrice:       currentPrice,
		PricePerUnit:       pricePerUnit,
		Unit:               outputUnitNames[measurement.Kind],
		Category:           n.strategy.Category(raw.Description, raw.ProductName),
		DiscountPercentage: discount,
		StoreLocation:      n.strategy.StoreLocation(raw.StoreName),
	}
}

// resolveMeasurement applies the source-of-truth policy: name first, then the
// price-per-unit field, then the one-piece fallback.
func resolveMeasurement(nameMeasurement, ppuMeasurement domain.Measurement) domain.Measurement {
	if nameMeasurement.Found() {
		return nameMeasurement
	}
	if ppuMeasurement.Found() {
		return ppuMeasurement
	}
	one := 1.0
	return domain.Measurement{
		Quantity:         &one,
		Unit:             "PIECE",
		Kind:             domain.KindPieces,
		StandardQuantity: &one,
	}
}

// normalizeProductName upper-cases the name, collapses whitespace runs to a
// single space and trims the ends. Empty input stays empty.
func normalizeProductName(name string) string {
	if name == "" {
		return ""
	}
	collapsed := whitespaceRunRegex.ReplaceAllString(name, " ")
	return strings.ToUpper(strings.TrimSpace(collapsed))
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Token lists for the tri-state availability parser. The feeds phrase
// availability in Macedonian, English or as bare flags.
var (
	availableTokens = []string{
		"DA", "YES", "TRUE", "1", "AVAILABLE", "НА РАСПОЛАГАЊE", "ДА",
	}
	unavailableTokens = []string{
		"NE", "NO", "FALSE", "0", "UNAVAILABLE", "НЕ", "НЕМА",
	}
)

// ParseAvailability converts a raw availability string into a tri-state
// result. Tokens are matched case-insensitively after trimming; anything
// unrecognized yields AvailabilityUnknown, which callers treat as not
// available. Unseen phrasings therefore drop the record rather than let an
// out-of-stock item through.
func ParseAvailability(text string) domain.Availability {
	if text == "" {
		return domain.AvailabilityUnknown
	}
	normalized := strings.ToUpper(strings.TrimSpace(text))
	for _, token := range availableTokens {
		if normalized == token {
			return domain.Available
		}
	}
	for _, token := range unavailableTokens {
		if normalized == token {
			return domain.Unavailable
		}
	}
	return domain.AvailabilityUnknown
}
