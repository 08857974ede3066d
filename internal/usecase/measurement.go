package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// unitTable describes one measurement kind: the regex that finds a
// quantity+token pair and the per-token multiplier into the kind's sub-base
// unit (milliliters for volume, grams for weight, count for pieces).
type unitTable struct {
	kind        domain.MeasurementKind
	pattern     *regexp.Regexp
	multipliers map[string]float64
}

// measurementTables is static configuration, loaded once and never mutated.
// The pricelists mix Cyrillic and Latin unit spellings, so both are listed.
// Alternation order matters: matching is leftmost-first, the same way the
// source data has historically been interpreted (e.g. "300ГР" resolves the
// token "Г").
var measurementTables = []unitTable{
	{
		kind:    domain.KindVolume,
		pattern: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(МЛ|Л|ЛТ|ЛИТАР|ЛИТРИ|ML|L|LT)`),
		multipliers: map[string]float64{
			"МЛ": 1, "Л": 1000, "ЛТ": 1000, "ЛИТАР": 1000, "ЛИТРИ": 1000,
			"ML": 1, "L": 1000, "LT": 1000,
		},
	},
	{
		kind:    domain.KindWeight,
		pattern: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(Г|ГР|КГ|ГРАМ|КИЛОГРАМ|ГРАМОВИ|КИЛОГРАМИ|КГР|G|GR|KG)`),
		multipliers: map[string]float64{
			"Г": 1, "ГР": 1, "КГ": 1000, "ГРАМ": 1, "КИЛОГРАМ": 1000,
			"ГРАМОВИ": 1, "КИЛОГРАМИ": 1000, "КГР": 1000,
			"G": 1, "GR": 1, "KG": 1000,
		},
	},
	{
		kind:    domain.KindPieces,
		pattern: regexp.MustCompile(`(?i)(\d+)\s*(КОМ|ПАР|БРОЈ|ПАРЧЕ|PAR|PARCE|PARCHE|PCS|PC)`),
		multipliers: map[string]float64{
			"КОМ": 1, "ПАР": 1, "БРОЈ": 1, "ПАРЧЕ": 1,
			"PAR": 1, "PARCE": 1, "PARCHE": 1, "PCS": 1, "PC": 1,
		},
	},
}

// Patterns for reading the price value out of a price-per-unit annotation
// like "697 ден/кг". ДЕН is the currency token on Macedonian pricelists.
var (
	denPerUnitRegex = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*ДЕН\s*/\s*([\p{L}\p{N}_]+)`)

	bareDenRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*ДЕН`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*ДЕНАР`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*=\s*(\d+(?:\.\d+)?)`),
	}
)

// MeasurementExtractor parses quantity+unit tokens out of free text against
// the static unit tables, producing a normalized quantity in the base unit for
// the detected kind.
type MeasurementExtractor struct {
	priceParser *PriceParser
}

// NewMeasurementExtractor creates a new measurement extractor
func NewMeasurementExtractor(priceParser *PriceParser) *MeasurementExtractor {
	return &MeasurementExtractor{priceParser: priceParser}
}

// FromText searches free text (typically a product name) for a measurement.
// The text is sanitized first: decimal commas become points and slashes become
// spaces so compound tokens like "1/1KG" split into separate numbers. Kinds
// are tried in a fixed order (volume, weight, pieces); the first match wins.
// Returns a zero Measurement when nothing matches.
func (e *MeasurementExtractor) FromText(text string) domain.Measurement {
	if text == "" {
		return domain.Measurement{}
	}

	sanitized := strings.ReplaceAll(text, ",", ".")
	sanitized = strings.ReplaceAll(sanitized, "/", " ")

	return matchTables(sanitized)
}

// FromPricePerUnit searches a price-per-unit string for a measurement.
// Some markets fill this field with a copy of the selling price instead of a
// real per-unit figure; when the value read out of the field is within 0.01 of
// the parsed current price the field is treated as non-informative and an
// empty Measurement is returned.
func (e *MeasurementExtractor) FromPricePerUnit(ppuText, currentPriceText string) domain.Measurement {
	if ppuText == "" {
		return domain.Measurement{}
	}

	currentPrice := e.priceParser.Parse(currentPriceText)
	ppuPrice := perUnitPriceValue(ppuText)
	if currentPrice != nil && *currentPrice != 0 &&
		ppuPrice != nil && *ppuPrice != 0 &&
		math.Abs(*currentPrice-*ppuPrice) < 0.01 {
		return domain.Measurement{}
	}

	return matchTables(ppuText)
}

// matchTables runs the unit-kind patterns in order and converts the first
// match to its standard quantity.
func matchTables(text string) domain.Measurement {
	for _, table := range measurementTables {
		m := table.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		quantity, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		unit := strings.ToUpper(m[2])
		standard := convertToStandard(quantity, unit, table)

		return domain.Measurement{
			Quantity:         &quantity,
			Unit:             unit,
			Kind:             table.kind,
			StandardQuantity: &standard,
		}
	}
	return domain.Measurement{}
}

// convertToStandard converts a quantity to the base unit of its kind:
// grams to kilograms and milliliters to liters (divide the sub-base value by
// 1000), pieces stay a plain count.
func convertToStandard(quantity float64, unit string, table unitTable) float64 {
	multiplier, ok := table.multipliers[unit]
	if !ok {
		return quantity
	}
	base := quantity * multiplier
	if table.kind == domain.KindVolume || table.kind == domain.KindWeight {
		return base / 1000.0
	}
	return base
}

// perUnitPriceValue reads the numeric price out of a price-per-unit string
// such as "150.00 ДЕН / КГ". A "ДЕН / unit" match is scaled through the volume
// multiplier table when the unit is known there; otherwise the raw value is
// kept. Bare "N ДЕН", "N ДЕНАР" and "a = b" forms are fallbacks.
func perUnitPriceValue(ppuText string) *float64 {
	upper := strings.ToUpper(ppuText)

	if m := denPerUnitRegex.FindStringSubmatch(upper); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			if multiplier, ok := measurementTables[0].multipliers[m[2]]; ok {
				scaled := value * multiplier / 1000.0
				return &scaled
			}
			return &value
		}
	}

	for _, re := range bareDenRegexes {
		m := re.FindStringSubmatch(upper)
		if m == nil {
			continue
		}
		group := m[1]
		if len(m) == 3 {
			group = m[2]
		}
		value, err := strconv.ParseFloat(group, 64)
		if err != nil {
			continue
		}
		return &value
	}
	return nil
}
