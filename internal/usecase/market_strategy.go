package usecase

import (
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// Defaults used when a market supplies no usable category or store data.
const (
	defaultCategory      = "Uncategorized"
	defaultStoreLocation = "Unknown Location"
	defaultStoreName     = "Unknown Store"
)

// MarketStrategy captures the two decisions that vary between markets:
// how to derive a category for a product and how to format the store
// location. FilterUnavailable reports whether records not marked available
// should be dropped before normalization for this market.
type MarketStrategy interface {
	Category(description, productName string) string
	StoreLocation(storeName string) string
	FilterUnavailable() bool
}

// StandardStrategy covers markets whose feeds carry the category directly in
// the description field and a ready-to-use branch name in the store field
// (Zito, Tinex, Stokomak).
type StandardStrategy struct{}

// NewStandardStrategy creates the default market strategy
func NewStandardStrategy() *StandardStrategy {
	return &StandardStrategy{}
}

// Category returns the trimmed description, or "Uncategorized" when blank.
func (s *StandardStrategy) Category(description, productName string) string {
	if trimmed := strings.TrimSpace(description); trimmed != "" {
		return trimmed
	}
	return defaultCategory
}

// StoreLocation returns the trimmed store name, or "Unknown Location" when blank.
func (s *StandardStrategy) StoreLocation(storeName string) string {
	if trimmed := strings.TrimSpace(storeName); trimmed != "" {
		return trimmed
	}
	return defaultStoreLocation
}

// FilterUnavailable is false: standard feeds are processed as delivered.
func (s *StandardStrategy) FilterUnavailable() bool { return false }

// VeroStrategy handles the Vero feed, where the store field carries a branch
// code like "89_1" that has to be resolved through a code-to-name map produced
// alongside the scrape. Vero feeds also list items per branch including ones
// not on the shelf, so unavailable records are dropped up front.
type VeroStrategy struct {
	marketMap map[string]string
}

// NewVeroStrategy creates a Vero strategy with the given code-to-name map.
// A nil map is allowed; lookups then fall back to the raw store name.
func NewVeroStrategy(marketMap map[string]string) *VeroStrategy {
	return &VeroStrategy{marketMap: marketMap}
}

// Category returns the trimmed description, or "Uncategorized" when blank.
func (s *VeroStrategy) Category(description, productName string) string {
	if trimmed := strings.TrimSpace(description); trimmed != "" {
		return trimmed
	}
	return defaultCategory
}

// StoreLocation resolves the branch code before the first underscore through
// the market map, falling back to the raw store name.
func (s *VeroStrategy) StoreLocation(storeName string) string {
	if storeName == "" {
		return defaultStoreName
	}
	code, _, _ := strings.Cut(storeName, "_")
	if name, ok := s.marketMap[code]; ok {
		return name
	}
	return storeName
}

// FilterUnavailable is true for Vero.
func (s *VeroStrategy) FilterUnavailable() bool { return true }

// categoryVocabulary maps a category label to the tokens that place a product
// name in it. Tokens are matched case-insensitively as substrings of the
// product name; Cyrillic spellings dominate because that is what the feeds
// carry.
var categoryVocabulary = []struct {
	category string
	tokens   []string
}{
	{"Dairy", []string{
		"МЛЕКО", "ЈОГУРТ", "СИРЕЊЕ", "КАШКАВАЛ", "ПАВЛАКА", "ПУТЕР", "УРДА",
		"MILK", "YOGURT", "CHEESE",
	}},
	{"Bakery", []string{
		"ЛЕБ", "ПЕЦИВО", "БАГЕТ", "КРОАСАН", "ТОРТИЉА", "БУРЕК",
		"BREAD", "CROISSANT",
	}},
	{"Beverages", []string{
		"СОК", "ВОДА", "ПИВО", "ВИНО", "КАФЕ", "ЧАЈ", "НАПИТОК", "ГАЗИРАН",
		"JUICE", "WATER", "BEER", "COFFEE", "TEA",
	}},
	{"Sweets & Snacks", []string{
		"ЧОКОЛАД", "БОНБОН", "КЕКС", "БИСКВИТ", "ЧИПС", "КРЕКЕР", "ВАФЛА",
		"CHOCOLATE", "CHIPS",
	}},
	{"Meat", []string{
		"МЕСО", "ПИЛЕШК", "ГОВЕДСК", "СВИНСК", "КОЛБАС", "САЛАМА", "ШУНКА",
		"CHICKEN", "BEEF", "PORK",
	}},
}

// KeywordStrategy categorizes by matching the product name against the
// category vocabularies. Useful for markets whose description field is
// unreliable or absent.
type KeywordStrategy struct{}

// NewKeywordStrategy creates a keyword-based categorization strategy
func NewKeywordStrategy() *KeywordStrategy {
	return &KeywordStrategy{}
}

// Category matches the product name against the category vocabularies,
// falling back to "Uncategorized". The description is ignored by design.
func (s *KeywordStrategy) Category(description, productName string) string {
	name := strings.ToUpper(productName)
	for _, entry := range categoryVocabulary {
		for _, token := range entry.tokens {
			if strings.Contains(name, token) {
				return entry.category
			}
		}
	}
	return defaultCategory
}

// StoreLocation returns the trimmed store name, or "Unknown Location" when blank.
func (s *KeywordStrategy) StoreLocation(storeName string) string {
	if trimmed := strings.TrimSpace(storeName); trimmed != "" {
		return trimmed
	}
	return defaultStoreLocation
}

// FilterUnavailable is false for keyword-variant markets.
func (s *KeywordStrategy) FilterUnavailable() bool { return false }

// StrategyFor selects the strategy implementation for a market by the
// strategy name from its configuration.
func StrategyFor(name string, veroMarketMap map[string]string) (MarketStrategy, error) {
	switch strings.ToLower(name) {
	case "standard", "":
		return NewStandardStrategy(), nil
	case "vero":
		return NewVeroStrategy(veroMarketMap), nil
	case "keyword":
		return NewKeywordStrategy(), nil
	default:
		return nil, domain.ErrUnsupportedMarket
	}
}
