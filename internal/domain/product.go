package domain

// RawProductFields holds the seven free-text fields the scraping layer delivers
// for a single product. Any field may be empty; the normalizer treats missing
// and empty the same way.
type RawProductFields struct {
	ProductName  string `json:"product_name"`
	CurrentPrice string `json:"current_price"`
	RegularPrice string `json:"regular_price"`
	Description  string `json:"description"`
	PricePerUnit string `json:"price_per_unit"`
	Availability string `json:"availability"`
	StoreName    string `json:"store_name"`
}

// MeasurementKind classifies which base unit and multiplier table applies.
type MeasurementKind string

const (
	KindVolume MeasurementKind = "volume"
	KindWeight MeasurementKind = "weight"
	KindPieces MeasurementKind = "pieces"
)

// Measurement is the result of extracting a quantity+unit token from free text.
// StandardQuantity is the quantity expressed in the base unit for its kind
// (liters for volume, kilograms for weight, count for pieces) and is populated
// exactly when Kind is set.
type Measurement struct {
	Quantity         *float64        `json:"quantity"`
	Unit             string          `json:"unit"`
	Kind             MeasurementKind `json:"unit_kind"`
	StandardQuantity *float64        `json:"standard_quantity"`
}

// Found reports whether the extraction detected any measurement at all.
func (m Measurement) Found() bool {
	return m.Kind != ""
}

// Output unit names per measurement kind.
const (
	UnitKilogram = "kg"
	UnitLiter    = "l"
	UnitPiece    = "piece"
)

// CanonicalProduct is the normalized, schema-shaped record produced once per
// raw scraped item. It is created by the normalizer and never mutated
// afterwards. CurrentPrice and PricePerUnit are pointers so the validator can
// tell a missing value apart from zero.
type CanonicalProduct struct {
	ProductName        string   `json:"product_name"`
	CurrentPrice       *float64 `json:"current_price"`
	PricePerUnit       *float64 `json:"price_per_unit"`
	Unit               string   `json:"unit"`
	Category           string   `json:"category"`
	DiscountPercentage float64  `json:"discount_percentage"`
	StoreLocation      string   `json:"store_location"`
}

// Availability is the tri-state result of parsing a raw availability string.
// Unrecognized phrasings map to AvailabilityUnknown, which callers treat as
// not available.
type Availability int

const (
	AvailabilityUnknown Availability = iota
	Available
	Unavailable
)
