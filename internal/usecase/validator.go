package usecase

import (
	"fmt"

	"github.com/pricelens/backend/internal/domain"
)

// Rule identifiers recorded in validation errors, mirroring the JSON-Schema
// validator keywords they correspond to.
const (
	ruleRequired         = "required"
	ruleMinLength        = "minLength"
	ruleExclusiveMinimum = "exclusiveMinimum"
	ruleEnum             = "enum"
	ruleMinimum          = "minimum"
	ruleMaximum          = "maximum"
)

// allowedUnits is the closed set of unit names a canonical record may carry.
var allowedUnits = map[string]bool{
	domain.UnitKilogram: true,
	domain.UnitLiter:    true,
	domain.UnitPiece:    true,
}

// Validator enforces the canonical product schema over a dataset, splitting
// it into the valid subset and a structured report of violations.
type Validator struct{}

// NewValidator creates a new schema validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks every record against the schema and returns the records
// that passed together with a report. The first failing rule is recorded per
// record; errors keep input record order so reports are deterministic.
func (v *Validator) Validate(records []domain.CanonicalProduct) ([]domain.CanonicalProduct, *domain.ValidationReport) {
	valid := make([]domain.CanonicalProduct, 0, len(records))
	errs := []domain.ValidationError{}

	for i, record := range records {
		if violation := checkRecord(record); violation != nil {
			violation.RecordIndex = i
			violation.ProductName = record.ProductName
			errs = append(errs, *violation)
			continue
		}
		valid = append(valid, record)
	}

	report := &domain.ValidationReport{
		Summary: domain.ValidationSummary{
			TotalRecordsProcessed: len(records),
			RecordsPassedSchema:   len(records) - len(errs),
			RecordsFailedSchema:   len(errs),
		},
		Errors: errs,
	}
	return valid, report
}

// checkRecord evaluates the schema rules in field order and returns the first
// violation, or nil when the record is valid.
func checkRecord(r domain.CanonicalProduct) *domain.ValidationError {
	if r.ProductName == "" {
		return violation(ruleMinLength, "product_name", "product_name must be a non-empty string")
	}

	if r.CurrentPrice == nil {
		return violation(ruleRequired, "current_price", "current_price is required")
	}
	if *r.CurrentPrice <= 0 {
		return violation(ruleExclusiveMinimum, "current_price",
			fmt.Sprintf("current_price must be greater than 0, got %v", *r.CurrentPrice))
	}

	// price_per_unit may be absent; when present it must be positive
	if r.PricePerUnit != nil && *r.PricePerUnit <= 0 {
		return violation(ruleExclusiveMinimum, "price_per_unit",
			fmt.Sprintf("price_per_unit must be greater than 0, got %v", *r.PricePerUnit))
	}

	if !allowedUnits[r.Unit] {
		return violation(ruleEnum, "unit",
			fmt.Sprintf("unit must be one of kg, l, piece, got %q", r.Unit))
	}

	if r.DiscountPercentage < 0 {
		return violation(ruleMinimum, "discount_percentage",
			fmt.Sprintf("discount_percentage must be at least 0, got %v", r.DiscountPercentage))
	}
	if r.DiscountPercentage > 100 {
		return violation(ruleMaximum, "discount_percentage",
			fmt.Sprintf("discount_percentage must be at most 100, got %v", r.DiscountPercentage))
	}

	if r.StoreLocation == "" {
		return violation(ruleMinLength, "store_location", "store_location must be a non-empty string")
	}

	return nil
}

func violation(rule, field, message string) *domain.ValidationError {
	return &domain.ValidationError{
		Message: message,
		Rule:    rule,
		Path:    []string{field},
	}
}
