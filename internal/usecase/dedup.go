package usecase

import "github.com/pricelens/backend/internal/domain"

// identityKey is the pair that makes a record unique within a dataset.
// The same product listed at the same store twice is one observation.
type identityKey struct {
	productName   string
	storeLocation string
}

// Deduplicator collapses records that share an identity key, keeping the
// first occurrence in input order. It is meant to run on the valid subset
// only, so a duplicate of an invalid record is never kept by accident.
type Deduplicator struct{}

// NewDeduplicator creates a new deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Dedupe returns the records with later duplicates removed, preserving order.
func (d *Deduplicator) Dedupe(records []domain.CanonicalProduct) []domain.CanonicalProduct {
	seen := make(map[identityKey]bool, len(records))
	result := make([]domain.CanonicalProduct, 0, len(records))

	for _, record := range records {
		key := identityKey{record.ProductName, record.StoreLocation}
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, record)
	}
	return result
}
