package usecase

import (
	"sort"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// topListSize caps the expensive/cheapest listings in the summary.
const topListSize = 10

// Analytics computes aggregate statistics over a validated, deduplicated
// dataset. All records reaching it have passed schema validation, so the
// current price is always present.
type Analytics struct {
	now func() time.Time
}

// NewAnalytics creates a new analytics summarizer
func NewAnalytics() *Analytics {
	return &Analytics{now: time.Now}
}

// Summarize builds the summary report. On empty input it returns
// domain.ErrEmptyDataset so callers can skip report generation without
// treating it as a failure; no statistic ever divides by zero.
func (a *Analytics) Summarize(records []domain.CanonicalProduct) (*domain.SummaryReport, error) {
	if len(records) == 0 {
		return nil, domain.ErrEmptyDataset
	}

	total := len(records)
	onDiscount := 0
	for _, r := range records {
		if r.DiscountPercentage > 0 {
			onDiscount++
		}
	}

	productsPerCategory := make(map[string]int)
	categoryPriceSums := make(map[string]float64)
	for _, r := range records {
		productsPerCategory[r.Category]++
		categoryPriceSums[r.Category] += price(r)
	}
	averagePerCategory := make(map[string]float64, len(categoryPriceSums))
	for category, sum := range categoryPriceSums {
		averagePerCategory[category] = round2(sum / float64(productsPerCategory[category]))
	}

	byPriceDesc := make([]domain.CanonicalProduct, len(records))
	copy(byPriceDesc, records)
	// Stable sorts keep input order among equal prices, which makes the
	// top-10 tie-breaking deterministic.
	sort.SliceStable(byPriceDesc, func(i, j int) bool {
		return price(byPriceDesc[i]) > price(byPriceDesc[j])
	})

	expensive := reduceToPriced(byPriceDesc[:min(topListSize, total)])

	cheapSlice := make([]domain.CanonicalProduct, 0, topListSize)
	cheapSlice = append(cheapSlice, byPriceDesc[total-min(topListSize, total):]...)
	sort.SliceStable(cheapSlice, func(i, j int) bool {
		return price(cheapSlice[i]) < price(cheapSlice[j])
	})
	cheapest := reduceToPriced(cheapSlice)

	return &domain.SummaryReport{
		ReportGeneratedAt:       a.now().Format(time.RFC3339),
		TotalProducts:           total,
		ProductsOnDiscount:      onDiscount,
		DiscountRatio:           round2(float64(onDiscount) / float64(total)),
		ProductsPerCategory:     productsPerCategory,
		AveragePricePerCategory: averagePerCategory,
		Top10Expensive:          expensive,
		Top10Cheapest:           cheapest,
	}, nil
}

// price reads the current price of a validated record.
func price(r domain.CanonicalProduct) float64 {
	if r.CurrentPrice == nil {
		return 0
	}
	return *r.CurrentPrice
}

// reduceToPriced shrinks records to the (name, price) pairs used in listings.
func reduceToPriced(records []domain.CanonicalProduct) []domain.PricedProduct {
	result := make([]domain.PricedProduct, 0, len(records))
	for _, r := range records {
		result = append(result, domain.PricedProduct{
			ProductName:  r.ProductName,
			CurrentPrice: price(r),
		})
	}
	return result
}
