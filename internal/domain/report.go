package domain

// ValidationError describes a single schema violation for one record.
// Rule carries the identifier of the failed rule (e.g. "exclusiveMinimum",
// "enum"), Path the field path within the record.
type ValidationError struct {
	RecordIndex int      `json:"record_index"`
	ProductName string   `json:"product_name"`
	Message     string   `json:"error_message"`
	Rule        string   `json:"validator"`
	Path        []string `json:"path"`
}

// ValidationSummary aggregates pass/fail counts for one validation run.
type ValidationSummary struct {
	TotalRecordsProcessed int `json:"total_records_processed"`
	RecordsPassedSchema   int `json:"records_passed_schema"`
	RecordsFailedSchema   int `json:"records_failed_schema"`
}

// ValidationReport is the serializable outcome of validating a dataset.
// Errors preserve input record order.
type ValidationReport struct {
	Summary ValidationSummary `json:"validation_summary"`
	Errors  []ValidationError `json:"validation_errors"`
}

// PricedProduct is the reduced (name, price) pair used in top-10 listings.
type PricedProduct struct {
	ProductName  string  `json:"product_name"`
	CurrentPrice float64 `json:"current_price"`
}

// SummaryReport holds the aggregate statistics computed over a validated,
// deduplicated dataset. The per-category maps are omitted when no category
// data is present.
type SummaryReport struct {
	ReportGeneratedAt       string             `json:"report_generated_at"`
	TotalProducts           int                `json:"total_products"`
	ProductsOnDiscount      int                `json:"products_on_discount"`
	DiscountRatio           float64            `json:"discount_ratio"`
	ProductsPerCategory     map[string]int     `json:"products_per_category,omitempty"`
	AveragePricePerCategory map[string]float64 `json:"average_price_per_category,omitempty"`
	Top10Expensive          []PricedProduct    `json:"top_10_expensive_products"`
	Top10Cheapest           []PricedProduct    `json:"top_10_cheapest_products"`
}

// PipelineResult bundles everything one market run produces.
type PipelineResult struct {
	Market     string             `json:"market"`
	Records    []CanonicalProduct `json:"records"`
	Validation *ValidationReport  `json:"validation"`
	Summary    *SummaryReport     `json:"summary,omitempty"`
}
