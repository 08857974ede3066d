package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pricelens/backend/internal/domain"
)

// datasetColumns is the fixed, ordered header of an exported dataset.
var datasetColumns = []string{
	"product_name",
	"current_price",
	"price_per_unit",
	"unit",
	"category",
	"discount_percentage",
	"store_location",
}

// utf8BOM is prepended to CSV exports so Excel opens the Cyrillic product
// names correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteDatasetCSV saves a validated dataset to a CSV file, creating parent
// directories as needed. Nothing is written for an empty dataset.
func WriteDatasetCSV(records []domain.CanonicalProduct, path string) error {
	if len(records) == 0 {
		return nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(datasetColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.ProductName,
			formatFloat(record.CurrentPrice),
			formatFloat(record.PricePerUnit),
			record.Unit,
			record.Category,
			strconv.FormatFloat(record.DiscountPercentage, 'f', -1, 64),
			record.StoreLocation,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// formatFloat renders a nullable float, empty when absent.
func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
