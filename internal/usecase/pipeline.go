package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pricelens/backend/internal/domain"
)

// FieldMap names the raw feed keys that carry each of the seven fields the
// normalizer consumes. Every market publishes its own (mostly Cyrillic,
// sometimes embedding newlines) column names, so the mapping is configuration
// rather than code.
type FieldMap struct {
	ProductName  string
	CurrentPrice string
	RegularPrice string
	Description  string
	PricePerUnit string
	Availability string
	StoreName    string
}

// MarketSpec is everything the pipeline needs to know about one market.
type MarketSpec struct {
	Name          string
	Strategy      string
	Fields        FieldMap
	VeroMarketMap map[string]string
}

// marketRuntime is a MarketSpec resolved into live collaborators.
type marketRuntime struct {
	fields     FieldMap
	strategy   MarketStrategy
	normalizer *Normalizer
}

// PipelineService runs the full core flow for a market: field mapping,
// optional availability filtering, normalization, validation, deduplication
// and analytics.
type PipelineService struct {
	validator *Validator
	dedup     *Deduplicator
	analytics *Analytics
	markets   map[string]marketRuntime
	logger    *logrus.Logger
}

// NewPipelineService builds a pipeline for the given market specs. Markets
// whose strategy name is unknown are rejected up front rather than at
// processing time.
func NewPipelineService(specs []MarketSpec, logger *logrus.Logger) (*PipelineService, error) {
	priceParser := NewPriceParser()
	extractor := NewMeasurementExtractor(priceParser)

	markets := make(map[string]marketRuntime, len(specs))
	for _, spec := range specs {
		strategy, err := StrategyFor(spec.Strategy, spec.VeroMarketMap)
		if err != nil {
			return nil, err
		}
		markets[strings.ToLower(spec.Name)] = marketRuntime{
			fields:     spec.Fields,
			strategy:   strategy,
			normalizer: NewNormalizer(priceParser, extractor, strategy),
		}
	}

	return &PipelineService{
		validator: NewValidator(),
		dedup:     NewDeduplicator(),
		analytics: NewAnalytics(),
		markets:   markets,
		logger:    logger,
	}, nil
}

// ProcessMarket turns raw feed records for one market into a validated,
// deduplicated dataset plus reports. It returns domain.ErrUnsupportedMarket
// for unknown markets and domain.ErrNoRawRecords for an empty input
// collection; a run where every record fails validation is NOT an error and
// yields an empty dataset with a full validation report.
func (s *PipelineService) ProcessMarket(ctx context.Context, market string, rawRecords []map[string]string) (*domain.PipelineResult, error) {
	runtime, ok := s.markets[strings.ToLower(market)]
	if !ok {
		return nil, domain.ErrUnsupportedMarket
	}
	if len(rawRecords) == 0 {
		return nil, domain.ErrNoRawRecords
	}

	log := s.logger.WithField("market", market)
	log.WithField("raw_records", len(rawRecords)).Info("processing market data")

	normalized := make([]domain.CanonicalProduct, 0, len(rawRecords))
	skippedUnavailable := 0
	for _, rawRecord := range rawRecords {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		raw := mapRawRecord(rawRecord, runtime.fields)
		if runtime.strategy.FilterUnavailable() && ParseAvailability(raw.Availability) != domain.Available {
			skippedUnavailable++
			continue
		}
		normalized = append(normalized, runtime.normalizer.Normalize(raw))
	}
	if skippedUnavailable > 0 {
		log.WithField("skipped", skippedUnavailable).Info("skipped records not marked available")
	}

	valid, report := s.validator.Validate(normalized)
	if report.Summary.RecordsFailedSchema > 0 {
		log.WithFields(logrus.Fields{
			"passed": report.Summary.RecordsPassedSchema,
			"failed": report.Summary.RecordsFailedSchema,
		}).Warn("some records failed schema validation")
	}

	before := len(valid)
	deduped := s.dedup.Dedupe(valid)
	if dropped := before - len(deduped); dropped > 0 {
		log.WithField("duplicates", dropped).Info("dropped duplicate records")
	}

	result := &domain.PipelineResult{
		Market:     strings.ToLower(market),
		Records:    deduped,
		Validation: report,
	}

	summary, err := s.analytics.Summarize(deduped)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyDataset) {
			log.Warn("no valid records remained, skipping analytics")
			return result, nil
		}
		return nil, err
	}
	result.Summary = summary

	log.WithField("records", len(deduped)).Info("market processing complete")
	return result, nil
}

// Markets lists the configured market names.
func (s *PipelineService) Markets() []string {
	names := make([]string, 0, len(s.markets))
	for name := range s.markets {
		names = append(names, name)
	}
	return names
}

// mapRawRecord pulls the seven normalizer inputs out of a raw feed record
// using the market's field-key mapping. Missing keys read as empty strings,
// which the normalizer already treats as absent.
func mapRawRecord(record map[string]string, fields FieldMap) domain.RawProductFields {
	return domain.RawProductFields{
		ProductName:  record[fields.ProductName],
		CurrentPrice: record[fields.CurrentPrice],
		RegularPrice: record[fields.RegularPrice],
		Description:  record[fields.Description],
		PricePerUnit: record[fields.PricePerUnit],
		Availability: record[fields.Availability],
		StoreName:    record[fields.StoreName],
	}
}
