package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching pipeline results
type CacheRepository interface {
	Get(ctx context.Context, key string) (*PipelineResult, error)
	Set(ctx context.Context, key string, value *PipelineResult, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// FeedClient defines the interface for fetching raw pricelist records from a
// market's published feed. Each record is a flat mapping from the market's own
// field names to raw text values.
type FeedClient interface {
	FetchRawRecords(ctx context.Context, market string) ([]map[string]string, error)
}

// DatasetStore defines the interface for persisting validated datasets
type DatasetStore interface {
	SaveDataset(ctx context.Context, market string, records []CanonicalProduct) error
	LoadDataset(ctx context.Context, market string) ([]CanonicalProduct, error)
}
