package domain

import "errors"

var (
	// ErrUnsupportedMarket is returned when no strategy is registered for a market
	ErrUnsupportedMarket = errors.New("unsupported market")

	// ErrNoRawRecords is returned when the input collection is empty or malformed,
	// so callers can tell "nothing scraped" apart from "everything failed validation"
	ErrNoRawRecords = errors.New("no raw records to process")

	// ErrEmptyDataset signals that analytics were skipped on an empty dataset
	ErrEmptyDataset = errors.New("dataset is empty, analytics skipped")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrFeedFailure is returned when fetching a raw pricelist feed fails
	ErrFeedFailure = errors.New("pricelist feed request failed")
)
