package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pricelens/backend/internal/domain"
)

// Client fetches published pricelist feeds. Each market exposes its raw
// records as a JSON array of flat string maps; the pipeline maps those onto
// the canonical fields. Scraping and pagination against the market websites
// happen elsewhere; this client only pulls already-exported record files.
type Client struct {
	httpClient  *http.Client
	feedURLs    map[string]string
	rateLimiter *rate.Limiter
	logger      *logrus.Logger
}

// NewClient creates a feed client for the given market-to-URL mapping.
func NewClient(feedURLs map[string]string, logger *logrus.Logger) *Client {
	// The public pricelist hosts are small; keep the request rate polite.
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		feedURLs:    feedURLs,
		rateLimiter: limiter,
		logger:      logger,
	}
}

// FetchRawRecords downloads the raw record feed for a market. Transient
// failures are retried up to 3 times with a short backoff.
func (c *Client) FetchRawRecords(ctx context.Context, market string) ([]map[string]string, error) {
	feedURL, ok := c.feedURLs[market]
	if !ok || feedURL == "" {
		return nil, domain.ErrUnsupportedMarket
	}

	log := c.logger.WithField("market", market)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, err := c.doRequest(ctx, feedURL)
		if err != nil {
			log.WithError(err).WithField("attempt", attempt).Warn("feed request failed")
			lastErr = err
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		var records []map[string]string
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("failed to decode feed: %w", err)
		}

		if len(records) == 0 {
			log.Warn("feed returned no records")
			return nil, domain.ErrNoRawRecords
		}

		log.WithField("records", len(records)).Info("fetched raw records")
		return records, nil
	}

	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "PriceLens/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrFeedFailure, resp.StatusCode)
	}

	return body, nil
}
