package http

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/infrastructure/storage"
	"github.com/pricelens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	pipeline   *usecase.PipelineService
	feed       domain.FeedClient
	cache      domain.CacheRepository
	store      domain.DatasetStore
	outputsDir string
	reportsDir string
	cacheTTL   time.Duration
	logger     *logrus.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	pipeline *usecase.PipelineService,
	feed domain.FeedClient,
	cache domain.CacheRepository,
	store domain.DatasetStore,
	outputsDir, reportsDir string,
	cacheTTL time.Duration,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		pipeline:   pipeline,
		feed:       feed,
		cache:      cache,
		store:      store,
		outputsDir: outputsDir,
		reportsDir: reportsDir,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// processRequest optionally carries raw records inline, bypassing the feed
// fetch. Useful for replays of previously exported record files.
type processRequest struct {
	Records []map[string]string `json:"records"`
}

// processResponse summarizes one pipeline run.
type processResponse struct {
	Market            string                    `json:"market"`
	RecordsProcessed  int                       `json:"records_processed"`
	ValidationSummary *domain.ValidationSummary `json:"validation_summary"`
	Summary           *domain.SummaryReport     `json:"summary,omitempty"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricelens-backend",
		"version": "1.0.0",
	})
}

// ListMarkets returns the configured market names
func (h *Handler) ListMarkets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"markets": h.pipeline.Markets()})
}

// ProcessMarket runs the full pipeline for one market: fetch (or accept) raw
// records, normalize, validate, deduplicate, summarize, and persist the
// resulting dataset and reports.
func (h *Handler) ProcessMarket(c *gin.Context) {
	market := c.Param("market")

	var req processRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.respondError(c, market, domain.ErrInvalidRequest)
			return
		}
	}

	rawRecords := req.Records
	if len(rawRecords) == 0 {
		fetched, err := h.feed.FetchRawRecords(c.Request.Context(), market)
		if err != nil {
			h.respondError(c, market, err)
			return
		}
		rawRecords = fetched
	}

	result, err := h.pipeline.ProcessMarket(c.Request.Context(), market, rawRecords)
	if err != nil {
		h.respondError(c, market, err)
		return
	}

	h.persistResult(c, result)

	if err := h.cache.Set(c.Request.Context(), result.Market, result, h.cacheTTL); err != nil {
		h.logger.WithError(err).Warn("failed to cache pipeline result")
	}

	c.JSON(http.StatusOK, processResponse{
		Market:            result.Market,
		RecordsProcessed:  len(result.Records),
		ValidationSummary: &result.Validation.Summary,
		Summary:           result.Summary,
	})
}

// GetProducts returns the latest validated dataset for a market. The cache is
// consulted first; on a miss the persisted dataset is loaded instead.
func (h *Handler) GetProducts(c *gin.Context) {
	market := c.Param("market")

	if result, err := h.cache.Get(c.Request.Context(), market); err == nil {
		c.JSON(http.StatusOK, gin.H{"market": market, "products": result.Records})
		return
	}

	records, err := h.store.LoadDataset(c.Request.Context(), market)
	if err != nil {
		h.logger.WithError(err).WithField("market", market).Error("failed to load dataset")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dataset"})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no dataset available for market"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"market": market, "products": records})
}

// GetSummaryReport returns the latest summary analytics report for a market.
func (h *Handler) GetSummaryReport(c *gin.Context) {
	market := c.Param("market")

	result, err := h.cache.Get(c.Request.Context(), market)
	if err != nil || result.Summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no summary report available for market"})
		return
	}

	c.JSON(http.StatusOK, result.Summary)
}

// GetValidationReport returns the latest validation report for a market.
func (h *Handler) GetValidationReport(c *gin.Context) {
	market := c.Param("market")

	result, err := h.cache.Get(c.Request.Context(), market)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no validation report available for market"})
		return
	}

	c.JSON(http.StatusOK, result.Validation)
}

// persistResult writes the dataset and reports to disk and the dataset store.
// Persistence failures are logged but do not fail the request; the result is
// still returned to the caller.
func (h *Handler) persistResult(c *gin.Context, result *domain.PipelineResult) {
	log := h.logger.WithField("market", result.Market)

	if err := h.store.SaveDataset(c.Request.Context(), result.Market, result.Records); err != nil {
		log.WithError(err).Error("failed to save dataset")
	}

	csvPath := filepath.Join(h.outputsDir, result.Market+"_products.csv")
	if err := storage.WriteDatasetCSV(result.Records, csvPath); err != nil {
		log.WithError(err).Error("failed to write dataset csv")
	}

	if err := storage.WriteValidationReport(result.Validation, h.reportsDir, result.Market); err != nil {
		log.WithError(err).Error("failed to write validation report")
	}
	if result.Summary != nil {
		if err := storage.WriteSummaryReport(result.Summary, h.reportsDir, result.Market); err != nil {
			log.WithError(err).Error("failed to write summary report")
		}
	}
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, market string, err error) {
	log := h.logger.WithError(err).WithField("market", market)

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
	case errors.Is(err, domain.ErrUnsupportedMarket):
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported market"})
	case errors.Is(err, domain.ErrNoRawRecords):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "feed contained no records"})
	case errors.Is(err, domain.ErrFeedFailure):
		log.Error("feed fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch market feed"})
	default:
		log.Error("pipeline processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process market"})
	}
}
