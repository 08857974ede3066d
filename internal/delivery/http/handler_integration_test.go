package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pricelens/backend/config"
	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	exitCode := m.Run()

	os.Exit(exitCode)
}

// --- Mock implementations ---

// mockCache is a mock implementation of domain.CacheRepository
type mockCache struct {
	data map[string]*domain.PipelineResult
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]*domain.PipelineResult)}
}

func (m *mockCache) Get(ctx context.Context, key string) (*domain.PipelineResult, error) {
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value *domain.PipelineResult, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// mockFeed is a mock implementation of domain.FeedClient
type mockFeed struct {
	records []map[string]string
	err     error
}

func (m *mockFeed) FetchRawRecords(ctx context.Context, market string) ([]map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

// mockStore is a mock implementation of domain.DatasetStore
type mockStore struct {
	saved map[string][]domain.CanonicalProduct
}

func newMockStore() *mockStore {
	return &mockStore{saved: make(map[string][]domain.CanonicalProduct)}
}

func (m *mockStore) SaveDataset(ctx context.Context, market string, records []domain.CanonicalProduct) error {
	m.saved[market] = records
	return nil
}

func (m *mockStore) LoadDataset(ctx context.Context, market string) ([]domain.CanonicalProduct, error) {
	return m.saved[market], nil
}

// --- Test wiring ---

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		RateLimit: config.RateLimitConfig{
			PerIP: 6000,
			Burst: 100,
		},
	}
}

func testPipeline(t *testing.T) *usecase.PipelineService {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	specs := []usecase.MarketSpec{
		{
			Name:     "tinex",
			Strategy: "standard",
			Fields: usecase.FieldMap{
				ProductName:  "назив_на_стока-производ",
				CurrentPrice: "продажна_цена",
				RegularPrice: "редовна_цена",
				Description:  "опис_на_стока",
				PricePerUnit: "единечна_цена",
				Availability: "достапност_во_продажен_објект",
				StoreName:    "market_name",
			},
		},
	}

	service, err := usecase.NewPipelineService(specs, logger)
	if err != nil {
		t.Fatalf("NewPipelineService error: %v", err)
	}
	return service
}

type testEnv struct {
	router *gin.Engine
	cache  *mockCache
	store  *mockStore
	feed   *mockFeed
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		cache: newMockCache(),
		store: newMockStore(),
		feed:  &mockFeed{},
	}

	dir := t.TempDir()
	handler := NewHandler(
		testPipeline(t),
		env.feed,
		env.cache,
		env.store,
		dir,
		dir,
		time.Hour,
		logger,
	)
	env.router = SetupRouter(testConfig(), handler)

	return env
}

func tinexPayload() string {
	return `{"records":[
		{"назив_на_стока-производ":"Млеко свежо 1л","продажна_цена":"209","редовна_цена":"303","опис_на_стока":"Млечни производи","market_name":"Тинекс Центар"},
		{"назив_на_стока-производ":"Леб бел 500г","продажна_цена":"35","market_name":"Тинекс Центар"}
	]}`
}

// --- Tests ---

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "pricelens-backend" {
			t.Errorf("service = %v, want pricelens-backend", response["service"])
		}
	})
}

func TestListMarketsEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	req, _ := http.NewRequest("GET", "/api/v1/markets", nil)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var response struct {
		Markets []string `json:"markets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Markets) != 1 || response.Markets[0] != "tinex" {
		t.Errorf("markets = %v, want [tinex]", response.Markets)
	}
}

func TestProcessMarketEndpoint(t *testing.T) {
	t.Run("processes inline records", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("POST", "/api/v1/markets/tinex/process", strings.NewReader(tinexPayload()))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var response processResponse
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response.Market != "tinex" {
			t.Errorf("market = %q, want tinex", response.Market)
		}
		if response.RecordsProcessed != 2 {
			t.Errorf("records_processed = %d, want 2", response.RecordsProcessed)
		}
		if response.ValidationSummary.RecordsPassedSchema != 2 {
			t.Errorf("validation summary = %+v", response.ValidationSummary)
		}
		if response.Summary == nil || response.Summary.TotalProducts != 2 {
			t.Errorf("summary = %+v, want 2 products", response.Summary)
		}

		// dataset persisted and result cached
		if len(env.store.saved["tinex"]) != 2 {
			t.Errorf("stored %d records, want 2", len(env.store.saved["tinex"]))
		}
		if _, ok := env.cache.data["tinex"]; !ok {
			t.Error("result was not cached")
		}
	})

	t.Run("falls back to feed when body is empty", func(t *testing.T) {
		env := setupTestEnv(t)
		env.feed.records = []map[string]string{
			{"назив_на_стока-производ": "Леб бел 500г", "продажна_цена": "35", "market_name": "Тинекс"},
		}

		req, _ := http.NewRequest("POST", "/api/v1/markets/tinex/process", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}
	})

	t.Run("unknown market returns 404", func(t *testing.T) {
		env := setupTestEnv(t)
		env.feed.err = domain.ErrUnsupportedMarket

		req, _ := http.NewRequest("POST", "/api/v1/markets/ramstore/process", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("empty feed returns 422", func(t *testing.T) {
		env := setupTestEnv(t)
		env.feed.err = domain.ErrNoRawRecords

		req, _ := http.NewRequest("POST", "/api/v1/markets/tinex/process", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("feed failure returns 502", func(t *testing.T) {
		env := setupTestEnv(t)
		env.feed.err = domain.ErrFeedFailure

		req, _ := http.NewRequest("POST", "/api/v1/markets/tinex/process", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadGateway)
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("POST", "/api/v1/markets/tinex/process", strings.NewReader("{broken"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestGetProductsEndpoint(t *testing.T) {
	t.Run("serves cached dataset after processing", func(t *testing.T) {
		env := setupTestEnv(t)

		processReq, _ := http.NewRequest("POST", "/api/v1/markets/tinex/process", strings.NewReader(tinexPayload()))
		processReq.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(httptest.NewRecorder(), processReq)

		req, _ := http.NewRequest("GET", "/api/v1/markets/tinex/products", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response struct {
			Products []domain.CanonicalProduct `json:"products"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(response.Products) != 2 {
			t.Errorf("got %d products, want 2", len(response.Products))
		}
	})

	t.Run("falls back to dataset store on cache miss", func(t *testing.T) {
		env := setupTestEnv(t)
		env.store.saved["tinex"] = []domain.CanonicalProduct{
			{ProductName: "ЛЕБ БЕЛ 500Г", StoreLocation: "Тинекс"},
		}

		req, _ := http.NewRequest("GET", "/api/v1/markets/tinex/products", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("no dataset anywhere returns 404", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("GET", "/api/v1/markets/tinex/products", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestReportEndpoints(t *testing.T) {
	t.Run("summary report available after processing", func(t *testing.T) {
		env := setupTestEnv(t)

		processReq, _ := http.NewRequest("POST", "/api/v1/markets/tinex/process", strings.NewReader(tinexPayload()))
		processReq.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(httptest.NewRecorder(), processReq)

		req, _ := http.NewRequest("GET", "/api/v1/markets/tinex/reports/summary", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var summary domain.SummaryReport
		if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if summary.TotalProducts != 2 {
			t.Errorf("TotalProducts = %d, want 2", summary.TotalProducts)
		}
		// one of the two fixture records is discounted
		if summary.DiscountRatio != 0.5 {
			t.Errorf("DiscountRatio = %v, want 0.5", summary.DiscountRatio)
		}
	})

	t.Run("validation report available after processing", func(t *testing.T) {
		env := setupTestEnv(t)

		processReq, _ := http.NewRequest("POST", "/api/v1/markets/tinex/process", strings.NewReader(tinexPayload()))
		processReq.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(httptest.NewRecorder(), processReq)

		req, _ := http.NewRequest("GET", "/api/v1/markets/tinex/reports/validation", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var report domain.ValidationReport
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if report.Summary.TotalRecordsProcessed != 2 {
			t.Errorf("TotalRecordsProcessed = %d, want 2", report.Summary.TotalRecordsProcessed)
		}
	})

	t.Run("missing reports return 404", func(t *testing.T) {
		env := setupTestEnv(t)

		for _, path := range []string{
			"/api/v1/markets/tinex/reports/summary",
			"/api/v1/markets/tinex/reports/validation",
		} {
			req, _ := http.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()

			env.router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Path %s: Status = %d, want %d", path, w.Code, http.StatusNotFound)
			}
		}
	})
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic without crashing server", func(t *testing.T) {
		env := setupTestEnv(t)

		env.router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		req, _ := http.NewRequest("GET", "/panic", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		// Gin's default recovery returns 500
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}

// TestJSONResponses tests that all responses are valid JSON
func TestJSONResponses(t *testing.T) {
	endpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/api/v1/markets"},
		{"GET", "/api/v1/markets/tinex/products"},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			env := setupTestEnv(t)

			req, _ := http.NewRequest(endpoint.method, endpoint.path, nil)
			w := httptest.NewRecorder()

			env.router.ServeHTTP(w, req)

			gotContentType := w.Header().Get("Content-Type")
			wantContentType := "application/json; charset=utf-8"
			if gotContentType != wantContentType {
				t.Errorf("Content-Type = %q, want %q", gotContentType, wantContentType)
			}

			var response map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Errorf("Response should be valid JSON, got error: %v", err)
			}
		})
	}
}
