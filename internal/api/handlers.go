package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/S3OD177/price-monitor-sub000/internal/cache"
	"github.com/S3OD177/price-monitor-sub000/internal/models"
	"github.com/S3OD177/price-monitor-sub000/internal/ratelimit"
	"github.com/S3OD177/price-monitor-sub000/internal/scraper"
	"github.com/google/uuid"
)

// ProductScraper is the narrow contract the handlers need; the concrete
// scraper satisfies it and tests substitute a stub.
type ProductScraper interface {
	Scrape(ctx context.Context, pageURL string) (*models.ScrapedProduct, error)
}

type Options struct {
	BatchWorkers int
	MaxBatchURLs int
}

type Handlers struct {
	scraper      ProductScraper
	cache        *cache.ProductCache
	outbound     *ratelimit.Outbound
	logger       *slog.Logger
	batchWorkers int
	maxBatchURLs int
}

func NewHandlers(s ProductScraper, c *cache.ProductCache, outbound *ratelimit.Outbound, logger *slog.Logger, opts Options) *Handlers {
	workers := opts.BatchWorkers
	if workers < 1 {
		workers = 5
	}
	maxURLs := opts.MaxBatchURLs
	if maxURLs < 1 {
		maxURLs = 20
	}

	return &Handlers{
		scraper:      s,
		cache:        c,
		outbound:     outbound,
		logger:       logger.With("component", "api"),
		batchWorkers: workers,
		maxBatchURLs: maxURLs,
	}
}

type ScrapeRequest struct {
	URL string `json:"url"`
}

type ScrapeResponse struct {
	URL       string                 `json:"url"`
	Product   *models.ScrapedProduct `json:"product"`
	Cached    bool                   `json:"cached"`
	ScrapedAt time.Time              `json:"scraped_at"`
}

// Scrape extracts a product record from a single page, consulting the
// shared cache first.
func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body", "")
		return
	}
	if !validPageURL(req.URL) {
		h.respondError(w, http.StatusBadRequest, "invalid_url", "url must be absolute http(s)", req.URL)
		return
	}

	product, cached, err := h.scrapeOne(r.Context(), req.URL)
	if err != nil {
		h.respondScrapeError(w, req.URL, err)
		return
	}

	h.respondJSON(w, http.StatusOK, ScrapeResponse{
		URL:       req.URL,
		Product:   product,
		Cached:    cached,
		ScrapedAt: time.Now().UTC(),
	})
}

type BatchRequest struct {
	URLs []string `json:"urls"`
}

type BatchResult struct {
	URL     string                 `json:"url"`
	Product *models.ScrapedProduct `json:"product,omitempty"`
	Cached  bool                   `json:"cached,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

type BatchResponse struct {
	BatchID   string        `json:"batch_id"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Results   []BatchResult `json:"results"`
}

// ScrapeBatch fans one independent extraction out per URL with a bounded
// worker pool. A failing URL reports its error inline and never aborts
// its siblings.
func (h *Handlers) ScrapeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body", "")
		return
	}
	if len(req.URLs) == 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "urls is required", "")
		return
	}
	if len(req.URLs) > h.maxBatchURLs {
		h.respondError(w, http.StatusBadRequest, "batch_too_large", "too many urls in one batch", "")
		return
	}

	batchID := uuid.NewString()
	results := make([]BatchResult, len(req.URLs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, h.batchWorkers)
	for i, pageURL := range req.URLs {
		wg.Add(1)
		go func(i int, pageURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = BatchResult{URL: pageURL}
			if !validPageURL(pageURL) {
				results[i].Error = "url must be absolute http(s)"
				return
			}

			product, cached, err := h.scrapeOne(r.Context(), pageURL)
			if err != nil {
				h.logger.Warn("batch item failed", "batchID", batchID, "url", pageURL, "error", err)
				results[i].Error = err.Error()
				return
			}
			results[i].Product = product
			results[i].Cached = cached
		}(i, pageURL)
	}
	wg.Wait()

	succeeded := 0
	for _, result := range results {
		if result.Product != nil {
			succeeded++
		}
	}

	h.respondJSON(w, http.StatusOK, BatchResponse{
		BatchID:   batchID,
		Total:     len(results),
		Succeeded: succeeded,
		Results:   results,
	})
}

// Health reports service and cache status.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "unavailable"
		if h.cache.Available(r.Context()) {
			cacheStatus = "connected"
		}
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"cache":  cacheStatus,
	})
}

// scrapeOne checks the shared cache before extracting; a fresh result is
// written back for the next caller.
func (h *Handlers) scrapeOne(ctx context.Context, pageURL string) (*models.ScrapedProduct, bool, error) {
	if product := h.cache.Get(ctx, pageURL); product != nil {
		return product, true, nil
	}

	if err := h.outbound.Wait(ctx); err != nil {
		return nil, false, err
	}

	product, err := h.scraper.Scrape(ctx, pageURL)
	if err != nil {
		return nil, false, err
	}

	h.cache.Set(ctx, pageURL, product)
	return product, false, nil
}

func (h *Handlers) respondScrapeError(w http.ResponseWriter, pageURL string, err error) {
	var fetchErr *scraper.FetchError
	if errors.As(err, &fetchErr) {
		h.respondError(w, http.StatusBadGateway, "fetch_failed", err.Error(), pageURL)
		return
	}

	var extractErr *scraper.ExtractionError
	if errors.As(err, &extractErr) {
		h.respondError(w, http.StatusInternalServerError, "extraction_failed", err.Error(), pageURL)
		return
	}

	h.respondError(w, http.StatusInternalServerError, "scrape_failed", err.Error(), pageURL)
}

func validPageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, code, message, pageURL string) {
	h.respondJSON(w, status, models.ErrorResponse{
		Error:   code,
		Message: message,
		URL:     pageURL,
	})
}
