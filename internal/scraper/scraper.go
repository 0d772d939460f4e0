package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/S3OD177/price-monitor-sub000/internal/fetch"
	"github.com/S3OD177/price-monitor-sub000/internal/models"
	"github.com/S3OD177/price-monitor-sub000/internal/parser"
)

// FetchError means the page could not be retrieved: transport failure or a
// non-success HTTP status. The call produces no record.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError wraps an unexpected failure while parsing a fetched
// page. Individual field misses never surface here; they degrade to
// defaults inside the parser.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract product from %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Scraper runs one fetch and one parse per call. It is stateless across
// calls and safe for concurrent use; throttling and retries are the
// caller's concern.
type Scraper struct {
	fetcher fetch.Fetcher
	parser  parser.Parser
	logger  *slog.Logger
}

func New(fetcher fetch.Fetcher, p parser.Parser, logger *slog.Logger) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		parser:  p,
		logger:  logger.With("component", "scraper"),
	}
}

// Scrape fetches the page and extracts a ScrapedProduct. The returned
// record is always fully constructed; on error no record is returned.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (*models.ScrapedProduct, error) {
	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	product, err := s.parser.Parse(body, pageURL)
	if err != nil {
		return nil, &ExtractionError{URL: pageURL, Err: err}
	}

	s.logger.Info("scraped product",
		"url", pageURL,
		"name", product.Name,
		"price", product.Price,
		"currency", product.Currency,
		"hasSKU", product.SKU != "",
	)
	return product, nil
}

func (s *Scraper) Close() error {
	return s.fetcher.Close()
}
