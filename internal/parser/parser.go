package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/S3OD177/price-monitor-sub000/internal/models"
)

// Parser turns raw product-page HTML into a ScrapedProduct.
type Parser interface {
	Parse(html []byte, pageURL string) (*models.ScrapedProduct, error)
}

// ProductParser extracts product data from arbitrary storefront pages using
// an ordered cascade of strategies per field. Each field is resolved
// independently and short-circuits on the first non-empty match; a field
// with no match falls back to its default. The parser does no I/O.
type ProductParser struct{}

func NewProductParser() *ProductParser {
	return &ProductParser{}
}

// Parse builds a fully populated record from the page. It only fails when
// the document itself cannot be parsed; individual field misses never
// propagate.
func (p *ProductParser) Parse(html []byte, pageURL string) (*models.ScrapedProduct, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	product := &models.ScrapedProduct{
		Name:     p.extractName(doc),
		Currency: DefaultCurrency(pageURL),
	}

	price := p.extractPrice(doc)
	product.Price = price.amount
	product.OriginalPrice = price.original
	if price.currency != "" {
		product.Currency = price.currency
	}

	product.SKU = p.extractSKU(doc, pageURL)
	product.ImageURL = p.extractImage(doc)
	product.Description = p.extractDescription(doc)
	product.Stock = p.extractStock(doc)

	return product, nil
}

// DefaultCurrency guesses a currency from the URL alone. Salla stores and
// .sa domains default to SAR, Trendyol and .com.tr domains to TRY. Any
// explicit currency signal on the page overrides this guess.
func DefaultCurrency(pageURL string) string {
	lower := strings.ToLower(pageURL)
	host := ""
	if u, err := url.Parse(lower); err == nil {
		host = u.Hostname()
	}

	switch {
	case strings.Contains(lower, "salla"), strings.HasSuffix(host, ".sa"):
		return "SAR"
	case strings.Contains(lower, "trendyol"), strings.HasSuffix(host, ".com.tr"):
		return "TRY"
	default:
		return "USD"
	}
}

// metaContent returns the trimmed content attribute of the first element
// matching the selector.
func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// selectionValue reads a value off an element the way microdata consumers
// do: the content attribute when present, otherwise the trimmed text.
func selectionValue(s *goquery.Selection) string {
	if content, ok := s.Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(s.Text())
}

// firstValue runs a selector list in order and returns the first non-empty
// element value.
func firstValue(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if v := selectionValue(sel); v != "" {
			return v
		}
	}
	return ""
}
