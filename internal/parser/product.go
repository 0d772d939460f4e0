package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/S3OD177/price-monitor-sub000/internal/models"
)

var nameSelectors = []string{
	`h1 [itemprop="name"]`,
	`h1[itemprop="name"]`,
	"h1.product-title",
	"h1.product-name",
	"h1.product__title",
	".product-title h1",
	".product-name h1",
	".product-detail h1",
	"h1",
}

var imageSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="og:image"]`, "content"},
	{`meta[name="twitter:image"]`, "content"},
	{`img[itemprop="image"]`, "src"},
	{".product-gallery img", "src"},
	{".product-image img", "src"},
	{".gallery img", "src"},
}

var descriptionSelectors = []string{
	`meta[property="og:description"]`,
	`meta[name="description"]`,
	`[itemprop="description"]`,
	".product-description",
}

var stockSelectors = []string{
	`[itemprop="availability"]`,
	".stock",
	".availability",
}

var outOfStockPhrases = []string{
	"outofstock",
	"out of stock",
	"sold out",
	"unavailable",
	"نفذت الكمية",
	"غير متوفر",
	"نفذ من المخزون",
}

var inStockPhrases = []string{
	"instock",
	"in stock",
	"available",
	"متوفر",
}

// extractName resolves the product title: Open Graph, then Twitter, then
// microdata and title-class h1 patterns, then the page's first h1. A page
// with no title signal at all gets the import placeholder.
func (p *ProductParser) extractName(doc *goquery.Document) string {
	if name := metaContent(doc, `meta[property="og:title"]`); name != "" {
		return name
	}
	if name := metaContent(doc, `meta[name="twitter:title"]`); name != "" {
		return name
	}

	for _, selector := range nameSelectors {
		if name := strings.TrimSpace(doc.Find(selector).First().Text()); name != "" {
			return name
		}
	}
	return models.PlaceholderName
}

func (p *ProductParser) extractImage(doc *goquery.Document) string {
	for _, entry := range imageSelectors {
		value, _ := doc.Find(entry.selector).First().Attr(entry.attr)
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

func (p *ProductParser) extractDescription(doc *goquery.Document) string {
	description := firstValue(doc, descriptionSelectors)
	runes := []rune(description)
	if len(runes) > models.MaxDescriptionLength {
		return string(runes[:models.MaxDescriptionLength])
	}
	return description
}

// extractStock derives a coarse availability signal. An explicit
// out-of-stock phrase maps to 0, an in-stock phrase to the fixed sentinel
// quantity, anything else leaves stock absent. Out-of-stock phrases are
// checked first: the Arabic "غير متوفر" contains the in-stock word.
func (p *ProductParser) extractStock(doc *goquery.Document) *int {
	for _, selector := range stockSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		text := strings.ToLower(availabilityText(sel))
		for _, phrase := range outOfStockPhrases {
			if strings.Contains(text, phrase) {
				zero := 0
				return &zero
			}
		}
		for _, phrase := range inStockPhrases {
			if strings.Contains(text, phrase) {
				quantity := models.InStockQuantity
				return &quantity
			}
		}
	}
	return nil
}

// availabilityText merges the attribute and text forms availability is
// published in; link/meta microdata uses href or content rather than text.
func availabilityText(s *goquery.Selection) string {
	parts := []string{strings.TrimSpace(s.Text())}
	if content, ok := s.Attr("content"); ok {
		parts = append(parts, content)
	}
	if href, ok := s.Attr("href"); ok {
		parts = append(parts, href)
	}
	return strings.Join(parts, " ")
}
