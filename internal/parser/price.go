package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	priceStripPattern = regexp.MustCompile(`[^\d.,]`)
	// A comma followed by exactly three digits is a thousands separator.
	thousandsPattern = regexp.MustCompile(`,(\d{3})(\D|$)`)
)

// ParsePrice normalizes a raw price string to a float. All non-digit,
// non-separator characters are stripped, comma thousands separators are
// removed and a remaining comma is treated as the decimal point. Anything
// still unparsable yields 0.
func ParsePrice(raw string) float64 {
	s := priceStripPattern.ReplaceAllString(raw, "")
	if s == "" {
		return 0
	}

	for {
		next := thousandsPattern.ReplaceAllString(s, "$1$2")
		if next == s {
			break
		}
		s = next
	}
	s = strings.ReplaceAll(s, ",", ".")

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// priceResult carries the outcome of the price cascade. currency stays
// empty unless the winning stage carried an explicit currency signal.
type priceResult struct {
	amount   float64
	original *float64
	currency string
}

var priceMetaSelectors = []struct {
	amount   string
	currency string
}{
	{`meta[property="product:price:amount"]`, `meta[property="product:price:currency"]`},
	{`meta[property="og:price:amount"]`, `meta[property="og:price:currency"]`},
}

var salePriceSelectors = []string{
	".sale-price",
	".special-price",
	".discounted-price",
	".offer-price",
	"[data-sale-price]",
}

var originalPriceSelectors = []string{
	".original-price",
	".regular-price",
	".old-price",
	".was-price",
	"[data-original-price]",
}

var genericPriceSelectors = []string{
	".price",
	".product-price",
	`[itemprop="price"]`,
	".current-price",
}

// extractPrice resolves price, original price and currency with a single
// first-match-wins cascade: JSON-LD offers, then price meta tags, then
// sale/original selector pairs, then generic price selectors. Later stages
// are not consulted once an earlier one matched, even when the winner
// lacks an original price or currency.
func (p *ProductParser) extractPrice(doc *goquery.Document) priceResult {
	if result, ok := p.priceFromJSONLD(doc); ok {
		return result
	}
	if result, ok := p.priceFromMeta(doc); ok {
		return result
	}
	if result, ok := p.priceFromSaleSelectors(doc); ok {
		return result
	}
	if result, ok := p.priceFromGenericSelectors(doc); ok {
		return result
	}
	return priceResult{}
}

// priceFromJSONLD wins on the first Product script whose offer carries a
// price. A nested priceSpecification.price becomes the original price.
func (p *ProductParser) priceFromJSONLD(doc *goquery.Document) (priceResult, bool) {
	for _, product := range ldProducts(doc) {
		offer := product.firstOffer()
		if offer == nil {
			continue
		}
		amount, ok := ldPrice(offer.Price)
		if !ok {
			continue
		}

		result := priceResult{amount: amount, currency: strings.TrimSpace(offer.PriceCurrency)}
		if offer.PriceSpecification != nil {
			if original, ok := ldPrice(offer.PriceSpecification.Price); ok {
				result.original = &original
			}
		}
		return result, true
	}
	return priceResult{}, false
}

func (p *ProductParser) priceFromMeta(doc *goquery.Document) (priceResult, bool) {
	for _, pair := range priceMetaSelectors {
		amount := metaContent(doc, pair.amount)
		if amount == "" {
			continue
		}
		return priceResult{
			amount:   ParsePrice(amount),
			currency: metaContent(doc, pair.currency),
		}, true
	}
	return priceResult{}, false
}

// priceFromSaleSelectors pairs a discounted price element with a nearby
// strike-through price. Discounts expressed through other markup (del/s
// tags and the like) are not recognized here.
func (p *ProductParser) priceFromSaleSelectors(doc *goquery.Document) (priceResult, bool) {
	sale := firstValue(doc, salePriceSelectors)
	if sale == "" {
		return priceResult{}, false
	}

	result := priceResult{amount: ParsePrice(sale)}
	if was := firstValue(doc, originalPriceSelectors); was != "" {
		original := ParsePrice(was)
		result.original = &original
	}
	return result, true
}

func (p *ProductParser) priceFromGenericSelectors(doc *goquery.Document) (priceResult, bool) {
	raw := firstValue(doc, genericPriceSelectors)
	if raw == "" {
		return priceResult{}, false
	}
	return priceResult{amount: ParsePrice(raw)}, true
}
