package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ldProduct mirrors the subset of a schema.org Product node the cascades
// read. Offers stays raw because sites emit it as an object or an array.
type ldProduct struct {
	Type   interface{}     `json:"@type"`
	SKU    string          `json:"sku"`
	MPN    string          `json:"mpn"`
	Offers json.RawMessage `json:"offers"`
}

type ldOffer struct {
	Price              interface{}  `json:"price"`
	PriceCurrency      string       `json:"priceCurrency"`
	SKU                string       `json:"sku"`
	PriceSpecification *ldPriceSpec `json:"priceSpecification"`
}

type ldPriceSpec struct {
	Price interface{} `json:"price"`
}

// ldProducts collects every JSON-LD Product node on the page in document
// order. Malformed script blocks are skipped.
func ldProducts(doc *goquery.Document) []*ldProduct {
	var products []*ldProduct
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		for _, node := range decodeLDNodes([]byte(strings.TrimSpace(s.Text()))) {
			if node.isProduct() {
				products = append(products, node)
			}
		}
	})
	return products
}

// decodeLDNodes accepts a script body holding either a single object or an
// array of objects.
func decodeLDNodes(raw []byte) []*ldProduct {
	var one ldProduct
	if err := json.Unmarshal(raw, &one); err == nil {
		return []*ldProduct{&one}
	}

	var many []*ldProduct
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

// isProduct handles @type as a plain string or an array of types.
func (p *ldProduct) isProduct() bool {
	switch t := p.Type.(type) {
	case string:
		return t == "Product"
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// firstOffer returns the offers object, or the first element when offers
// is an array.
func (p *ldProduct) firstOffer() *ldOffer {
	if len(p.Offers) == 0 {
		return nil
	}

	var offer ldOffer
	if err := json.Unmarshal(p.Offers, &offer); err == nil {
		return &offer
	}

	var offers []ldOffer
	if err := json.Unmarshal(p.Offers, &offers); err == nil && len(offers) > 0 {
		return &offers[0]
	}
	return nil
}

// ldPrice coerces a JSON-LD price value, which sites emit as a number or a
// formatted string.
func ldPrice(v interface{}) (float64, bool) {
	switch value := v.(type) {
	case float64:
		if value < 0 {
			return 0, false
		}
		return value, true
	case string:
		if strings.TrimSpace(value) == "" {
			return 0, false
		}
		return ParsePrice(value), true
	default:
		return 0, false
	}
}
