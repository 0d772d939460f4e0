package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/S3OD177/price-monitor-sub000/internal/models"
)

// Known storefront URL shapes, most specific first. The Amazon patterns
// only accept well-formed 10-character ASINs.
var skuURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`/gp/product/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`/products/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/product/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/p/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`[/-]p-(\d+)`),
}

var skuQueryParams = []string{"sku", "product_id", "id"}

var skuDataAttrSelectors = []struct {
	selector string
	attr     string
}{
	{"[data-product-sku]", "data-product-sku"},
	{"[data-product-id]", "data-product-id"},
	{"[data-sku]", "data-sku"},
	{"[data-product-code]", "data-product-code"},
	{"[data-item-id]", "data-item-id"},
}

var skuMetaSelectors = []string{
	`meta[property="retailer_item_id"]`,
	`meta[property="product:sku"]`,
	`meta[itemprop="sku"]`,
	`meta[itemprop="productID"]`,
}

var skuSemanticSelectors = []string{
	`[itemprop="sku"]`,
	`[itemprop="productID"]`,
	".sku",
	".product-sku",
	".product-code",
	".item-code",
	"#sku",
	"#product-sku",
}

// skuLabelPattern strips leading label words ("SKU:", "Code:", Arabic
// equivalents) off a candidate before validation.
var skuLabelPattern = regexp.MustCompile(`^(?i:SKU|Ref(?:erence)?|Code|Model|Item(?:\s*(?:No\.?|Number|Code))?|Product\s*(?:Code|No\.?|Number)|رمز\s*(?:المنتج|التخزين|الصنف)|كود\s*المنتج|رقم\s*(?:المنتج|الصنف|الموديل)|الموديل|موديل)\s*[:：#]?\s*`)

// Label:value shapes searched over the page's visible text as a last
// resort, English variants first, then Arabic.
var skuTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bSKU\s*[:：#]?\s*([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`(?i)\bRef(?:erence)?\.?\s*[:：#]?\s*([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`(?i)\b(?:Item|Product)\s*(?:Code|No\.?|Number)\s*[:：#]?\s*([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`(?i)\bModel\s*[:：#]?\s*([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`(?:رمز|كود)\s*(?:المنتج|التخزين|الصنف)\s*[:：#]?\s*([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`رقم\s*(?:المنتج|الصنف|الموديل)\s*[:：#]?\s*([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`(?:الموديل|موديل)\s*[:：#]?\s*([A-Za-z0-9_-]+)`),
}

var skuBareTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// extractSKU tries each identifier source in order and stops at the first
// candidate that survives cleaning and the length cap. Stages: URL path
// patterns, URL query parameters, data attributes, meta tags, semantic
// HTML, JSON-LD, breadcrumbs, then free-text regex.
func (p *ProductParser) extractSKU(doc *goquery.Document, pageURL string) string {
	stages := []func() string{
		func() string { return skuFromURL(pageURL) },
		func() string { return skuFromDataAttrs(doc) },
		func() string { return skuFromMeta(doc) },
		func() string { return skuFromSemanticHTML(doc) },
		func() string { return skuFromJSONLD(doc) },
		func() string { return skuFromBreadcrumbs(doc) },
		func() string { return skuFromText(doc) },
	}

	for _, stage := range stages {
		if sku := stage(); sku != "" {
			return sku
		}
	}
	return ""
}

func skuFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	for _, pattern := range skuURLPatterns {
		if m := pattern.FindStringSubmatch(u.Path); m != nil {
			if sku := validSKU(m[1]); sku != "" {
				return sku
			}
		}
	}

	query := u.Query()
	for _, param := range skuQueryParams {
		if sku := validSKU(query.Get(param)); sku != "" {
			return sku
		}
	}
	return ""
}

func skuFromDataAttrs(doc *goquery.Document) string {
	for _, entry := range skuDataAttrSelectors {
		value, _ := doc.Find(entry.selector).First().Attr(entry.attr)
		if sku := validSKU(value); sku != "" {
			return sku
		}
	}
	return ""
}

func skuFromMeta(doc *goquery.Document) string {
	for _, selector := range skuMetaSelectors {
		if sku := validSKU(metaContent(doc, selector)); sku != "" {
			return sku
		}
	}
	return ""
}

func skuFromSemanticHTML(doc *goquery.Document) string {
	for _, selector := range skuSemanticSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if sku := validSKU(cleanSKULabel(selectionValue(sel))); sku != "" {
			return sku
		}
	}
	return ""
}

func skuFromJSONLD(doc *goquery.Document) string {
	for _, product := range ldProducts(doc) {
		if sku := validSKU(product.SKU); sku != "" {
			return sku
		}
		if sku := validSKU(product.MPN); sku != "" {
			return sku
		}
		if offer := product.firstOffer(); offer != nil {
			if sku := validSKU(offer.SKU); sku != "" {
				return sku
			}
		}
	}
	return ""
}

// skuFromBreadcrumbs reads the last breadcrumb item's microdata content,
// accepted only when it is a bare identifier token rather than a URL or a
// category label.
func skuFromBreadcrumbs(doc *goquery.Document) string {
	last := doc.Find(`[itemprop="itemListElement"] [itemprop="item"]`).Last()
	if last.Length() == 0 {
		return ""
	}

	content, _ := last.Attr("content")
	content = strings.TrimSpace(content)
	if !skuBareTokenPattern.MatchString(content) {
		return ""
	}
	return validSKU(content)
}

func skuFromText(doc *goquery.Document) string {
	text := doc.Find("body").Text()
	for _, pattern := range skuTextPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if sku := validSKU(m[1]); sku != "" {
				return sku
			}
		}
	}
	return ""
}

func cleanSKULabel(value string) string {
	return strings.TrimSpace(skuLabelPattern.ReplaceAllString(strings.TrimSpace(value), ""))
}

// validSKU rejects empty and overlong candidates so the cascade can keep
// looking.
func validSKU(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len([]rune(value)) > models.MaxSKULength {
		return ""
	}
	return value
}
