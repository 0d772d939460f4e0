package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSKUFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"p path", "https://store.example.com/p/ABC123", "ABC123"},
		{"products path", "https://shop.example.com/products/wireless-mouse-x200", "wireless-mouse-x200"},
		{"product path", "https://shop.example.com/product/SKU-55", "SKU-55"},
		{"trendyol p dash", "https://www.trendyol.com/brand/item-p-32041644", "32041644"},
		{"amazon dp", "https://www.amazon.sa/dp/B08N5WRWNW", "B08N5WRWNW"},
		{"amazon gp product", "https://www.amazon.com/gp/product/B08N5WRWNW?th=1", "B08N5WRWNW"},
		{"amazon dp invalid asin length", "https://www.amazon.com/dp/SHORT", ""},
		{"sku query param", "https://example.com/view?sku=XYZ-99", "XYZ-99"},
		{"product_id query param", "https://example.com/view?product_id=441", "441"},
		{"id query param", "https://example.com/view?id=100", "100"},
		{"no identifier", "https://example.com/about-us", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, skuFromURL(tt.url))
		})
	}
}

func TestSKUFromDocument(t *testing.T) {
	p := NewProductParser()
	pageURL := "https://example.com/item" // no URL-derived SKU

	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "data attribute",
			html:     `<div data-product-sku="DA-100">x</div>`,
			expected: "DA-100",
		},
		{
			name:     "data sku attribute",
			html:     `<button data-sku="BTN-7"></button>`,
			expected: "BTN-7",
		},
		{
			name:     "retailer item id meta",
			html:     `<meta property="retailer_item_id" content="RTL-42">`,
			expected: "RTL-42",
		},
		{
			name:     "itemprop sku meta",
			html:     `<meta itemprop="sku" content="MI-9">`,
			expected: "MI-9",
		},
		{
			name:     "itemprop sku element",
			html:     `<span itemprop="sku">ELEM-3</span>`,
			expected: "ELEM-3",
		},
		{
			name:     "sku class with english label",
			html:     `<div class="sku">SKU: XYZ-99</div>`,
			expected: "XYZ-99",
		},
		{
			name:     "product-code class with model label",
			html:     `<div class="product-code">Model: TX-100</div>`,
			expected: "TX-100",
		},
		{
			name:     "sku class with arabic label",
			html:     `<div class="product-sku">رمز المنتج: AR-55</div>`,
			expected: "AR-55",
		},
		{
			name:     "jsonld sku",
			html:     `<script type="application/ld+json">{"@type":"Product","sku":"LD-1"}</script>`,
			expected: "LD-1",
		},
		{
			name:     "jsonld mpn fallback",
			html:     `<script type="application/ld+json">{"@type":"Product","mpn":"MPN-2"}</script>`,
			expected: "MPN-2",
		},
		{
			name:     "jsonld offers sku fallback",
			html:     `<script type="application/ld+json">{"@type":"Product","offers":{"sku":"OF-3"}}</script>`,
			expected: "OF-3",
		},
		{
			name: "breadcrumb bare token",
			html: `<ol><li itemprop="itemListElement"><a itemprop="item" content="Home"></a></li>
				<li itemprop="itemListElement"><a itemprop="item" content="BC-77"></a></li></ol>`,
			expected: "BC-77",
		},
		{
			name:     "breadcrumb url rejected",
			html:     `<li itemprop="itemListElement"><a itemprop="item" content="https://example.com/c/1"></a></li>`,
			expected: "",
		},
		{
			name:     "free text english label",
			html:     `<body><p>Specs</p><p>Item Code: TXT-12</p></body>`,
			expected: "TXT-12",
		},
		{
			name:     "free text arabic label",
			html:     `<body><p>كود المنتج: 554</p></body>`,
			expected: "554",
		},
		{
			name:     "overlong candidate falls through to next stage",
			html:     `<div data-sku="` + strings.Repeat("X", 60) + `"></div><meta itemprop="sku" content="OK-1">`,
			expected: "OK-1",
		},
		{
			name:     "overlong only candidate yields absent",
			html:     `<div class="sku">SKU: ` + strings.Repeat("Y", 60) + `</div>`,
			expected: "",
		},
		{
			name:     "nothing matches",
			html:     `<body><p>plain page</p></body>`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.html)
			assert.Equal(t, tt.expected, p.extractSKU(doc, pageURL))
		})
	}
}

func TestSKUStageOrder(t *testing.T) {
	p := NewProductParser()

	t.Run("url beats page signals", func(t *testing.T) {
		doc := parseDoc(t, `<div data-sku="PAGE-1"></div>`)
		assert.Equal(t, "URL-1", p.extractSKU(doc, "https://example.com/p/URL-1"))
	})

	t.Run("data attribute beats meta", func(t *testing.T) {
		doc := parseDoc(t, `<div data-sku="DATA-1"></div><meta itemprop="sku" content="META-1">`)
		assert.Equal(t, "DATA-1", p.extractSKU(doc, "https://example.com/item"))
	})

	t.Run("meta beats jsonld", func(t *testing.T) {
		doc := parseDoc(t, `<meta itemprop="sku" content="META-1">
			<script type="application/ld+json">{"@type":"Product","sku":"LD-1"}</script>`)
		assert.Equal(t, "META-1", p.extractSKU(doc, "https://example.com/item"))
	})
}

func TestCleanSKULabel(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"sku label", "SKU: XYZ-99", "XYZ-99"},
		{"lowercase label", "sku: abc", "abc"},
		{"code label", "Code: C-1", "C-1"},
		{"model label no colon", "Model TX100", "TX100"},
		{"item number label", "Item No. 8871", "8871"},
		{"arabic product code", "رمز المنتج: AB-12", "AB-12"},
		{"arabic model", "الموديل: M-9", "M-9"},
		{"no label", "PLAIN-7", "PLAIN-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanSKULabel(tt.raw))
		})
	}
}
