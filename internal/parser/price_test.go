package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{"plain integer", "129", 129},
		{"plain decimal", "89.50", 89.5},
		{"thousands and decimal", "1,234.56", 1234.56},
		{"comma as decimal", "1234,56", 1234.56},
		{"multiple thousands groups", "1,234,567.89", 1234567.89},
		{"currency prefix", "SAR 129.00", 129},
		{"currency suffix", "89,50 TL", 89.5},
		{"whitespace noise", "  1,299.00 ", 1299},
		{"comma then short group", "12,34", 12.34},
		{"unparsable", "call for price", 0},
		{"empty", "", 0},
		{"dot thousands with comma decimal stays unparsed", "1.234,56", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ParsePrice(tt.raw), 0.0001)
		})
	}
}

func TestPriceFromJSONLD(t *testing.T) {
	p := NewProductParser()

	t.Run("string price and currency", func(t *testing.T) {
		doc := parseDoc(t, `<script type="application/ld+json">
			{"@type":"Product","offers":{"price":"129.00","priceCurrency":"SAR"}}
		</script>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 129.00, result.amount)
		assert.Equal(t, "SAR", result.currency)
		assert.Nil(t, result.original)
	})

	t.Run("numeric price with priceSpecification", func(t *testing.T) {
		doc := parseDoc(t, `<script type="application/ld+json">
			{"@type":"Product","offers":{"price":89.5,"priceCurrency":"TRY","priceSpecification":{"price":120}}}
		</script>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 89.5, result.amount)
		assert.Equal(t, "TRY", result.currency)
		require.NotNil(t, result.original)
		assert.Equal(t, 120.0, *result.original)
	})

	t.Run("offers array takes first", func(t *testing.T) {
		doc := parseDoc(t, `<script type="application/ld+json">
			{"@type":"Product","offers":[{"price":"50","priceCurrency":"USD"},{"price":"60"}]}
		</script>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 50.0, result.amount)
		assert.Equal(t, "USD", result.currency)
	})

	t.Run("type array", func(t *testing.T) {
		doc := parseDoc(t, `<script type="application/ld+json">
			{"@type":["Product","Thing"],"offers":{"price":"10"}}
		</script>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 10.0, result.amount)
	})

	t.Run("wins over meta and selectors", func(t *testing.T) {
		doc := parseDoc(t, `
			<meta property="product:price:amount" content="999">
			<span class="sale-price">888</span>
			<script type="application/ld+json">
				{"@type":"Product","offers":{"price":"129.00","priceCurrency":"SAR"}}
			</script>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 129.00, result.amount)
		assert.Equal(t, "SAR", result.currency)
	})

	t.Run("malformed block falls through to meta", func(t *testing.T) {
		doc := parseDoc(t, `
			<script type="application/ld+json">{not json</script>
			<meta property="product:price:amount" content="77.00">`)

		result := p.extractPrice(doc)
		assert.Equal(t, 77.00, result.amount)
	})

	t.Run("non-product script ignored", func(t *testing.T) {
		doc := parseDoc(t, `
			<script type="application/ld+json">{"@type":"WebSite","offers":{"price":"5"}}</script>
			<meta property="og:price:amount" content="42">`)

		result := p.extractPrice(doc)
		assert.Equal(t, 42.0, result.amount)
	})

	t.Run("product without price skipped for later product", func(t *testing.T) {
		doc := parseDoc(t, `
			<script type="application/ld+json">{"@type":"Product","offers":{}}</script>
			<script type="application/ld+json">{"@type":"Product","offers":{"price":"15"}}</script>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 15.0, result.amount)
	})
}

func TestPriceFromMeta(t *testing.T) {
	p := NewProductParser()

	t.Run("product price with sibling currency", func(t *testing.T) {
		doc := parseDoc(t, `
			<meta property="product:price:amount" content="199.99">
			<meta property="product:price:currency" content="SAR">`)

		result := p.extractPrice(doc)
		assert.Equal(t, 199.99, result.amount)
		assert.Equal(t, "SAR", result.currency)
	})

	t.Run("og price variant without currency", func(t *testing.T) {
		doc := parseDoc(t, `<meta property="og:price:amount" content="49">`)

		result := p.extractPrice(doc)
		assert.Equal(t, 49.0, result.amount)
		assert.Empty(t, result.currency)
	})
}

func TestPriceFromSelectors(t *testing.T) {
	p := NewProductParser()

	t.Run("sale price with paired original", func(t *testing.T) {
		doc := parseDoc(t, `
			<span class="sale-price" content="89.50"></span>
			<span class="original-price" content="120.00"></span>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 89.50, result.amount)
		require.NotNil(t, result.original)
		assert.Equal(t, 120.00, *result.original)
	})

	t.Run("sale price alone", func(t *testing.T) {
		doc := parseDoc(t, `<span class="special-price">SAR 75.00</span>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 75.00, result.amount)
		assert.Nil(t, result.original)
	})

	t.Run("strike-through markup is not recognized", func(t *testing.T) {
		doc := parseDoc(t, `
			<span class="price">80.00</span>
			<del>100.00</del>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 80.00, result.amount)
		assert.Nil(t, result.original)
	})

	t.Run("generic price only", func(t *testing.T) {
		doc := parseDoc(t, `<div class="product-price">1,299.00</div>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 1299.00, result.amount)
		assert.Nil(t, result.original)
		assert.Empty(t, result.currency)
	})

	t.Run("itemprop price content attribute", func(t *testing.T) {
		doc := parseDoc(t, `<span itemprop="price" content="34.90">34,90 ر.س</span>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 34.90, result.amount)
	})

	t.Run("nothing matches", func(t *testing.T) {
		doc := parseDoc(t, `<div>no prices here</div>`)

		result := p.extractPrice(doc)
		assert.Equal(t, 0.0, result.amount)
		assert.Nil(t, result.original)
	})
}
