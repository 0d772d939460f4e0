package models

const (
	// PlaceholderName is used when no title signal exists on the page.
	PlaceholderName = "Imported Product"

	// MaxDescriptionLength caps the description field.
	MaxDescriptionLength = 500

	// MaxSKULength rejects implausibly long SKU candidates as false positives.
	MaxSKULength = 50

	// InStockQuantity is the sentinel used when a page only says "in stock".
	// It is a coarse availability signal, never a real inventory count.
	InStockQuantity = 100
)

// ScrapedProduct is the best-effort record extracted from a single product
// page. Every field degrades independently: a missing signal leaves the
// default in place rather than failing the whole extraction.
type ScrapedProduct struct {
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Currency      string   `json:"currency"`
	ImageURL      string   `json:"image_url,omitempty"`
	Description   string   `json:"description,omitempty"`
	Stock         *int     `json:"stock,omitempty"`
	SKU           string   `json:"sku,omitempty"`
}

// HasDiscount reports whether a distinct pre-discount price was found.
func (p *ScrapedProduct) HasDiscount() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	URL     string `json:"url,omitempty"`
}
