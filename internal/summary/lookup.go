package summary

import (
	"strings"

	"baselinker-sync/internal/models"
)

// lookupImage finds a display image for an order line in the warehouse
// products, matching by SKU first and by product id second. Best-effort:
// the ids of order lines and inventory products come from different
// namespaces and are not guaranteed to align.
func lookupImage(products []models.InventoryProduct, sku, id string) string {
	if sku != "" {
		for _, p := range products {
			if p.SKU == sku && p.ImageURL != "" {
				return p.ImageURL
			}
		}
	}
	for _, p := range products {
		if p.ID == id && p.ImageURL != "" {
			return p.ImageURL
		}
	}
	return ""
}

// usableImage reports whether the URL already points at a real image.
func usableImage(url string) bool {
	return strings.HasPrefix(url, "http")
}
