package models

// Product represents a catalog product with its current price, stock and
// per-item discount. ID is the canonical 24-hex-character key; LegacyID is
// the plain numeric key older clients still send. Both resolve to the same
// record at the catalog boundary.
type Product struct {
	ID              string  `json:"id"`
	LegacyID        string  `json:"legacyId,omitempty"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DiscountPercent float64 `json:"discountPercent"`
	Stock           int     `json:"stock"`
	Category        string  `json:"category,omitempty"`
}
