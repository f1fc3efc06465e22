package catalog

// Product is the storefront catalog record. IDs are assigned by the admin UI,
// matching the public product feed.
type Product struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
	ImageURL string  `json:"imageUrl"`
}
