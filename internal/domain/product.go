package domain

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is owned by the catalog; the storefront never mutates it.
type Product struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Price       Money  `json:"price"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Rating      Rating `json:"rating"`
}

// ProductLookup resolves product references against a catalog snapshot.
type ProductLookup interface {
	Lookup(id int64) (Product, bool)
}
