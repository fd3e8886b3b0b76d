package domain

// Wishlist is a set of products unique by id, kept in insertion order.
type Wishlist struct {
	Items []Product `json:"items"`
}

func (w *Wishlist) index(productID int64) int {
	for i, p := range w.Items {
		if p.ID == productID {
			return i
		}
	}
	return -1
}

// Toggle removes the product when present, otherwise resolves it through
// lookup and adds it. ErrProductNotFound means nothing changed.
func (w *Wishlist) Toggle(productID int64, lookup ProductLookup) (bool, error) {
	if i := w.index(productID); i >= 0 {
		w.Items = append(w.Items[:i:i], w.Items[i+1:]...)
		return false, nil
	}

	p, ok := lookup.Lookup(productID)
	if !ok {
		return false, ErrProductNotFound
	}
	w.Items = append(w.Items, p)
	return true, nil
}

func (w *Wishlist) Contains(productID int64) bool {
	return w.index(productID) >= 0
}

// Remove reports whether the product was present.
func (w *Wishlist) Remove(productID int64) bool {
	i := w.index(productID)
	if i < 0 {
		return false
	}
	w.Items = append(w.Items[:i:i], w.Items[i+1:]...)
	return true
}

func (w *Wishlist) Get(productID int64) (Product, bool) {
	i := w.index(productID)
	if i < 0 {
		return Product{}, false
	}
	return w.Items[i], true
}

func (w *Wishlist) Clone() *Wishlist {
	if len(w.Items) == 0 {
		return &Wishlist{}
	}
	items := make([]Product, len(w.Items))
	copy(items, w.Items)
	return &Wishlist{Items: items}
}
