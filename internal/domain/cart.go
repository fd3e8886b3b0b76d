package domain

type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (l CartLine) Subtotal() Money {
	return l.Product.Price * Money(l.Quantity)
}

// Cart maps products to quantities, one line per product.
type Cart struct {
	Items []CartLine `json:"items"`
}

func (c *Cart) index(productID int64) int {
	for i, line := range c.Items {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add merges quantity into the product's line, creating it on first add.
// A merge that would push the line above MaxQuantity is rejected.
func (c *Cart) Add(product Product, quantity int) error {
	if err := CheckQuantity(quantity); err != nil {
		return err
	}

	i := c.index(product.ID)
	if i < 0 {
		c.Items = append(c.Items, CartLine{Product: product, Quantity: quantity})
		return nil
	}

	merged := c.Items[i].Quantity + quantity
	if merged > MaxQuantity {
		return ErrQuantityExceedsMax
	}
	c.Items[i].Quantity = merged
	return nil
}

// UpdateQuantity sets the line quantity; anything below 1 removes the line.
func (c *Cart) UpdateQuantity(productID int64, quantity int) error {
	if quantity < 1 {
		c.Remove(productID)
		return nil
	}
	if quantity > MaxQuantity {
		return ErrQuantityExceedsMax
	}

	i := c.index(productID)
	if i < 0 {
		return ErrItemNotInCart
	}
	c.Items[i].Quantity = quantity
	return nil
}

// Increment adds one unit, capping at MaxQuantity. The returned error is
// ErrQuantityClamped when the line was already full.
func (c *Cart) Increment(productID int64) (int, error) {
	i := c.index(productID)
	if i < 0 {
		return 0, ErrItemNotInCart
	}
	q, err := ClampQuantity(c.Items[i].Quantity + 1)
	c.Items[i].Quantity = q
	return q, err
}

// Decrement removes one unit and drops the line when it reaches zero.
func (c *Cart) Decrement(productID int64) (int, error) {
	i := c.index(productID)
	if i < 0 {
		return 0, ErrItemNotInCart
	}
	q := c.Items[i].Quantity - 1
	if q < 1 {
		c.Remove(productID)
		return 0, nil
	}
	c.Items[i].Quantity = q
	return q, nil
}

// Remove is idempotent.
func (c *Cart) Remove(productID int64) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) Line(productID int64) (CartLine, bool) {
	i := c.index(productID)
	if i < 0 {
		return CartLine{}, false
	}
	return c.Items[i], true
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, line := range c.Items {
		n += line.Quantity
	}
	return n
}

// Snapshot returns a copy of the lines that later cart mutations cannot touch.
func (c *Cart) Snapshot() []CartLine {
	if len(c.Items) == 0 {
		return nil
	}
	lines := make([]CartLine, len(c.Items))
	copy(lines, c.Items)
	return lines
}

func (c *Cart) Clone() *Cart {
	return &Cart{Items: c.Snapshot()}
}
