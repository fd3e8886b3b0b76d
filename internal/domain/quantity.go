package domain

// MaxQuantity is the largest quantity a single cart line may hold.
const MaxQuantity = 25

// CheckQuantity is the strict rule used by the canonical cart API.
func CheckQuantity(q int) error {
	if q < 1 {
		return ErrInvalidQuantity
	}
	if q > MaxQuantity {
		return ErrQuantityExceedsMax
	}
	return nil
}

// ClampQuantity caps q at MaxQuantity and reports ErrQuantityClamped when it did.
// Quantities below 1 cannot be clamped and yield ErrInvalidQuantity.
func ClampQuantity(q int) (int, error) {
	if q < 1 {
		return 0, ErrInvalidQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity, ErrQuantityClamped
	}
	return q, nil
}
