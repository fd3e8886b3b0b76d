package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fjod/storefront/internal/domain"
)

type PriceBand string

const (
	PriceAny      PriceBand = ""
	PriceUnder50  PriceBand = "under50"
	Price50To100  PriceBand = "50to100"
	Price100To200 PriceBand = "100to200"
	PriceOver200  PriceBand = "over200"
)

func ParsePriceBand(s string) (PriceBand, error) {
	switch b := PriceBand(s); b {
	case PriceAny, PriceUnder50, Price50To100, Price100To200, PriceOver200:
		return b, nil
	case "all":
		return PriceAny, nil
	}
	return "", fmt.Errorf("unknown price band %q", s)
}

func (b PriceBand) contains(price domain.Money) bool {
	switch b {
	case PriceUnder50:
		return price < 5000
	case Price50To100:
		return price >= 5000 && price <= 10000
	case Price100To200:
		return price > 10000 && price <= 20000
	case PriceOver200:
		return price > 20000
	}
	return true
}

// Filter narrows a product listing. Zero values match everything.
type Filter struct {
	Category  string
	Query     string
	PriceBand PriceBand
	MinRating float64
}

func (f Filter) Match(p domain.Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" &&
		!strings.Contains(strings.ToLower(p.Title), strings.ToLower(q)) {
		return false
	}
	if !f.PriceBand.contains(p.Price) {
		return false
	}
	return p.Rating.Rate >= f.MinRating
}

func (f Filter) Apply(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists the distinct categories, sorted.
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
