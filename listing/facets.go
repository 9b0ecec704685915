package listing

// Facets describes the controls of the filter panel: which types exist and
// the price bounds a reset restores.
type Facets struct {
	Count    int            `json:"count"`
	Types    []PropertyType `json:"types"`
	PriceMin int64          `json:"price_min"`
	PriceMax int64          `json:"price_max"`
}

func ComputeFacets(props []Property) Facets {
	f := Facets{Count: len(props), Types: []PropertyType{}}
	seen := make(map[PropertyType]bool, len(knownTypes))
	for i, p := range props {
		if !seen[p.Type] {
			seen[p.Type] = true
			f.Types = append(f.Types, p.Type)
		}
		if i == 0 || p.Price < f.PriceMin {
			f.PriceMin = p.Price
		}
		if i == 0 || p.Price > f.PriceMax {
			f.PriceMax = p.Price
		}
	}
	return f
}
