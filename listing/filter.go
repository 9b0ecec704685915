package listing

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"

	"github.com/yourorg/estate-api/internal/canon"
)

// Source is anything that can answer listing-page queries.
type Source interface {
	Search(ctx context.Context, q Query) (Result, error)
	Facets(ctx context.Context) (Facets, error)
	Get(ctx context.Context, id int64) (Property, error)
}

type Result struct {
	Items        []Property `json:"items"`
	Total        int        `json:"total"`
	Visible      int        `json:"visible"`
	HasMore      bool       `json:"has_more"`
	NextVisible  int        `json:"next_visible"`
	AveragePrice float64    `json:"average_price"`
}

// Matches reports whether p satisfies every active predicate of q.
func Matches(p Property, q Query) bool {
	if q.PriceMin != nil && p.Price < *q.PriceMin {
		return false
	}
	if q.PriceMax != nil && p.Price > *q.PriceMax {
		return false
	}
	if q.MinBedrooms != nil && p.Bedrooms < *q.MinBedrooms {
		return false
	}
	if q.Type != nil && p.Type != *q.Type {
		return false
	}
	if needle := canon.SearchText(q.Search); needle != "" {
		return strings.Contains(canon.SearchText(p.Title), needle) ||
			strings.Contains(canon.SearchText(p.Location), needle) ||
			strings.Contains(canon.SearchText(p.Description), needle)
	}
	return true
}

// Apply filters, sorts and truncates props. The input slice is not modified.
func Apply(props []Property, q Query) Result {
	q.Normalize()
	filtered := make([]Property, 0, len(props))
	var sum int64
	for _, p := range props {
		if Matches(p, q) {
			filtered = append(filtered, p)
			sum += p.Price
		}
	}
	Sort(filtered, q.Sort)

	res := Result{Total: len(filtered)}
	if res.Total > 0 {
		res.AveragePrice = float64(sum) / float64(res.Total)
	}
	res.Visible = min(q.Visible, res.Total)
	res.Items = filtered[:res.Visible]
	res.HasMore = res.Visible < res.Total
	res.NextVisible = min(res.Visible+PageSize, res.Total)
	return res
}

// Sort orders props in place by key; ties fall back to ascending id.
func Sort(props []Property, key SortKey) {
	slices.SortStableFunc(props, func(a, b Property) int {
		var c int
		switch key {
		case SortPriceAsc:
			c = cmp.Compare(a.Price, b.Price)
		case SortNewest:
			c = cmp.Compare(b.ID, a.ID)
		case SortBedrooms:
			c = cmp.Compare(b.Bedrooms, a.Bedrooms)
		default:
			c = cmp.Compare(b.Price, a.Price)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Page is a Result as the listing page consumes it.
type Page struct {
	Items                 []Card  `json:"items"`
	Total                 int     `json:"total"`
	Visible               int     `json:"visible"`
	HasMore               bool    `json:"has_more"`
	NextVisible           int     `json:"next_visible"`
	AveragePrice          float64 `json:"average_price"`
	AveragePriceFormatted string  `json:"average_price_formatted"`
}

func (r Result) Page() Page {
	return Page{
		Items:                 ToCards(r.Items),
		Total:                 r.Total,
		Visible:               r.Visible,
		HasMore:               r.HasMore,
		NextVisible:           r.NextVisible,
		AveragePrice:          r.AveragePrice,
		AveragePriceFormatted: FormatPrice(int64(math.Round(r.AveragePrice))),
	}
}
