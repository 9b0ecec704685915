package listing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type SortKey string

const (
	SortPriceDesc SortKey = "price_desc"
	SortPriceAsc  SortKey = "price_asc"
	SortNewest    SortKey = "newest"
	SortBedrooms  SortKey = "bedrooms"
)

const (
	PageSize   = 20
	MaxVisible = 200
)

type SortOption struct {
	Key   SortKey `json:"key"`
	Label string  `json:"label"`
}

// SortOptions lists the orderings in the order the sort menu shows them.
func SortOptions() []SortOption {
	return []SortOption{
		{SortPriceDesc, "Price: High to Low"},
		{SortPriceAsc, "Price: Low to High"},
		{SortNewest, "Newest"},
		{SortBedrooms, "Bedrooms"},
	}
}

// ParseSortKey accepts the API keys as well as the labels the listing page shows.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "price_desc", "price: high to low":
		return SortPriceDesc, nil
	case "price_asc", "price: low to high":
		return SortPriceAsc, nil
	case "newest":
		return SortNewest, nil
	case "bedrooms":
		return SortBedrooms, nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", ErrInvalidQuery, s)
}

type Query struct {
	PriceMin    *int64        `json:"min_price,omitempty"`
	PriceMax    *int64        `json:"max_price,omitempty"`
	MinBedrooms *int          `json:"bedrooms,omitempty"`
	Type        *PropertyType `json:"type,omitempty"`
	Search      string        `json:"q,omitempty"`
	Sort        SortKey       `json:"sort,omitempty"`
	Visible     int           `json:"visible,omitempty"`
}

func (q *Query) Normalize() {
	q.Search = strings.Join(strings.Fields(q.Search), " ")
	if sk, err := ParseSortKey(string(q.Sort)); err == nil {
		q.Sort = sk
	}
	if q.Type != nil {
		if t, err := ParsePropertyType(string(*q.Type)); err == nil {
			q.Type = &t
		}
	}
	if q.Visible <= 0 {
		q.Visible = PageSize
	}
	if q.Visible > MaxVisible {
		q.Visible = MaxVisible
	}
}

func (q Query) Validate() error {
	if q.PriceMin != nil && *q.PriceMin < 0 {
		return fmt.Errorf("%w: min_price must not be negative", ErrInvalidQuery)
	}
	if q.PriceMax != nil && *q.PriceMax < 0 {
		return fmt.Errorf("%w: max_price must not be negative", ErrInvalidQuery)
	}
	if q.PriceMin != nil && q.PriceMax != nil && *q.PriceMin > *q.PriceMax {
		return fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidQuery)
	}
	if q.MinBedrooms != nil && *q.MinBedrooms < 0 {
		return fmt.Errorf("%w: bedrooms must not be negative", ErrInvalidQuery)
	}
	if q.Type != nil {
		if _, err := ParsePropertyType(string(*q.Type)); err != nil {
			return err
		}
	}
	if _, err := ParseSortKey(string(q.Sort)); err != nil {
		return err
	}
	return nil
}

// ParseQuery reads min_price, max_price, bedrooms, type, q, sort and visible.
func ParseQuery(v url.Values) (Query, error) {
	var q Query
	if s := v.Get("min_price"); s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return q, fmt.Errorf("%w: min_price %q", ErrInvalidQuery, s)
		}
		q.PriceMin = &i
	}
	if s := v.Get("max_price"); s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return q, fmt.Errorf("%w: max_price %q", ErrInvalidQuery, s)
		}
		q.PriceMax = &i
	}
	if s := v.Get("bedrooms"); s != "" {
		i, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("%w: bedrooms %q", ErrInvalidQuery, s)
		}
		q.MinBedrooms = &i
	}
	if s := v.Get("type"); s != "" {
		t, err := ParsePropertyType(s)
		if err != nil {
			return q, err
		}
		q.Type = &t
	}
	sk, err := ParseSortKey(v.Get("sort"))
	if err != nil {
		return q, err
	}
	q.Sort = sk
	if s := v.Get("visible"); s != "" {
		i, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("%w: visible %q", ErrInvalidQuery, s)
		}
		q.Visible = i
	}
	q.Search = v.Get("q")
	q.Normalize()
	return q, q.Validate()
}

// CacheKey is a stable digest of the normalized query.
func (q Query) CacheKey() string {
	q.Normalize()
	var b strings.Builder
	if q.PriceMin != nil {
		fmt.Fprintf(&b, "min=%d;", *q.PriceMin)
	}
	if q.PriceMax != nil {
		fmt.Fprintf(&b, "max=%d;", *q.PriceMax)
	}
	if q.MinBedrooms != nil {
		fmt.Fprintf(&b, "beds=%d;", *q.MinBedrooms)
	}
	if q.Type != nil {
		fmt.Fprintf(&b, "type=%s;", *q.Type)
	}
	fmt.Fprintf(&b, "q=%s;sort=%s;visible=%d", strings.ToLower(q.Search), q.Sort, q.Visible)
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}
