package listing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// stringNumber accepts string or number JSON and stores the textual form.
type stringNumber string

func (s *stringNumber) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = stringNumber(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*s = stringNumber(num.String())
	return nil
}

// Int parses "4,500,000", "4500000" and "4500000.0" alike.
func (s stringNumber) Int() (int64, error) {
	txt := strings.ReplaceAll(strings.TrimSpace(string(s)), ",", "")
	if txt == "" {
		return 0, nil
	}
	if i, err := strconv.ParseInt(txt, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(txt, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f)), nil
}

type feedRecord struct {
	ID          stringNumber `json:"id"`
	Title       string       `json:"title"`
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Price       stringNumber `json:"price"`
	Bedrooms    stringNumber `json:"bedrooms"`
	Bathrooms   stringNumber `json:"bathrooms"`
	Area        stringNumber `json:"area"`
	Location    string       `json:"location"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	Images      []string     `json:"images"`
	Featured    bool         `json:"featured"`
}

// MapFeedPayload maps one page of a listing feed. Records whose id, price or
// type cannot be understood are skipped and reported in the second return.
func MapFeedPayload(raw []byte) ([]Property, []error, error) {
	var root struct {
		Properties []feedRecord `json:"properties"`
		Listings   []feedRecord `json:"listings"`
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, nil, err
	}
	recs := root.Properties
	if len(recs) == 0 {
		recs = root.Listings
	}

	out := make([]Property, 0, len(recs))
	var skipped []error
	for i, r := range recs {
		p, err := r.toProperty()
		if err != nil {
			skipped = append(skipped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, p)
	}
	return out, skipped, nil
}

func (r feedRecord) toProperty() (Property, error) {
	id, err := r.ID.Int()
	if err != nil || id <= 0 {
		return Property{}, fmt.Errorf("bad id %q", r.ID)
	}
	price, err := r.Price.Int()
	if err != nil || price < 0 {
		return Property{}, fmt.Errorf("bad price %q", r.Price)
	}
	typ, err := ParsePropertyType(r.Type)
	if err != nil {
		return Property{}, err
	}
	beds, _ := r.Bedrooms.Int()
	baths, _ := r.Bathrooms.Int()
	area, _ := r.Area.Int()
	img := r.Image
	if img == "" && len(r.Images) > 0 {
		img = r.Images[0]
	}
	return Property{
		ID:          id,
		Title:       firstNonEmpty(r.Title, r.Name),
		Type:        typ,
		Price:       price,
		Bedrooms:    max(int(beds), 0),
		Bathrooms:   max(int(baths), 0),
		Area:        max(int(area), 0),
		Location:    strings.TrimSpace(r.Location),
		Description: strings.TrimSpace(r.Description),
		Image:       img,
		Featured:    r.Featured,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
