package listing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotFound      = errors.New("listing not found")
	ErrInvalidQuery  = errors.New("invalid listing query")
	ErrQuotaExceeded = errors.New("feed quota exceeded")
)

type PropertyType string

const (
	TypeApartment PropertyType = "Apartment"
	TypeVilla     PropertyType = "Villa"
	TypePenthouse PropertyType = "Penthouse"
	TypeTownhouse PropertyType = "Townhouse"
)

var knownTypes = []PropertyType{TypeApartment, TypeVilla, TypePenthouse, TypeTownhouse}

// ParsePropertyType matches case-insensitively against the four known types.
func ParsePropertyType(s string) (PropertyType, error) {
	s = strings.TrimSpace(s)
	for _, t := range knownTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown property type %q", ErrInvalidQuery, s)
}

type Property struct {
	ID          int64        `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Type        PropertyType `json:"type" yaml:"type"`
	Price       int64        `json:"price" yaml:"price"`
	Bedrooms    int          `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms   int          `json:"bathrooms" yaml:"bathrooms"`
	Area        int          `json:"area" yaml:"area"` // square metres
	Location    string       `json:"location" yaml:"location"`
	Description string       `json:"description" yaml:"description"`
	Image       string       `json:"image" yaml:"image"`
	Featured    bool         `json:"featured" yaml:"featured"`
}

// Card is the wire shape served to the listing page.
type Card struct {
	Property
	PriceFormatted string `json:"price_formatted"`
}

func ToCards(props []Property) []Card {
	out := make([]Card, 0, len(props))
	for _, p := range props {
		out = append(out, Card{Property: p, PriceFormatted: FormatPrice(p.Price)})
	}
	return out
}

// FormatPrice renders whole Ethiopian Birr the way the site shows them, e.g. "ETB 4,500,000".
func FormatPrice(price int64) string {
	neg := price < 0
	if neg {
		price = -price
	}
	digits := strconv.FormatInt(price, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("ETB ")
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
