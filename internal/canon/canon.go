package canon

import (
	"regexp"
	"strings"
)

var rePunct = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

const defaultCity = "ADDIS ABABA"

// Location splits "Bole, Addis Ababa" into an upper-cased neighbourhood and
// city. A location without a comma is taken to be a neighbourhood of the
// default city.
func Location(location string) (neighbourhood, city string) {
	parts := strings.Split(location, ",")
	neighbourhood = clean(parts[0])
	if len(parts) > 1 {
		city = clean(strings.Join(parts[1:], " "))
	}
	if city == "" && neighbourhood != "" {
		city = defaultCity
	}
	return neighbourhood, city
}

// Key computes a stable identity for a listing so the same home arriving from
// two feeds under different ids is recognised. It ignores case, punctuation
// and unit designators.
func Key(title, location string) string {
	t := stripUnit(clean(title))
	n, c := Location(location)
	if t == "" && n == "" {
		return ""
	}
	return strings.ToLower(t + "|" + n + "|" + c)
}

// SearchText folds case and collapses whitespace for substring matching.
func SearchText(s string) string {
	return strings.ToLower(collapseSpaces(s))
}

func clean(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = rePunct.ReplaceAllString(s, " ")
	return collapseSpaces(s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripUnit(s string) string {
	toks := []string{" APT ", " UNIT ", " BLOCK ", " FLOOR "}
	up := " " + s + " "
	for _, t := range toks {
		if i := strings.Index(up, t); i >= 0 {
			return strings.TrimSpace(up[:i])
		}
	}
	return strings.TrimSpace(s)
}
