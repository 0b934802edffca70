// Package address provides the data model for Cherepovets street
// addresses and a parser that recognizes them in free-form Russian text.
package address

import (
	"fmt"
	"strings"
)

// StreetType is the kind of a street-level address element.
type StreetType int

// Street types known to the reference data.
const (
	TypeUnknown StreetType = iota
	TypeBulvar
	TypeUlitsa
	TypeLiniya
	TypePereulok
	TypePloshad
	TypeProezd
	TypeProspekt
	TypeShosse
	TypeTerritoriya
)

// streetTypeNames maps each type to its full and short spellings as
// they appear in the reference workbook.
var streetTypeNames = map[StreetType]struct {
	full  string
	short string
}{
	TypeBulvar:      {"бульвар", "Б-Р"},
	TypeUlitsa:      {"улица", "УЛ."},
	TypeLiniya:      {"линия", "ЛН."},
	TypePereulok:    {"переулок", "ПЕР."},
	TypePloshad:     {"площадь", "ПЛ."},
	TypeProezd:      {"проезд", "ПР-Д"},
	TypeProspekt:    {"проспект", "ПР-КТ"},
	TypeShosse:      {"шоссе", "Ш."},
	TypeTerritoriya: {"территория", "ТЕР."},
}

// shortSpellings lists the abbreviated spellings accepted for each
// type. Where a spelling is shared ("пр"), the first listed type wins,
// matching the original rule ordering (prospekt before pereulok and
// proezd).
var shortSpellings = []struct {
	Type      StreetType
	Spellings []string
}{
	{TypeUlitsa, []string{"ул", "у"}},
	{TypeShosse, []string{"ш"}},
	{TypeBulvar, []string{"б-р", "бр", "б"}},
	{TypeLiniya, []string{"л-н", "лн", "л"}},
	{TypeProspekt, []string{"пр-кт", "пр", "пркт"}},
	{TypePereulok, []string{"пер"}},
	{TypeProezd, []string{"пр-д", "прд"}},
	{TypePloshad, []string{"плщ", "пл"}},
	{TypeTerritoriya, []string{"тер"}},
}

// fullPrefixes recognizes full (possibly inflected) type words by stem.
var fullPrefixes = []struct {
	Type   StreetType
	Prefix string
}{
	{TypeBulvar, "бульвар"},
	{TypeUlitsa, "улиц"},
	{TypeLiniya, "лини"},
	{TypePereulok, "переулк"},
	{TypePereulok, "переулок"},
	{TypePloshad, "площад"},
	{TypeProezd, "проезд"},
	{TypeProspekt, "проспект"},
	{TypeShosse, "шоссе"},
	{TypeTerritoriya, "территори"},
}

// Full returns the full lower-case spelling, e.g. "проспект".
func (t StreetType) Full() string {
	if n, ok := streetTypeNames[t]; ok {
		return n.full
	}
	return ""
}

// Short returns the abbreviated spelling used by the reference
// workbook, e.g. "ПР-КТ".
func (t StreetType) Short() string {
	if n, ok := streetTypeNames[t]; ok {
		return n.short
	}
	return ""
}

func (t StreetType) String() string { return t.Short() }

// ParseStreetType recognizes a street type in a single word: a short
// form with or without a trailing dot ("ул", "УЛ.", "пр-кт") or a full
// word in any case, inflected forms included ("улице").
func ParseStreetType(s string) (StreetType, error) {
	w := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), "."))
	if w == "" {
		return TypeUnknown, fmt.Errorf("empty street type")
	}
	for _, e := range shortSpellings {
		for _, sp := range e.Spellings {
			if w == sp {
				return e.Type, nil
			}
		}
	}
	for _, e := range fullPrefixes {
		if strings.HasPrefix(w, e.Prefix) {
			return e.Type, nil
		}
	}
	return TypeUnknown, fmt.Errorf("unrecognized street type %q", s)
}

// Street is a named street-level element, optionally typed.
type Street struct {
	Name string
	Type StreetType
}

// Equal reports full equality of name and type.
func (s Street) Equal(o Street) bool {
	return s.Name == o.Name && s.Type == o.Type
}

func (s Street) String() string {
	if s.Type == TypeUnknown {
		return s.Name
	}
	return s.Type.Short() + ", " + s.Name
}

// Address is a parsed street address. House carries corpus and
// stroenie suffixes ("10 К. 2", "10 СТР. 3") appended to the number.
// Flat is nil when the address has no flat part.
type Address struct {
	Street Street
	House  string
	Flat   *int
}

// Flat pointer helper for literals in construction sites and tests.
func FlatNumber(n int) *int { return &n }

func (a Address) String() string {
	parts := make([]string, 0, 4)
	if s := a.Street.String(); s != "" {
		parts = append(parts, s)
	}
	if a.House != "" {
		parts = append(parts, a.House)
	}
	if a.Flat != nil {
		parts = append(parts, fmt.Sprintf("%d", *a.Flat))
	}
	return strings.Join(parts, ", ")
}
