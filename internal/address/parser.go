package address

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Parse errors.
var (
	ErrEmptyInput = fmt.Errorf("address must be a non-empty string")
	ErrNoStreet   = fmt.Errorf("could not recognize a street in the input")
	ErrNoHouse    = fmt.Errorf("could not recognize a house number in the input")
)

// tokenKind enumerates the token classes of the address grammar.
type tokenKind int

const (
	tokAlphaNum tokenKind = iota // 1-ая, 50-летия
	tokDashed                    // пр-кт, б-р
	tokWord                      // plain Russian word
	tokInt
	tokPunct // significant punctuation: / and -
)

type token struct {
	kind tokenKind
	text string
}

// tokenPattern lists token alternatives in priority order. All other
// characters (dots, commas, whitespace) are dropped during scanning.
var tokenPattern = regexp.MustCompile(
	`(\d{1,3}-[а-яёА-ЯЁ]+)|([а-яёА-ЯЁ]+-[а-яёА-ЯЁ]+)|([а-яёА-ЯЁ]+)|(\d+)|([/-])`)

// tokenize splits raw text into grammar tokens.
func tokenize(raw string) []token {
	var toks []token
	for _, m := range tokenPattern.FindAllStringSubmatch(raw, -1) {
		switch {
		case m[1] != "":
			toks = append(toks, token{tokAlphaNum, m[1]})
		case m[2] != "":
			toks = append(toks, token{tokDashed, m[2]})
		case m[3] != "":
			toks = append(toks, token{tokWord, m[3]})
		case m[4] != "":
			toks = append(toks, token{tokInt, m[4]})
		case m[5] != "":
			toks = append(toks, token{tokPunct, m[5]})
		}
	}
	return toks
}

// maxNumber bounds house, corpus, stroenie and flat numbers.
const maxNumber = 1001

// houseLetters are the letters allowed directly after a house number.
const houseLetters = "абвгдеёжзий"

var (
	countryWords = wordSet("россия", "рф")
	regionWords  = wordSet("область", "обл", "вологодская", "во")
	cityWords    = wordSet("город", "гор", "г")
	houseWords   = wordSet("дом", "д")
	corpusWords  = wordSet("корпус", "корп", "кор", "к")
	strWords     = wordSet("строение", "стр", "с")
)

func wordSet(words ...string) map[string]bool {
	s := make(map[string]bool, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}

func isCityName(w string) bool {
	return strings.HasPrefix(w, "череповец") || strings.HasPrefix(w, "череповц")
}

func isFlatWord(w string) bool {
	return w == "кв" || strings.HasPrefix(w, "кварти")
}

// isTypeWord reports whether the token spells a street type on its own.
func isTypeWord(t token) (StreetType, bool) {
	if t.kind != tokWord && t.kind != tokDashed {
		return TypeUnknown, false
	}
	st, err := ParseStreetType(t.text)
	if err != nil {
		return TypeUnknown, false
	}
	return st, true
}

func lower(t token) string { return strings.ToLower(t.text) }

// Parse recognizes a street address in a free-form Russian string.
// The optional high-level prefix (postal index, country, region, city)
// is skipped; the result carries street, house (with corpus/stroenie
// suffixes) and an optional flat.
func Parse(raw string) (Address, error) {
	if strings.TrimSpace(raw) == "" {
		return Address{}, ErrEmptyInput
	}
	toks := tokenize(raw)

	i := skipHighLevel(toks)

	street, i, err := parseStreet(toks, i)
	if err != nil {
		return Address{}, err
	}

	house, flat, err := parseBuilding(toks, i)
	if err != nil {
		return Address{}, err
	}

	return Address{Street: street, House: house, Flat: flat}, nil
}

// skipHighLevel consumes the postal index, country, region and city
// parts when present.
func skipHighLevel(toks []token) int {
	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.kind == tokInt {
			if n, err := strconv.Atoi(t.text); err == nil && n >= 100000 && n <= 999999 {
				i++
				continue
			}
			break
		}
		w := lower(t)
		if countryWords[w] || regionWords[w] || cityWords[w] || isCityName(w) {
			i++
			continue
		}
		break
	}
	return i
}

// parseStreet recognizes "[type] name" or "name [type]" forms.
func parseStreet(toks []token, i int) (Street, int, error) {
	var street Street

	// Type before the name.
	if i < len(toks) {
		if st, ok := isTypeWord(toks[i]); ok {
			street.Type = st
			i++
		}
	}

	// Name words until a number or a building keyword.
	var words []string
	for i < len(toks) {
		t := toks[i]
		if t.kind == tokInt || t.kind == tokPunct {
			break
		}
		w := lower(t)
		if houseWords[w] || isFlatWord(w) {
			break
		}
		if st, ok := isTypeWord(t); ok && len(words) > 0 && street.Type == TypeUnknown {
			// Trailing type: "советский пр-кт".
			street.Type = st
			i++
			break
		}
		if _, ok := isTypeWord(t); ok && len(words) == 0 {
			// A second type word with no name yet means the input is noise.
			break
		}
		words = append(words, t.text)
		i++
	}

	if len(words) == 0 {
		return Street{}, i, ErrNoStreet
	}
	street.Name = strings.Join(words, " ")
	return street, i, nil
}

// parseBuilding recognizes the house group (number, optional letter,
// optional /part, corpus, stroenie) and the optional flat.
func parseBuilding(toks []token, i int) (string, *int, error) {
	var house string
	var flat *int

	for i < len(toks) {
		t := toks[i]
		switch {
		case t.kind == tokPunct && t.text == "-":
			// "дом-квартира" separator.
			i++

		case t.kind == tokInt:
			if house == "" {
				h, next, err := parseHouseNumber(toks, i)
				if err != nil {
					return "", nil, err
				}
				house = h
				i = next
				break
			}
			if flat == nil {
				if n, err := strconv.Atoi(t.text); err == nil && n <= maxNumber {
					flat = &n
				}
			}
			i++

		case t.kind == tokWord && houseWords[lower(t)]:
			i++

		case t.kind == tokWord && isFlatWord(lower(t)):
			i++
			if i < len(toks) && toks[i].kind == tokInt {
				if n, err := strconv.Atoi(toks[i].text); err == nil && n <= maxNumber {
					flat = &n
					i++
				}
			}

		case t.kind == tokWord && corpusWords[lower(t)] && house != "":
			if i+1 < len(toks) && toks[i+1].kind == tokInt {
				house += " К. " + toks[i+1].text
				i += 2
			} else {
				i++
			}

		case t.kind == tokWord && strWords[lower(t)] && house != "":
			if i+1 < len(toks) && toks[i+1].kind == tokInt {
				house += " СТР. " + toks[i+1].text
				i += 2
			} else {
				i++
			}

		default:
			// Trailing tokens outside the grammar are ignored.
			i = len(toks)
		}
	}

	if house == "" {
		return "", nil, ErrNoHouse
	}
	return house, flat, nil
}

// parseHouseNumber parses "N[letter][/M[letter]]" starting at an int
// token and returns the normalized house spelling ("10А/5Б").
func parseHouseNumber(toks []token, i int) (string, int, error) {
	n, err := strconv.Atoi(toks[i].text)
	if err != nil || n > maxNumber {
		return "", i, ErrNoHouse
	}
	house := toks[i].text
	i++

	if l, ok := houseLetterAt(toks, i); ok {
		house += l
		i++
	}
	if i < len(toks) && toks[i].kind == tokPunct && toks[i].text == "/" &&
		i+1 < len(toks) && toks[i+1].kind == tokInt {
		m, err := strconv.Atoi(toks[i+1].text)
		if err == nil && m <= maxNumber {
			house += "/" + toks[i+1].text
			i += 2
			if l, ok := houseLetterAt(toks, i); ok {
				house += l
				i++
			}
		}
	}
	return strings.ToUpper(house), i, nil
}

// houseLetterAt reports a single allowed letter token at position i.
func houseLetterAt(toks []token, i int) (string, bool) {
	if i >= len(toks) || toks[i].kind != tokWord {
		return "", false
	}
	w := lower(toks[i])
	if len([]rune(w)) != 1 || !strings.Contains(houseLetters, w) {
		return "", false
	}
	return strings.ToUpper(w), true
}
