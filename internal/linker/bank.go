package linker

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/vmelnikov/addrlink/internal/address"
)

// abbreviations maps upper-case words of canonical street names to
// alternate spellings people use in raw addresses. Every variant is
// registered in the bank next to the canonical spelling.
var abbreviations = map[string][]string{
	"ИМЕНИ":      {"ИМ"},
	"МАКСИМА":    {"М"},
	"КАРЛА":      {"К"},
	"РОЗЫ":       {"Р"},
	"СЕРГЕЯ":     {"С"},
	"КОМАНДАРМА": {"КОМ"},
	"ПАРТИЗАНА":  {"П"},
}

// StreetBank resolves raw street spellings to canonical streets from
// the reference data. One spelling may map to several streets (same
// name with different types).
type StreetBank struct {
	streets   map[string][]address.Street
	spellings []string // sorted keys of streets, kept for deterministic fuzzy ranking
}

// NewStreetBank returns an empty bank.
func NewStreetBank() *StreetBank {
	return &StreetBank{streets: make(map[string][]address.Street)}
}

// Add registers a canonical street under its own spelling and under
// every abbreviation-derived variant.
func (b *StreetBank) Add(street address.Street) {
	b.put(street.Name, street)

	words := strings.Fields(street.Name)
	for _, word := range words {
		for _, variant := range abbreviations[word] {
			alt := strings.Join(replaceWord(words, word, variant), " ")
			b.put(alt, street)
		}
	}
}

func (b *StreetBank) put(spelling string, street address.Street) {
	spelling = strings.ToUpper(strings.TrimSpace(spelling))
	for _, known := range b.streets[spelling] {
		if known.Equal(street) {
			return
		}
	}
	if _, seen := b.streets[spelling]; !seen {
		b.spellings = append(b.spellings, spelling)
		sort.Strings(b.spellings)
	}
	b.streets[spelling] = append(b.streets[spelling], street)
}

func replaceWord(words []string, old, repl string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		if w == old {
			out[i] = repl
		} else {
			out[i] = w
		}
	}
	return out
}

// matchCutoff is the minimum similarity between a raw spelling and the
// best fuzzy hit. Subsequence matching alone would let a couple of
// stray letters resolve to a long street name.
const matchCutoff = 0.55

// similarity scores a full subsequence match by length:
// 2*len(query)/(len(query)+len(spelling)). Identical strings score 1.
func similarity(query, spelling string) float64 {
	q := len([]rune(query))
	s := len([]rune(spelling))
	return 2 * float64(q) / float64(q+s)
}

// Find returns the canonical candidates for a raw street. The best
// matching spelling wins; when the query carries a type and the
// spelling maps to several streets, only the type-matching ones are
// returned. A nil result means the spelling could not be resolved.
func (b *StreetBank) Find(street address.Street) []address.Street {
	name := strings.ToUpper(strings.TrimSpace(street.Name))
	if name == "" {
		return nil
	}

	variants, ok := b.streets[name]
	if !ok {
		matches := fuzzy.Find(name, b.spellings)
		if len(matches) == 0 || similarity(name, matches[0].Str) < matchCutoff {
			return nil
		}
		variants = b.streets[matches[0].Str]
	}

	if len(variants) == 1 || street.Type == address.TypeUnknown {
		return variants
	}
	for _, v := range variants {
		if v.Type == street.Type {
			return []address.Street{v}
		}
	}
	return nil
}

// Len reports the number of distinct spellings in the bank.
func (b *StreetBank) Len() int { return len(b.spellings) }
