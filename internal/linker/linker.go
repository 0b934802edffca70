// Package linker matches parsed addresses against the reference data
// and resolves their database keys.
package linker

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vmelnikov/addrlink/internal/address"
	"github.com/vmelnikov/addrlink/internal/refdata"
)

// Linker resolves database keys for parsed addresses.
type Linker struct {
	rows   []refdata.Row
	bank   *StreetBank
	byKey  map[int][]refdata.Row
	logger *logrus.Logger
}

// New builds a linker from reference rows. Street types that cannot be
// recognized in the reference data are reported as an error, matching
// the strictness of the export format.
func New(rows []refdata.Row, logger *logrus.Logger) (*Linker, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	bank := NewStreetBank()
	byKey := make(map[int][]refdata.Row, len(rows))
	for _, row := range rows {
		st, err := address.ParseStreetType(row.Type)
		if err != nil {
			return nil, fmt.Errorf("reference key %d: %w", row.Key, err)
		}
		bank.Add(address.Street{Name: row.Name, Type: st})
		byKey[row.Key] = append(byKey[row.Key], row)
	}
	logger.WithFields(logrus.Fields{
		"rows":      len(rows),
		"spellings": bank.Len(),
	}).Debug("Reference data loaded into street bank")
	return &Linker{rows: rows, bank: bank, byKey: byKey, logger: logger}, nil
}

// Link resolves the key of addr. The street and house must be set.
// With requireFlatCheck, an address that carries a flat only matches
// rows whose flat range contains it.
func (l *Linker) Link(addr address.Address, requireFlatCheck bool) (int, error) {
	if addr.Street.Name == "" || addr.House == "" {
		return 0, fmt.Errorf("%w: street and house are required", ErrNotFound)
	}

	variants := l.bank.Find(addr.Street)
	if len(variants) == 0 {
		return 0, ErrNormalize
	}

	if len(variants) == 1 {
		keys, narrowed := l.matchRows(addr, variants[0], requireFlatCheck)
		switch len(keys) {
		case 0:
			if narrowed {
				return 0, ErrFlatRange
			}
			return 0, ErrNotFound
		case 1:
			return keys[0], nil
		default:
			return 0, ErrAmbiguous
		}
	}

	// Several candidate streets: keep the ones that resolve to exactly
	// one key and hope only one candidate survives.
	var resolved []int
	for _, v := range variants {
		if keys, _ := l.matchRows(addr, v, requireFlatCheck); len(keys) == 1 {
			resolved = append(resolved, keys[0])
		}
	}
	switch len(resolved) {
	case 0:
		return 0, ErrNotFound
	case 1:
		return resolved[0], nil
	default:
		return 0, ErrAmbiguous
	}
}

// Key is a non-failing wrapper around Link: linking errors yield def.
func (l *Linker) Key(addr address.Address, def int, requireFlatCheck bool) int {
	key, err := l.Link(addr, requireFlatCheck)
	if err != nil {
		return def
	}
	return key
}

// Value returns the canonical address stored under key. The flat part
// is never set; reference rows describe flat ranges, not flats.
func (l *Linker) Value(key int) (address.Address, error) {
	rows := l.byKey[key]
	if len(rows) != 1 {
		return address.Address{}, fmt.Errorf("%w: key %d", ErrNotFound, key)
	}
	st, err := address.ParseStreetType(rows[0].Type)
	if err != nil {
		return address.Address{}, err
	}
	return address.Address{
		Street: address.Street{Name: rows[0].Name, Type: st},
		House:  rows[0].House,
	}, nil
}

// matchRows collects the keys of reference rows matching addr with the
// candidate street substituted in. narrowed reports that name+house
// rows existed but the flat-range filter removed all of them.
func (l *Linker) matchRows(addr address.Address, street address.Street, requireFlatCheck bool) (keys []int, narrowed bool) {
	name := strings.ToUpper(street.Name)
	house := strings.ToUpper(addr.House)

	var candidates []refdata.Row
	for _, row := range l.rows {
		if row.Name != name || row.House != house {
			continue
		}
		if street.Type != address.TypeUnknown && row.Type != street.Type.Short() {
			continue
		}
		candidates = append(candidates, row)
	}

	if addr.Flat != nil && requireFlatCheck && len(candidates) > 0 {
		for _, row := range candidates {
			if row.InFlatRange(*addr.Flat) {
				keys = append(keys, row.Key)
			}
		}
		return keys, len(keys) == 0
	}

	for _, row := range candidates {
		keys = append(keys, row.Key)
	}
	return keys, false
}
