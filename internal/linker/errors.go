package linker

import (
	"errors"
	"fmt"
)

// Linking errors. ErrFlatRange wraps ErrNotFound so callers checking
// for "address is not in the reference data" catch both.
var (
	ErrNormalize = errors.New("could not normalize the street name")
	ErrNotFound  = errors.New("address not found in the reference data")
	ErrFlatRange = fmt.Errorf("%w: flat is outside the known ranges", ErrNotFound)
	ErrAmbiguous = errors.New("address matches several reference entries")
)
