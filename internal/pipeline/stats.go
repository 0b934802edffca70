package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Failure records one address that could not be processed.
type Failure struct {
	Address string
	Reason  string
}

// Stats accumulates the outcome of a processing run.
type Stats struct {
	Successes int
	Failures  int
	Failed    []Failure
}

// AddSuccess counts one successfully linked address.
func (s *Stats) AddSuccess() { s.Successes++ }

// AddFailure counts one failed address and keeps its reason.
func (s *Stats) AddFailure(addr string, err error) {
	s.Failures++
	s.Failed = append(s.Failed, Failure{Address: addr, Reason: err.Error()})
}

// Summary renders the human-readable run outcome.
func (s *Stats) Summary() string {
	return fmt.Sprintf("Processing results: %d address(es) linked, %d failed", s.Successes, s.Failures)
}

// ExportCSV writes the failed addresses as an "address,error" CSV.
func (s *Stats) ExportCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create error report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"address", "error"}); err != nil {
		return err
	}
	for _, fail := range s.Failed {
		if err := w.Write([]string{fail.Address, fail.Reason}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
