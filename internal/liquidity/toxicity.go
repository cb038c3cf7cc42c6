package liquidity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quantfold/marketguard/internal/domain"
)

// Detector aggregates per-symbol liquidity verdicts across the majors into a
// single systemic judgment.
type Detector struct {
	validator *Validator
	majors    map[string]struct{}
}

// NewDetector creates a Detector that evaluates the given major symbols.
// Passing nil uses the built-in Majors list.
func NewDetector(validator *Validator, majors []string) *Detector {
	if len(majors) == 0 {
		majors = Majors
	}
	set := make(map[string]struct{}, len(majors))
	for _, m := range majors {
		set[m] = struct{}{}
	}
	return &Detector{validator: validator, majors: set}
}

// Sweep validates every major symbol present in snaps and flags the
// environment toxic when more than half of the checked majors fail.
// Non-major symbols are ignored for this aggregate judgment.
func (d *Detector) Sweep(snaps []domain.BookSnapshot) domain.ToxicityReport {
	report := domain.ToxicityReport{
		ID: uuid.NewString(),
		// Never nil: persistence stores details in a NOT NULL column and a
		// clean sweep is the common case.
		Details: []string{},
		SweptAt: time.Now().UTC(),
	}

	for _, snap := range snaps {
		if _, ok := d.majors[snap.Symbol]; !ok {
			continue
		}
		report.TotalChecked++

		result := d.validator.Check(snap, 0)
		if !result.Safe {
			report.FailedCount++
			report.Details = append(report.Details,
				fmt.Sprintf("%s: %s", snap.Symbol, result.Reason))
		}
	}

	report.Toxic = report.TotalChecked > 0 && report.FailedCount*2 > report.TotalChecked
	return report
}
