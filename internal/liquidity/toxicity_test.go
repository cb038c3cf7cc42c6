package liquidity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/marketguard/internal/domain"
)

func TestSweepMajorityFailureIsToxic(t *testing.T) {
	d := NewDetector(NewValidator(DefaultStandards()), nil)

	snaps := []domain.BookSnapshot{
		simpleBook("EUR/USD", 1.0850, 10_000_000, 1.0851, 10_000_000), // safe
		simpleBook("GBP/USD", 1.2700, 1_000_000, 1.2710, 1_000_000),   // 10-pip spread
		simpleBook("USD/JPY", 149.00, 100_000, 149.50, 100_000),       // 50-pip spread
	}

	report := d.Sweep(snaps)
	assert.True(t, report.Toxic)
	assert.Equal(t, 2, report.FailedCount)
	assert.Equal(t, 3, report.TotalChecked)
	require.Len(t, report.Details, 2)
	assert.Contains(t, report.Details[1], "USD/JPY")
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.SweptAt.IsZero())
}

func TestSweepExactlyHalfIsNotToxic(t *testing.T) {
	d := NewDetector(NewValidator(DefaultStandards()), nil)

	snaps := []domain.BookSnapshot{
		simpleBook("EUR/USD", 1.0850, 10_000_000, 1.0851, 10_000_000), // safe
		simpleBook("USD/JPY", 149.00, 100_000, 149.50, 100_000),       // unsafe
	}

	report := d.Sweep(snaps)
	assert.False(t, report.Toxic, "toxicity requires strictly more than half")
	assert.Equal(t, 1, report.FailedCount)
	assert.Equal(t, 2, report.TotalChecked)
}

func TestSweepIgnoresNonMajors(t *testing.T) {
	d := NewDetector(NewValidator(DefaultStandards()), nil)

	snaps := []domain.BookSnapshot{
		simpleBook("EUR/USD", 1.0850, 10_000_000, 1.0851, 10_000_000),
		// Terrible books, but not majors: excluded from the judgment.
		simpleBook("USD/TRY", 32.00, 1_000, 33.00, 1_000),
		simpleBook("BTC/USD", 60_000, 0.1, 61_000, 0.1),
	}

	report := d.Sweep(snaps)
	assert.False(t, report.Toxic)
	assert.Equal(t, 1, report.TotalChecked)
	assert.Zero(t, report.FailedCount)
}

func TestSweepCleanDetailsNeverNil(t *testing.T) {
	d := NewDetector(NewValidator(DefaultStandards()), nil)

	snaps := []domain.BookSnapshot{
		simpleBook("EUR/USD", 1.0850, 10_000_000, 1.0851, 10_000_000),
		simpleBook("GBP/USD", 1.2700, 10_000_000, 1.2701, 10_000_000),
	}

	report := d.Sweep(snaps)
	assert.False(t, report.Toxic)
	// A clean sweep still carries an empty, non-nil detail list so the
	// report round-trips through the NOT NULL details column.
	require.NotNil(t, report.Details)
	assert.Empty(t, report.Details)
}

func TestSweepEmptyInput(t *testing.T) {
	d := NewDetector(NewValidator(DefaultStandards()), nil)

	report := d.Sweep(nil)
	assert.False(t, report.Toxic)
	assert.Zero(t, report.TotalChecked)
	assert.Empty(t, report.Details)
}

func TestSweepCustomMajors(t *testing.T) {
	d := NewDetector(NewValidator(DefaultStandards()), []string{"EUR/USD", "EUR/GBP"})

	snaps := []domain.BookSnapshot{
		simpleBook("USD/JPY", 149.00, 100_000, 149.50, 100_000), // not in custom list
		simpleBook("EUR/GBP", 0.8500, 2_000_000, 0.8501, 2_000_000),
	}

	report := d.Sweep(snaps)
	assert.Equal(t, 1, report.TotalChecked)
	assert.False(t, report.Toxic)
}
