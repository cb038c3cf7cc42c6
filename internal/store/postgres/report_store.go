package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantfold/marketguard/internal/domain"
)

// ReportStore implements domain.ReportStore using PostgreSQL.
type ReportStore struct {
	pool *pgxpool.Pool
}

// NewReportStore creates a ReportStore backed by the given connection pool.
func NewReportStore(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// Insert persists a toxicity sweep report.
func (s *ReportStore) Insert(ctx context.Context, report domain.ToxicityReport) error {
	// details is NOT NULL; a nil slice would encode as SQL NULL.
	details := report.Details
	if details == nil {
		details = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO toxicity_reports (
			id, toxic, failed_count, total_checked, details, swept_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		report.ID, report.Toxic, report.FailedCount, report.TotalChecked,
		details, report.SweptAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert toxicity report %s: %w", report.ID, err)
	}
	return nil
}

// Latest returns the most recent sweep report, or domain.ErrNotFound when no
// sweep has run yet.
func (s *ReportStore) Latest(ctx context.Context) (domain.ToxicityReport, error) {
	var r domain.ToxicityReport
	err := s.pool.QueryRow(ctx, `
		SELECT id, toxic, failed_count, total_checked, details, swept_at
		FROM toxicity_reports
		ORDER BY swept_at DESC
		LIMIT 1`,
	).Scan(&r.ID, &r.Toxic, &r.FailedCount, &r.TotalChecked, &r.Details, &r.SweptAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ToxicityReport{}, domain.ErrNotFound
		}
		return domain.ToxicityReport{}, fmt.Errorf("postgres: latest toxicity report: %w", err)
	}
	return r, nil
}

// Compile-time interface check.
var _ domain.ReportStore = (*ReportStore)(nil)
