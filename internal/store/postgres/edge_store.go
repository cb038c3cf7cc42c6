package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantfold/marketguard/internal/domain"
)

// EdgeStore implements domain.EdgeStore using PostgreSQL.
type EdgeStore struct {
	pool *pgxpool.Pool
}

// NewEdgeStore creates an EdgeStore backed by the given connection pool.
func NewEdgeStore(pool *pgxpool.Pool) *EdgeStore {
	return &EdgeStore{pool: pool}
}

const edgeSelectCols = `id, symbol_a, symbol_b, coefficient, confidence, direction, timeframe, computed_at`

func scanEdge(row pgx.Row) (domain.CorrelationEdge, error) {
	var e domain.CorrelationEdge
	err := row.Scan(
		&e.ID, &e.SymbolA, &e.SymbolB,
		&e.Coefficient, &e.Confidence, &e.Direction, &e.Timeframe, &e.ComputedAt,
	)
	return e, err
}

// Insert persists a single correlation edge.
func (s *EdgeStore) Insert(ctx context.Context, edge domain.CorrelationEdge) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO correlation_edges (
			id, symbol_a, symbol_b, coefficient, confidence, direction, timeframe, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		edge.ID, edge.SymbolA, edge.SymbolB,
		edge.Coefficient, edge.Confidence, string(edge.Direction), edge.Timeframe, edge.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert edge %s-%s: %w", edge.SymbolA, edge.SymbolB, err)
	}
	return nil
}

// ListOlderThan returns up to limit edges computed before cutoff, oldest
// first. It feeds the archiver's export batches; the id tiebreak keeps
// pagination stable when many edges share a timestamp.
func (s *EdgeStore) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]domain.CorrelationEdge, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+edgeSelectCols+`
		FROM correlation_edges
		WHERE computed_at < $1
		ORDER BY computed_at, id
		LIMIT $2`,
		cutoff, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list edges before %v: %w", cutoff, err)
	}
	defer rows.Close()

	var edges []domain.CorrelationEdge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// DeleteIDs removes the edges with the given ids and returns the number
// deleted. The archiver calls this with exactly the ids it has exported, so
// rows that were never uploaded are never dropped.
func (s *EdgeStore) DeleteIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM correlation_edges WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete %d edges: %w", len(ids), err)
	}
	return tag.RowsAffected(), nil
}

// LatestForPair returns the most recent edge between two symbols, in either
// orientation. It returns domain.ErrNotFound when no edge exists.
func (s *EdgeStore) LatestForPair(ctx context.Context, symbolA, symbolB string) (domain.CorrelationEdge, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+edgeSelectCols+`
		FROM correlation_edges
		WHERE (symbol_a = $1 AND symbol_b = $2) OR (symbol_a = $2 AND symbol_b = $1)
		ORDER BY computed_at DESC
		LIMIT 1`,
		symbolA, symbolB,
	)

	edge, err := scanEdge(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CorrelationEdge{}, domain.ErrNotFound
		}
		return domain.CorrelationEdge{}, fmt.Errorf("postgres: latest edge %s-%s: %w", symbolA, symbolB, err)
	}
	return edge, nil
}

// Compile-time interface check.
var _ domain.EdgeStore = (*EdgeStore)(nil)
