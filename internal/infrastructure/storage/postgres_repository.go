package storage

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/ports"
)

const resultsTable = "validation_results"

const schema = `CREATE TABLE IF NOT EXISTS validation_results (
    slug             TEXT PRIMARY KEY,
    run_id           UUID NOT NULL,
    opportunity_name TEXT NOT NULL,
    total_score      INTEGER NOT NULL,
    efficiency_score DOUBLE PRECISION NOT NULL,
    recommendation   TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL,
    payload          JSONB NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository keeps the latest validation result per opportunity
// together with the run that produced it.
type PostgresRepository struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

type resultRow struct {
	Payload []byte `db:"payload"`
}

var _ ports.ResultRepository = (*PostgresRepository)(nil)

// Open connects to Postgres through lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sqlx.DB implementation.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the results table when it is missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveResult upserts the result keyed by its sanitized name; the last write
// for a name wins.
func (r *PostgresRepository) SaveResult(ctx context.Context, runID string, result domain.ValidationResult) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.upsertQuery(runID, result)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert result %s: %w", result.Opportunity.Name, err)
	}
	return nil
}

// ListResults returns stored results, best total first. An empty names list
// returns everything.
func (r *PostgresRepository) ListResults(ctx context.Context, names []string) ([]domain.ValidationResult, error) {
	if r.db == nil {
		return []domain.ValidationResult{}, nil
	}

	query, args, err := r.listQuery(names)
	if err != nil {
		return nil, err
	}

	var rows []resultRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	results := make([]domain.ValidationResult, 0, len(rows))
	for _, row := range rows {
		var res domain.ValidationResult
		if err := json.Unmarshal(row.Payload, &res); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		res.Research.Normalize()
		results = append(results, res)
	}
	return results, nil
}

func (r *PostgresRepository) upsertQuery(runID string, result domain.ValidationResult) (string, []any, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", nil, fmt.Errorf("marshal result: %w", err)
	}

	query, args, err := r.builder.
		Insert(resultsTable).
		Columns("slug", "run_id", "opportunity_name", "total_score", "efficiency_score", "recommendation", "status", "payload").
		Values(
			result.Opportunity.Slug(),
			runID,
			result.Opportunity.Name,
			result.Score.TotalScore,
			result.Score.EfficiencyScore,
			result.Score.Recommendation,
			string(result.Status),
			string(payload),
		).
		Suffix(`ON CONFLICT (slug) DO UPDATE
              SET run_id = EXCLUDED.run_id,
                  opportunity_name = EXCLUDED.opportunity_name,
                  total_score = EXCLUDED.total_score,
                  efficiency_score = EXCLUDED.efficiency_score,
                  recommendation = EXCLUDED.recommendation,
                  status = EXCLUDED.status,
                  payload = EXCLUDED.payload,
                  updated_at = NOW()`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert: %w", err)
	}
	return query, args, nil
}

func (r *PostgresRepository) listQuery(names []string) (string, []any, error) {
	q := r.builder.
		Select("payload").
		From(resultsTable).
		OrderBy("total_score DESC", "efficiency_score DESC", "opportunity_name ASC")

	if len(names) > 0 {
		slugs := make([]string, len(names))
		for i, name := range names {
			slugs[i] = domain.Slugify(name)
		}
		q = q.Where("slug = ANY(?)", pq.StringArray(slugs))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build list: %w", err)
	}
	return query, args, nil
}
