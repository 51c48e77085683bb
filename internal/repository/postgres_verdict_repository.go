package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/odds-backtester/internal/models"
)

const errScanVerdict = "failed to scan verdict: %w"

const verdictColumns = `id, domain, model_version, run_at, holdout_size, starting_bankroll, final_bankroll,
			config_hash, passed, roi, hit_rate, total_bets, reasons, ledger`

// Querier is the subset of pgxpool.Pool the repository needs
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PostgresVerdictRepository implements VerdictRepository for PostgreSQL
type PostgresVerdictRepository struct {
	db    Querier
	close func()
}

// NewPostgresVerdictRepository creates a new verdict repository. closeFn may be nil.
func NewPostgresVerdictRepository(db Querier, closeFn func()) *PostgresVerdictRepository {
	return &PostgresVerdictRepository{db: db, close: closeFn}
}

// Save inserts a verdict record
func (r *PostgresVerdictRepository) Save(ctx context.Context, rec *models.VerdictRecord) error {
	query := `
		INSERT INTO validation_verdicts (
			id, domain, model_version, run_at, holdout_size, starting_bankroll, final_bankroll,
			config_hash, passed, roi, hit_rate, total_bets, reasons, ledger
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`

	reasons := rec.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	var ledger []byte
	if len(rec.Ledger) > 0 {
		ledger = rec.Ledger
	}

	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.Domain, rec.ModelVersion, rec.RunAt, rec.HoldoutSize, rec.StartingBankroll, rec.FinalBankroll,
		rec.ConfigHash, rec.Passed, rec.ROI, rec.HitRate, rec.TotalBets, reasons, ledger,
	)
	if err != nil {
		return fmt.Errorf("failed to save verdict: %w", err)
	}
	return nil
}

// GetByID retrieves a verdict by id
func (r *PostgresVerdictRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VerdictRecord, error) {
	query := `SELECT ` + verdictColumns + ` FROM validation_verdicts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetLatest retrieves the newest verdict for a domain
func (r *PostgresVerdictRepository) GetLatest(ctx context.Context, domain string) (*models.VerdictRecord, error) {
	query := `SELECT ` + verdictColumns + ` FROM validation_verdicts WHERE domain = $1 ORDER BY run_at DESC LIMIT 1`
	return r.getOne(ctx, query, domain)
}

// List retrieves verdicts newest first
func (r *PostgresVerdictRepository) List(ctx context.Context, domain string, limit int) ([]*models.VerdictRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if domain == "" {
		query := `SELECT ` + verdictColumns + ` FROM validation_verdicts ORDER BY run_at DESC LIMIT $1`
		rows, err = r.db.Query(ctx, query, listLimit(limit))
	} else {
		query := `SELECT ` + verdictColumns + ` FROM validation_verdicts WHERE domain = $1 ORDER BY run_at DESC LIMIT $2`
		rows, err = r.db.Query(ctx, query, domain, listLimit(limit))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var records []*models.VerdictRecord
	for rows.Next() {
		rec, err := scanPostgresVerdict(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanVerdict, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the underlying pool
func (r *PostgresVerdictRepository) Close() error {
	if r.close != nil {
		r.close()
	}
	return nil
}

func (r *PostgresVerdictRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.VerdictRecord, error) {
	rec, err := scanPostgresVerdict(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf(errScanVerdict, err)
	}
	return rec, nil
}

func scanPostgresVerdict(row pgx.Row) (*models.VerdictRecord, error) {
	rec := &models.VerdictRecord{}
	var ledger []byte
	if err := row.Scan(
		&rec.ID, &rec.Domain, &rec.ModelVersion, &rec.RunAt, &rec.HoldoutSize, &rec.StartingBankroll, &rec.FinalBankroll,
		&rec.ConfigHash, &rec.Passed, &rec.ROI, &rec.HitRate, &rec.TotalBets, &rec.Reasons, &ledger,
	); err != nil {
		return nil, err
	}
	rec.Ledger = ledger
	return rec, nil
}
