package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/odds-backtester/internal/models"
)

// sqliteTimeLayout is fixed width so run_at sorts lexically
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteVerdictRepository implements VerdictRepository on a local SQLite file
type SQLiteVerdictRepository struct {
	db *sql.DB
}

// NewSQLiteVerdictRepository wraps an opened SQLite database
func NewSQLiteVerdictRepository(db *sql.DB) *SQLiteVerdictRepository {
	return &SQLiteVerdictRepository{db: db}
}

// Save inserts a verdict record
func (r *SQLiteVerdictRepository) Save(ctx context.Context, rec *models.VerdictRecord) error {
	reasons := rec.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}
	var ledger interface{}
	if len(rec.Ledger) > 0 {
		ledger = string(rec.Ledger)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO validation_verdicts (
			id, domain, model_version, run_at, holdout_size, starting_bankroll, final_bankroll,
			config_hash, passed, roi, hit_rate, total_bets, reasons, ledger
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID.String(), rec.Domain, rec.ModelVersion, rec.RunAt.UTC().Format(sqliteTimeLayout),
		rec.HoldoutSize, rec.StartingBankroll, rec.FinalBankroll, rec.ConfigHash, rec.Passed,
		rec.ROI, rec.HitRate, rec.TotalBets, string(reasonsJSON), ledger,
	)
	if err != nil {
		return fmt.Errorf("failed to save verdict: %w", err)
	}
	return nil
}

// GetByID retrieves a verdict by id
func (r *SQLiteVerdictRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VerdictRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+verdictColumns+` FROM validation_verdicts WHERE id = ?`, id.String())
	return r.getOne(row)
}

// GetLatest retrieves the newest verdict for a domain
func (r *SQLiteVerdictRepository) GetLatest(ctx context.Context, domain string) (*models.VerdictRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+verdictColumns+` FROM validation_verdicts WHERE domain = ? ORDER BY run_at DESC LIMIT 1`, domain)
	return r.getOne(row)
}

// List retrieves verdicts newest first
func (r *SQLiteVerdictRepository) List(ctx context.Context, domain string, limit int) ([]*models.VerdictRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if domain == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+verdictColumns+` FROM validation_verdicts ORDER BY run_at DESC LIMIT ?`, listLimit(limit))
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+verdictColumns+` FROM validation_verdicts WHERE domain = ? ORDER BY run_at DESC LIMIT ?`,
			domain, listLimit(limit))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var records []*models.VerdictRecord
	for rows.Next() {
		rec, err := scanSQLiteVerdict(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanVerdict, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database
func (r *SQLiteVerdictRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteVerdictRepository) getOne(row *sql.Row) (*models.VerdictRecord, error) {
	rec, err := scanSQLiteVerdict(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf(errScanVerdict, err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteVerdict(row rowScanner) (*models.VerdictRecord, error) {
	rec := &models.VerdictRecord{}
	var (
		id      string
		runAt   string
		reasons string
		ledger  sql.NullString
	)
	if err := row.Scan(
		&id, &rec.Domain, &rec.ModelVersion, &runAt, &rec.HoldoutSize, &rec.StartingBankroll, &rec.FinalBankroll,
		&rec.ConfigHash, &rec.Passed, &rec.ROI, &rec.HitRate, &rec.TotalBets, &reasons, &ledger,
	); err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", id, err)
	}
	rec.ID = parsedID

	if rec.RunAt, err = time.Parse(sqliteTimeLayout, runAt); err != nil {
		return nil, fmt.Errorf("invalid run_at %q: %w", runAt, err)
	}
	if err := json.Unmarshal([]byte(reasons), &rec.Reasons); err != nil {
		return nil, fmt.Errorf("invalid reasons: %w", err)
	}
	if ledger.Valid {
		rec.Ledger = json.RawMessage(ledger.String)
	}
	return rec, nil
}
