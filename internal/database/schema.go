// Package database opens the stores validation verdicts are persisted to.
package database

// PostgresSchema creates the verdict table
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS validation_verdicts (
    id                UUID PRIMARY KEY,
    domain            TEXT             NOT NULL,
    model_version     TEXT             NOT NULL,
    run_at            TIMESTAMPTZ      NOT NULL,
    holdout_size      INTEGER          NOT NULL,
    starting_bankroll DOUBLE PRECISION NOT NULL,
    final_bankroll    DOUBLE PRECISION NOT NULL,
    config_hash       TEXT             NOT NULL,
    passed            BOOLEAN          NOT NULL,
    roi               DOUBLE PRECISION NOT NULL,
    hit_rate          DOUBLE PRECISION NOT NULL,
    total_bets        INTEGER          NOT NULL,
    reasons           TEXT[]           NOT NULL DEFAULT '{}',
    ledger            JSONB
);

CREATE INDEX IF NOT EXISTS idx_verdicts_domain_run_at ON validation_verdicts(domain, run_at DESC);
`

// SQLiteSchema is the SQLite equivalent of PostgresSchema. Reasons are a
// JSON array and timestamps fixed-width UTC text so they sort lexically.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS validation_verdicts (
    id                TEXT PRIMARY KEY,
    domain            TEXT    NOT NULL,
    model_version     TEXT    NOT NULL,
    run_at            TEXT    NOT NULL,
    holdout_size      INTEGER NOT NULL,
    starting_bankroll REAL    NOT NULL,
    final_bankroll    REAL    NOT NULL,
    config_hash       TEXT    NOT NULL,
    passed            INTEGER NOT NULL,
    roi               REAL    NOT NULL,
    hit_rate          REAL    NOT NULL,
    total_bets        INTEGER NOT NULL,
    reasons           TEXT    NOT NULL DEFAULT '[]',
    ledger            TEXT
);

CREATE INDEX IF NOT EXISTS idx_verdicts_domain_run_at ON validation_verdicts(domain, run_at DESC);
`
