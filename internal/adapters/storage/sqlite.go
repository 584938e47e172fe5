package storage

// sqlite.go: una fila en `runs` por ejecución y las series habilitadas
// colgando del run_id. El ledger no se persiste: cada ejecución parte de cero.
//
// Estrategia:
//   - Todo el run se escribe en una única transacción: o está completo o no está.
//   - Prune automático al arrancar: runs > 90d (cascade sobre sus series).

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/dexledger/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    network       TEXT     NOT NULL,
    token         TEXT     NOT NULL,
    pool          TEXT     NOT NULL,
    bar_threshold REAL     NOT NULL,
    trades        INTEGER  NOT NULL DEFAULT 0,
    skipped       INTEGER  NOT NULL DEFAULT 0,
    accounts      INTEGER  NOT NULL DEFAULT 0,
    started_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS dollar_bars (
    run_id   TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq      INTEGER NOT NULL,
    datetime TEXT    NOT NULL,
    open     REAL    NOT NULL,
    high     REAL    NOT NULL,
    low      REAL    NOT NULL,
    close    REAL    NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS volume_bars (
    run_id      TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq         INTEGER NOT NULL,
    datetime    TEXT    NOT NULL,
    volume_buy  REAL    NOT NULL,
    volume_sell REAL    NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS pnl_bars (
    run_id                TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq                   INTEGER NOT NULL,
    datetime              TEXT    NOT NULL,
    internal_realized_pnl REAL    NOT NULL,
    external_realized_pnl REAL    NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS transactions (
    run_id         TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq            INTEGER NOT NULL,
    tx_hash        TEXT    NOT NULL,
    block_number   INTEGER NOT NULL,
    block_time     TEXT    NOT NULL,
    side           TEXT    NOT NULL,
    account        TEXT    NOT NULL,
    account_trades INTEGER NOT NULL,
    account_won    INTEGER NOT NULL,
    account_lost   INTEGER NOT NULL,
    account_open   INTEGER NOT NULL,
    volume_base    REAL    NOT NULL,
    volume_quote   REAL    NOT NULL,
    price          REAL    NOT NULL,
    realized_pnl   REAL    NOT NULL,
    external_pnl   REAL    NOT NULL,
    unrealized_pnl REAL    NOT NULL,
    open_interest  REAL    NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_tx_account   ON transactions(account);
`

const retentionRuns = 90 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada,
// aplica el schema y limpia runs antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste el run y sus series presentes en una transacción.
// Si info.ID está vacío se genera un UUID.
func (s *SQLiteStorage) SaveRun(ctx context.Context, info domain.RunInfo, a domain.Analysis) (string, error) {
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	if info.StartedAt.IsZero() {
		info.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, network, token, pool, bar_threshold, trades, skipped, accounts, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.Network, info.Token, info.Pool, info.BarThreshold,
		info.Trades, info.Skipped, info.Accounts, info.StartedAt.UTC(),
	); err != nil {
		return "", fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	if a.HasDollarBars() {
		if err := insertDollarBars(ctx, tx, info.ID, a.DollarBars); err != nil {
			return "", err
		}
	}
	if a.HasVolumeBars() {
		if err := insertVolumeBars(ctx, tx, info.ID, a.VolumeBars); err != nil {
			return "", err
		}
	}
	if a.HasPnlBars() {
		if err := insertPnlBars(ctx, tx, info.ID, a.PnlBars); err != nil {
			return "", err
		}
	}
	if a.HasTransactions() {
		if err := insertTransactions(ctx, tx, info.ID, a.Transactions); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return info.ID, nil
}

// GetRuns devuelve los runs, más recientes primero.
func (s *SQLiteStorage) GetRuns(ctx context.Context) ([]domain.RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, network, token, pool, bar_threshold, trades, skipped, accounts, started_at
		FROM runs
		ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunInfo
	for rows.Next() {
		var r domain.RunInfo
		if err := rows.Scan(
			&r.ID, &r.Network, &r.Token, &r.Pool, &r.BarThreshold,
			&r.Trades, &r.Skipped, &r.Accounts, &r.StartedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetDollarBars devuelve las dollar bars de un run en orden de emisión.
func (s *SQLiteStorage) GetDollarBars(ctx context.Context, runID string) ([]domain.DollarBar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT datetime, open, high, low, close
		FROM dollar_bars
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetDollarBars: query: %w", err)
	}
	defer rows.Close()

	var bars []domain.DollarBar
	for rows.Next() {
		var b domain.DollarBar
		if err := rows.Scan(&b.Datetime, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, fmt.Errorf("storage.GetDollarBars: scan row: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// CountTransactions devuelve cuántos records anotados tiene un run.
func (s *SQLiteStorage) CountTransactions(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage.CountTransactions: %w", err)
	}
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func insertDollarBars(ctx context.Context, tx *sql.Tx, runID string, bars []domain.DollarBar) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dollar_bars (run_id, seq, datetime, open, high, low, close)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare dollar_bars: %w", err)
	}
	defer stmt.Close()

	for i, b := range bars {
		if _, err := stmt.ExecContext(ctx, runID, i, b.Datetime, b.Open, b.High, b.Low, b.Close); err != nil {
			return fmt.Errorf("storage.SaveRun: insert dollar bar %d: %w", i, err)
		}
	}
	return nil
}

func insertVolumeBars(ctx context.Context, tx *sql.Tx, runID string, bars []domain.VolumeBar) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO volume_bars (run_id, seq, datetime, volume_buy, volume_sell)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare volume_bars: %w", err)
	}
	defer stmt.Close()

	for i, b := range bars {
		if _, err := stmt.ExecContext(ctx, runID, i, b.Datetime, b.VolumeBuy, b.VolumeSell); err != nil {
			return fmt.Errorf("storage.SaveRun: insert volume bar %d: %w", i, err)
		}
	}
	return nil
}

func insertPnlBars(ctx context.Context, tx *sql.Tx, runID string, bars []domain.PnlBar) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pnl_bars (run_id, seq, datetime, internal_realized_pnl, external_realized_pnl)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare pnl_bars: %w", err)
	}
	defer stmt.Close()

	for i, b := range bars {
		if _, err := stmt.ExecContext(ctx, runID, i, b.Datetime, b.InternalRealizedPnL, b.ExternalRealizedPnL); err != nil {
			return fmt.Errorf("storage.SaveRun: insert pnl bar %d: %w", i, err)
		}
	}
	return nil
}

func insertTransactions(ctx context.Context, tx *sql.Tx, runID string, txs []domain.TradeTx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions
			(run_id, seq, tx_hash, block_number, block_time, side, account,
			 account_trades, account_won, account_lost, account_open,
			 volume_base, volume_quote, price, realized_pnl, external_pnl,
			 unrealized_pnl, open_interest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare transactions: %w", err)
	}
	defer stmt.Close()

	for i, t := range txs {
		if _, err := stmt.ExecContext(ctx,
			runID, i, t.TxHash, int64(t.BlockNumber), t.BlockTime, t.Side.String(), t.Account,
			int64(t.AccountTradeCount), int64(t.AccountWon), int64(t.AccountLost), t.AccountOpenPositions,
			t.VolumeBase, t.VolumeQuote, t.Price, t.RealizedPnL, t.ExternalPnL,
			t.UnrealizedPnL, t.OpenInterest,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert transaction %s: %w", t.TxHash, err)
		}
	}
	return nil
}

// pruneOld elimina runs antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
}
