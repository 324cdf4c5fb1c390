package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"meeting-transcriber/internal/app/model"
	"meeting-transcriber/internal/app/repository"
)

// Ensure SQLiteDB implements RunDAO
var _ repository.RunDAO = (*SQLiteDB)(nil)

const createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	file_name       TEXT NOT NULL,
	upload_key      TEXT NOT NULL,
	result_key      TEXT NOT NULL,
	size_bytes      INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL,
	elapsed_seconds INTEGER NOT NULL DEFAULT 0,
	transcript      TEXT NOT NULL DEFAULT '',
	error_message   TEXT NOT NULL DEFAULT '',
	started_at      DATETIME NOT NULL,
	finished_at     DATETIME
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`

// ErrRunNotFound is returned by GetRun for unknown IDs.
var ErrRunNotFound = errors.New("run not found")

type SQLiteDB struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at dbFilePath and ensures the schema exists.
func Open(dbFilePath string) (*SQLiteDB, error) {
	if dir := filepath.Dir(dbFilePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_busy_timeout=5000", dbFilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sdb := NewSQLiteDB(db)
	if err := sdb.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return sdb, nil
}

// NewSQLiteDB wraps an existing connection.
func NewSQLiteDB(db *sql.DB) *SQLiteDB {
	return &SQLiteDB{db: db}
}

// Migrate creates the runs table.
func (sdb *SQLiteDB) Migrate(ctx context.Context) error {
	if _, err := sdb.db.ExecContext(ctx, createRunsTableSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (sdb *SQLiteDB) Close() error {
	return sdb.db.Close()
}

func (sdb *SQLiteDB) SaveRun(ctx context.Context, run *model.Run) error {
	upsertSQL := `
		INSERT INTO runs (
			id, file_name, upload_key, result_key, size_bytes, status,
			elapsed_seconds, transcript, error_message, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			elapsed_seconds = excluded.elapsed_seconds,
			transcript = excluded.transcript,
			error_message = excluded.error_message,
			finished_at = excluded.finished_at`

	var finishedAt sql.NullTime
	if !run.FinishedAt.IsZero() {
		finishedAt = sql.NullTime{Time: run.FinishedAt, Valid: true}
	}

	_, err := sdb.db.ExecContext(ctx, upsertSQL,
		run.ID, run.FileName, run.UploadKey, run.ResultKey, run.SizeBytes, string(run.Status),
		run.ElapsedSeconds, run.Transcript, run.ErrorMessage, run.StartedAt, finishedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

const selectRunColumns = `
	SELECT id, file_name, upload_key, result_key, size_bytes, status,
		elapsed_seconds, transcript, error_message, started_at, finished_at
	FROM runs`

func (sdb *SQLiteDB) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := sdb.db.QueryRowContext(ctx, selectRunColumns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db scan failed: %w", err)
	}
	return run, nil
}

func (sdb *SQLiteDB) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	query := selectRunColumns + ` ORDER BY started_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	runs := make([]model.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("db scan failed: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var run model.Run
	var status string
	var finishedAt sql.NullTime
	err := row.Scan(&run.ID, &run.FileName, &run.UploadKey, &run.ResultKey, &run.SizeBytes, &status,
		&run.ElapsedSeconds, &run.Transcript, &run.ErrorMessage, &run.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	run.Status = model.RunStatus(status)
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}
