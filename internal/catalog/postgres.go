package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS backup_sessions (
	backup_date           TIMESTAMPTZ NOT NULL,
	username              TEXT        NOT NULL,
	backup_directory      TEXT        NOT NULL,
	repos_found           BIGINT      NOT NULL,
	repos_backed_up       BIGINT      NOT NULL,
	gists_found           BIGINT      NOT NULL,
	gists_backed_up       BIGINT      NOT NULL,
	original_size_bytes   BIGINT      NOT NULL,
	compressed_size_bytes BIGINT      NOT NULL,
	zip_file              TEXT        NOT NULL
)`

const insertSession = `
INSERT INTO backup_sessions (
	backup_date, username, backup_directory,
	repos_found, repos_backed_up, gists_found, gists_backed_up,
	original_size_bytes, compressed_size_bytes, zip_file
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

type PostgresWriter struct {
	DB *sql.DB
}

// NewPostgresWriter åpner forbindelsen og sørger for at sesjonstabellen
// finnes. Én forbindelse holder, vi skriver én rad per kjøring.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Kunne ikke åpne PostgreSQL-database", "error", err)
		return nil, fmt.Errorf("kunne ikke åpne PostgreSQL-database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	w := &PostgresWriter{DB: db}
	if err := w.ensureTable(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			slog.Warn("Klarte ikke å lukke databasen", "error", cerr)
		}
		return nil, err
	}
	return w, nil
}

func (p *PostgresWriter) ensureTable(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("kunne ikke sikre tabellen backup_sessions: %w", err)
	}
	return nil
}

func (p *PostgresWriter) RecordSession(ctx context.Context, rec SessionRecord) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start tx: %w", err)
	}

	_, err = tx.ExecContext(ctx, insertSession,
		rec.BackupDate,
		rec.Username,
		rec.BackupDirectory,
		rec.ReposFound,
		rec.ReposBackedUp,
		rec.GistsFound,
		rec.GistsBackedUp,
		rec.OriginalSizeBytes,
		rec.CompressedSizeBytes,
		rec.ZipFile,
	)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("insert feilet: %v (rollback feilet: %w)", err, rbErr)
		}
		return fmt.Errorf("insert feilet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("Commit-feil for katalograd", "error", err)
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

func (p *PostgresWriter) Close() error {
	return p.DB.Close()
}
