// Package catalog fører en valgfri oversikt over fullførte backupsesjoner i
// Postgres eller BigQuery. Katalogen er tilbehør: feiler skrivingen etter en
// vellykket backup, er backupen på disk fortsatt gyldig.
package catalog

import (
	"context"
	"time"

	"github.com/jonmartinstorm/repobackupern/internal/models"
)

// SessionRecord er én rad per sesjon.
type SessionRecord struct {
	BackupDate          time.Time `bigquery:"backup_date"`
	Username            string    `bigquery:"username"`
	BackupDirectory     string    `bigquery:"backup_directory"`
	ReposFound          int64     `bigquery:"repos_found"`
	ReposBackedUp       int64     `bigquery:"repos_backed_up"`
	GistsFound          int64     `bigquery:"gists_found"`
	GistsBackedUp       int64     `bigquery:"gists_backed_up"`
	OriginalSizeBytes   int64     `bigquery:"original_size_bytes"`
	CompressedSizeBytes int64     `bigquery:"compressed_size_bytes"`
	ZipFile             string    `bigquery:"zip_file"`
}

// Writer er det runneren trenger av en katalogbackend.
type Writer interface {
	RecordSession(ctx context.Context, rec SessionRecord) error
}

// FromSummary oversetter oppsummeringsdokumentet til en katalograd.
func FromSummary(summary models.BackupSummary, when time.Time) SessionRecord {
	rec := SessionRecord{
		BackupDate:      when,
		Username:        summary.Username,
		BackupDirectory: summary.BackupDirectory,
		ReposFound:      int64(summary.Repositories.Found),
		ReposBackedUp:   int64(summary.Repositories.BackedUp),
		GistsFound:      int64(summary.Gists.Found),
		GistsBackedUp:   int64(summary.Gists.BackedUp),
	}
	if summary.Compression != nil {
		rec.OriginalSizeBytes = summary.Compression.OriginalSizeBytes
		rec.CompressedSizeBytes = summary.Compression.CompressedSizeBytes
		rec.ZipFile = summary.Compression.ZipFile
	}
	return rec
}
