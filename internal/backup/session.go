package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonmartinstorm/repobackupern/internal/models"
)

// DateFormat gir sekundoppløsning så gjentatte kjøringer aldri treffer
// samme katalog.
const DateFormat = "2006-01-02_15-04-05"

// Session er én komplett backupkjøring: en tidsstemplet katalog med ett
// repo-tre, ett gist-tre, logg og oppsummering.
type Session struct {
	Date     string
	Dir      string
	ReposDir string
	GistsDir string
	LogFile  string

	Summary models.BackupSummary
}

// NewSession oppretter katalogstrukturen backup/<tidsstempel>/{repositories,gists}.
func NewSession(root string, now time.Time) (*Session, error) {
	date := now.Format(DateFormat)
	dir := filepath.Join(root, date)

	s := &Session{
		Date:     date,
		Dir:      dir,
		ReposDir: filepath.Join(dir, "repositories"),
		GistsDir: filepath.Join(dir, "gists"),
		LogFile:  filepath.Join(dir, "backup.log"),
	}

	for _, d := range []string{s.Dir, s.ReposDir, s.GistsDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("kunne ikke opprette katalog %s: %w", d, err)
		}
	}

	s.Summary = models.BackupSummary{
		BackupDate:      date,
		BackupDirectory: dir,
		LogFile:         s.LogFile,
	}
	return s, nil
}

// WriteSummary skriver backup_summary.json. Kalles på nytt etter
// komprimering for å få med statistikken.
func (s *Session) WriteSummary() error {
	return WriteJSON(filepath.Join(s.Dir, "backup_summary.json"), s.Summary)
}

// WriteJSON lagrer v som innrykket JSON, samme form for alle
// metadatafilene.
func WriteJSON(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("kunne ikke serialisere til JSON: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("kunne ikke skrive til fil %s: %w", path, err)
	}
	return nil
}
