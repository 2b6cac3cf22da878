package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jonmartinstorm/repobackupern/internal/models"
)

// BackupGists henter alle gists for brukeren, sortert stigende på
// opprettelsesdato slik at katalogene ligger kronologisk. Samme
// feiltoleranse per gist som for repositories.
func BackupGists(ctx context.Context, s *Session, f Fetcher, login string) error {
	slog.Info("🔁 Starter backup av gists")

	gists, err := listAllGists(ctx, f, login)
	if err != nil {
		return err
	}

	// CreatedAt er RFC3339, så leksikografisk sortering er kronologisk.
	sort.Slice(gists, func(i, j int) bool {
		return gists[i].CreatedAt < gists[j].CreatedAt
	})

	slog.Info("Fant gists", "antall", len(gists))
	logGistPlan(gists)

	section := models.SectionSummary{
		Found:     len(gists),
		Directory: s.GistsDir,
	}

	var records []models.GistMeta
	for i, gist := range gists {
		slog.Info(fmt.Sprintf("[%d/%d] Tar backup av gist", i+1, len(gists)), "gist", gist.ID)

		if err := backupOneGist(ctx, s, f, gist); err != nil {
			slog.Error("Backup av gist feilet – fortsetter med neste", "gist", gist.ID, "error", err)
			section.Failed = append(section.Failed, models.ItemError{Name: gist.ID, Error: err.Error()})
			continue
		}

		records = append(records, gist)
		section.BackedUp++
		slog.Info("Gist ferdig", "gist", gist.ID)
	}

	if err := WriteJSON(filepath.Join(s.GistsDir, "gists_summary.json"), records); err != nil {
		return err
	}

	s.Summary.Gists = section
	slog.Info("✅ Ferdig med gists", "backet_opp", section.BackedUp, "feilet", len(section.Failed))
	return nil
}

func listAllGists(ctx context.Context, f Fetcher, login string) ([]models.GistMeta, error) {
	var all []models.GistMeta
	for page := 1; ; page++ {
		gists, err := f.GetGistsPage(ctx, login, page)
		if err != nil {
			return nil, err
		}
		if len(gists) == 0 {
			return all, nil
		}
		all = append(all, gists...)
	}
}

func backupOneGist(ctx context.Context, s *Session, f Fetcher, gist models.GistMeta) error {
	dir := filepath.Join(s.GistsDir, gist.FolderName())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("kunne ikke opprette katalog %s: %w", dir, err)
	}

	for name, file := range gist.Files {
		content, err := f.DownloadRawFile(ctx, file.RawURL)
		if err != nil {
			cleanupGistDir(dir)
			return fmt.Errorf("nedlasting av %s feilet: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), content, 0644); err != nil {
			cleanupGistDir(dir)
			return fmt.Errorf("kunne ikke skrive fil %s: %w", name, err)
		}
	}

	if err := WriteJSON(filepath.Join(dir, "gist_metadata.json"), gist); err != nil {
		cleanupGistDir(dir)
		return err
	}
	return nil
}

// cleanupGistDir fjerner en halvferdig gist-katalog så oppsummeringen
// stemmer med det som faktisk ligger på disk.
func cleanupGistDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Klarte ikke å rydde bort gist-katalog", "dir", dir, "error", err)
	}
}

func logGistPlan(gists []models.GistMeta) {
	if len(gists) == 0 {
		return
	}
	slog.Info("Gists som skal backes opp:")
	for i, gist := range gists {
		status := "PRIVATE"
		if gist.Public {
			status = "PUBLIC"
		}
		slog.Info(fmt.Sprintf("%3d. %s", i+1, gist.ID),
			"katalog", gist.FolderName(),
			"url", gist.HtmlUrl,
			"status", status,
			"filer", len(gist.Files))
	}
}
