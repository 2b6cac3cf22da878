package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jonmartinstorm/repobackupern/internal/models"
)

// BackupRepositories henter alle repo for kontoen, hopper over forks og
// kloner resten ett og ett. Feil på enkeltrepo logges og telles, de stopper
// ikke kjøringen. Feil på selve listingen er fatale.
func BackupRepositories(ctx context.Context, s *Session, f Fetcher, cl Cloner) error {
	slog.Info("🔁 Starter backup av repositories")

	all, err := listAllRepos(ctx, f)
	if err != nil {
		return err
	}

	var originals []models.RepoMeta
	for _, repo := range all {
		if repo.IsFork {
			continue
		}
		originals = append(originals, repo)
	}

	slog.Info("Fant repositories", "totalt", len(all), "uten_forks", len(originals))
	logRepoPlan(originals)

	section := models.SectionSummary{
		Found:     len(originals),
		Directory: s.ReposDir,
	}

	var records []models.RepoRecord
	for i, repo := range originals {
		slog.Info(fmt.Sprintf("[%d/%d] Tar backup av repo", i+1, len(originals)), "repo", repo.Name)

		record, err := backupOneRepo(ctx, s, f, cl, repo)
		if err != nil {
			slog.Error("Backup av repo feilet – fortsetter med neste", "repo", repo.Name, "error", err)
			section.Failed = append(section.Failed, models.ItemError{Name: repo.Name, Error: err.Error()})
			continue
		}

		records = append(records, *record)
		section.BackedUp++
		slog.Info("Repo ferdig", "repo", repo.Name)
	}

	if err := WriteJSON(filepath.Join(s.ReposDir, "repositories_summary.json"), records); err != nil {
		return err
	}

	s.Summary.Repositories = section
	slog.Info("✅ Ferdig med repositories", "backet_opp", section.BackedUp, "feilet", len(section.Failed))
	return nil
}

func listAllRepos(ctx context.Context, f Fetcher) ([]models.RepoMeta, error) {
	var all []models.RepoMeta
	for page := 1; ; page++ {
		repos, err := f.GetReposPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(repos) == 0 {
			return all, nil
		}
		all = append(all, repos...)
	}
}

func backupOneRepo(ctx context.Context, s *Session, f Fetcher, cl Cloner, repo models.RepoMeta) (*models.RepoRecord, error) {
	// Grener, tagger og språk er berikelse av metadata. Mangler de, tar vi
	// backup likevel.
	branches, err := f.GetBranches(ctx, repo.FullName)
	if err != nil {
		slog.Warn("Klarte ikke hente grener", "repo", repo.Name, "error", err)
	}
	tags, err := f.GetTags(ctx, repo.FullName)
	if err != nil {
		slog.Warn("Klarte ikke hente tagger", "repo", repo.Name, "error", err)
	}
	langs, err := f.GetLanguages(ctx, repo.FullName)
	if err != nil {
		slog.Warn("Klarte ikke hente språk", "repo", repo.Name, "error", err)
	}

	dest := filepath.Join(s.ReposDir, repo.Name)
	if err := cl.CloneAll(ctx, repo.CloneUrl, dest, branches); err != nil {
		return nil, err
	}

	record := models.RepoRecord{
		RepoMeta:  repo,
		Branches:  branches,
		Tags:      tags,
		Languages: langs,
	}

	if err := WriteJSON(filepath.Join(dest, "repo_metadata.json"), record); err != nil {
		// Uten metadatafil er katalogen ufullstendig, da skal den bort.
		if rmErr := os.RemoveAll(dest); rmErr != nil {
			slog.Warn("Klarte ikke å rydde bort repo-katalog", "dir", dest, "error", rmErr)
		}
		return nil, err
	}

	return &record, nil
}

func logRepoPlan(repos []models.RepoMeta) {
	if len(repos) == 0 {
		return
	}
	slog.Info("Repositories som skal backes opp:")
	for i, repo := range repos {
		status := "PUBLIC"
		if repo.Private {
			status = "PRIVATE"
		}
		slog.Info(fmt.Sprintf("%3d. %s", i+1, repo.Name),
			"url", repo.HtmlUrl,
			"status", status,
			"beskrivelse", repo.Description)
	}
}
