package backup

import (
	"context"

	"github.com/jonmartinstorm/repobackupern/internal/models"
)

// Fetcher er GitHub-kallene backupstegene trenger.
type Fetcher interface {
	GetReposPage(ctx context.Context, page int) ([]models.RepoMeta, error)
	GetBranches(ctx context.Context, fullName string) ([]string, error)
	GetTags(ctx context.Context, fullName string) ([]string, error)
	GetLanguages(ctx context.Context, fullName string) (map[string]int64, error)
	GetGistsPage(ctx context.Context, login string, page int) ([]models.GistMeta, error)
	DownloadRawFile(ctx context.Context, url string) ([]byte, error)
}

// Cloner kjører den eksterne git-klonen for ett repo.
type Cloner interface {
	CloneAll(ctx context.Context, cloneURL, dest string, branches []string) error
}
