package runner

import (
	"context"

	"github.com/jonmartinstorm/repobackupern/internal/backup"
)

// Fetcher er backup-kallene pluss brukeroppslaget runneren selv trenger.
type Fetcher interface {
	backup.Fetcher
	GetUser(ctx context.Context) (string, error)
}
