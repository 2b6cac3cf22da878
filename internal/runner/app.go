package runner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/jonmartinstorm/repobackupern/internal/archiver"
	"github.com/jonmartinstorm/repobackupern/internal/backup"
	"github.com/jonmartinstorm/repobackupern/internal/catalog"
	"github.com/jonmartinstorm/repobackupern/internal/config"
	"github.com/jonmartinstorm/repobackupern/internal/logger"
)

// App kjører hele backupsekvensen: bruker -> repos -> gists -> oppsummering
// -> eventuelt zip -> eventuelt katalog. Alt sekvensielt, ett element om
// gangen.
type App struct {
	Cfg     config.Config
	Fetcher Fetcher
	Cloner  backup.Cloner
	Catalog catalog.Writer // nil betyr ingen katalog

	// Injecter klokka (for testbarhet)
	Now func() time.Time
}

func NewApp(cfg config.Config, f Fetcher, cl backup.Cloner, cat catalog.Writer) *App {
	return &App{
		Cfg:     cfg,
		Fetcher: f,
		Cloner:  cl,
		Catalog: cat,
		Now:     time.Now,
	}
}

// RunSafe kjører Run og logger varighet og minnebruk til slutt.
func (a *App) RunSafe(ctx context.Context) error {
	start := time.Now()

	if err := a.Run(ctx); err != nil {
		slog.Debug("Runner feilet", "error", err)
		return err
	}

	LogMemoryStats()
	slog.Info("✅ Ferdig!", "varighet", time.Since(start).String())
	return nil
}

func (a *App) Run(ctx context.Context) error {
	login, err := a.Fetcher.GetUser(ctx)
	if err != nil {
		return fmt.Errorf("kunne ikke slå opp bruker: %w", err)
	}

	session, err := backup.NewSession(a.Cfg.BackupRoot, a.Now())
	if err != nil {
		return err
	}
	session.Summary.Username = login

	// Fra nå av speiles all logging også til backup.log i sesjonskatalogen.
	closeLog, err := logger.AttachSessionLog(session.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	slog.Info("Tar backup av GitHub-konto", "bruker", login, "katalog", session.Dir)

	if err := backup.BackupRepositories(ctx, session, a.Fetcher, a.Cloner); err != nil {
		return err
	}
	if err := backup.BackupGists(ctx, session, a.Fetcher, login); err != nil {
		return err
	}
	if err := session.WriteSummary(); err != nil {
		return err
	}

	if a.Cfg.Compress {
		result, err := archiver.Compress(session.Dir)
		if err != nil {
			return err
		}
		session.Summary.Compression = result
		if err := session.WriteSummary(); err != nil {
			return err
		}
		slog.Info("Oppdaterte oppsummeringen med komprimeringsstatistikk")
	} else {
		slog.Info("Komprimering er slått av, hopper over zip")
	}

	if a.Catalog != nil {
		rec := catalog.FromSummary(session.Summary, a.Now())
		if err := a.Catalog.RecordSession(ctx, rec); err != nil {
			// Backupen på disk er fullført, så katalogfeil stopper oss ikke.
			slog.Warn("Klarte ikke å skrive sesjonen til katalogen", "error", err)
		} else {
			slog.Info("Sesjonen er registrert i katalogen")
		}
	}

	slog.Info("Backup fullført",
		"repos", session.Summary.Repositories.BackedUp,
		"gists", session.Summary.Gists.BackedUp,
		"katalog", session.Dir)
	return nil
}

func LogMemoryStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	slog.Debug("Minnebruk",
		"alloc", ByteSize(m.Alloc),
		"totalAlloc", ByteSize(m.TotalAlloc),
		"sys", ByteSize(m.Sys),
		"numGC", m.NumGC)
}

func ByteSize(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
