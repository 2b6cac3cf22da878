package archiver

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/jonmartinstorm/repobackupern/internal/models"
)

const progressEvery = 50

// Compress pakker en ferdig sesjonskatalog til backup/<tidsstempel>.zip.
// Enkeltfiler som ikke lar seg lese logges og hoppes over; feil på selve
// zip-skrivingen (typisk full disk) er fatale, og den halvferdige arkivfila
// fjernes før feilen returneres.
func Compress(sessionDir string) (*models.CompressionResult, error) {
	slog.Info("🔁 Starter komprimering", "dir", sessionDir)

	files, totalSize, err := collectFiles(sessionDir)
	if err != nil {
		return nil, err
	}
	slog.Info("Analyserte filer for komprimering",
		"antall", len(files),
		"total_størrelse", byteSize(uint64(totalSize)))

	zipPath := filepath.Join(filepath.Dir(sessionDir), filepath.Base(sessionDir)+".zip")
	result, err := writeZip(sessionDir, zipPath, files, totalSize)
	if err != nil {
		if rmErr := os.Remove(zipPath); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("Klarte ikke å fjerne halvferdig zip", "fil", zipPath, "error", rmErr)
		}
		return nil, err
	}

	slog.Info("✅ Komprimering ferdig",
		"fil", zipPath,
		"originalt", byteSize(uint64(result.OriginalSizeBytes)),
		"komprimert", byteSize(uint64(result.CompressedSizeBytes)),
		"ratio_prosent", result.CompressionRatioPercent,
		"feilet", result.FailedFiles)
	return result, nil
}

type fileEntry struct {
	path string
	size int64
}

func collectFiles(dir string) ([]fileEntry, int64, error) {
	var files []fileEntry
	var total int64

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, fileEntry{path: path, size: info.Size()})
		total += info.Size()
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("kunne ikke traversere %s: %w", dir, err)
	}
	return files, total, nil
}

func writeZip(sessionDir, zipPath string, files []fileEntry, totalSize int64) (*models.CompressionResult, error) {
	out, err := os.Create(zipPath)
	if err != nil {
		return nil, fmt.Errorf("kunne ikke opprette arkiv %s: %w", zipPath, err)
	}

	zw := zip.NewWriter(out)
	failed := 0

	// Arkivstiene starter med sesjonskatalogens navn, så en utpakking gir
	// samme tre som på disk.
	base := filepath.Dir(sessionDir)

	for i, f := range files {
		arcname, err := filepath.Rel(base, f.path)
		if err != nil {
			arcname = f.path
		}
		arcname = filepath.ToSlash(arcname)

		logProgress(i+1, len(files), arcname, f.size)

		if err := addFile(zw, f.path, arcname); err != nil {
			// Leser vi ikke fila, hopper vi over den. Skrivefeil i arkivet
			// er fatale.
			var wErr *writerError
			if errors.As(err, &wErr) {
				closeQuietly(zw, out)
				return nil, wErr.err
			}
			slog.Warn("Klarte ikke å komprimere fil – hopper over", "fil", f.path, "error", err)
			failed++
			continue
		}
	}

	if err := zw.Close(); err != nil {
		closeFileQuietly(out)
		return nil, fmt.Errorf("kunne ikke ferdigstille arkivet: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("kunne ikke lukke arkivfila: %w", err)
	}

	info, err := os.Stat(zipPath)
	if err != nil {
		return nil, fmt.Errorf("kunne ikke lese arkivstørrelse: %w", err)
	}

	ratio := 0.0
	if totalSize > 0 {
		ratio = (1 - float64(info.Size())/float64(totalSize)) * 100
	}

	return &models.CompressionResult{
		ZipFile:                 zipPath,
		OriginalSizeBytes:       totalSize,
		CompressedSizeBytes:     info.Size(),
		CompressionRatioPercent: round1(ratio),
		FilesProcessed:          len(files) - failed,
		TotalFiles:              len(files),
		FailedFiles:             failed,
	}, nil
}

// writerError skiller feil i zip-skrivingen fra feil ved lesing av kildefila.
type writerError struct {
	err error
}

func (w *writerError) Error() string { return w.err.Error() }

func addFile(zw *zip.Writer, path, arcname string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer closeFileQuietly(src)

	dst, err := zw.CreateHeader(&zip.FileHeader{
		Name:   arcname,
		Method: zip.Deflate,
	})
	if err != nil {
		return &writerError{err: fmt.Errorf("kunne ikke opprette arkivoppføring %s: %w", arcname, err)}
	}
	if _, err := io.Copy(dst, src); err != nil {
		return &writerError{err: fmt.Errorf("kunne ikke skrive %s til arkivet: %w", arcname, err)}
	}
	return nil
}

// logProgress viser framdrift for store filer, hver femtiende fil og den
// siste, som i den opprinnelige kjøringen.
func logProgress(index, total int, arcname string, size int64) {
	big := size > 1024*1024
	if !big && index%progressEvery != 0 && index != total {
		return
	}

	pct := float64(index) / float64(total) * 100
	args := []any{"prosent", round1(pct), "fil", arcname}
	if big {
		args = append(args, "størrelse", byteSize(uint64(size)))
	}
	slog.Info(fmt.Sprintf("[%4d/%d] Komprimerer", index, total), args...)
}

func byteSize(b uint64) string {
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

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func closeQuietly(zw *zip.Writer, f *os.File) {
	if err := zw.Close(); err != nil {
		slog.Debug("Lukking av zip-writer feilet", "error", err)
	}
	closeFileQuietly(f)
}

func closeFileQuietly(f *os.File) {
	if err := f.Close(); err != nil {
		slog.Debug("Lukking av fil feilet", "error", err)
	}
}
