package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var ProgramLevel = new(slog.LevelVar)

// SetupLogger initialiserer loggeren med tekstformat til stdout. Tekst og
// ikke JSON: backup.log skal kunne leses rett fram, og konsollen speiler fila.
func SetupLogger(debug bool) {
	ProgramLevel.Set(slog.LevelInfo)
	if debug {
		ProgramLevel.Set(slog.LevelDebug)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     ProgramLevel,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

// AttachSessionLog legger backup.log i sesjonskatalogen inn som ekstra mål
// for all logging. Returnerer en lukkefunksjon for fila.
func AttachSessionLog(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("kunne ikke åpne loggfil %s: %w", path, err)
	}

	logger := slog.New(slog.NewTextHandler(io.MultiWriter(os.Stdout, f), &slog.HandlerOptions{
		Level:     ProgramLevel,
		AddSource: false,
	}))
	slog.SetDefault(logger)

	return func() {
		// Tilbake til ren stdout før fila lukkes, ellers skriver
		// standardloggeren videre til en lukket fildescriptor.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     ProgramLevel,
			AddSource: false,
		})))
		if err := f.Close(); err != nil {
			slog.Warn("Klarte ikke å lukke loggfila", "error", err)
		}
	}, nil
}
