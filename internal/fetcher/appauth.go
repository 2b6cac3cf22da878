package fetcher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/jonmartinstorm/repobackupern/internal/config"
)

// NewAppAuthClient lager en http.Client som autentiserer som en GitHub App-
// installasjon, og henter i tillegg et installasjonstoken som git-klonene
// bruker i klone-URL-en. Klienten injiseres i HttpClient så resten av
// fetcheren er uendret.
func NewAppAuthClient(ctx context.Context, cfg config.Config) (*http.Client, string, error) {
	tr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, cfg.AppID, cfg.InstallationID, cfg.AppPrivateKey)
	if err != nil {
		return nil, "", fmt.Errorf("kunne ikke lage app-transport: %w", err)
	}
	tr.BaseURL = BaseURL

	token, err := tr.Token(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("kunne ikke hente installasjonstoken: %w", err)
	}

	return &http.Client{Transport: tr}, token, nil
}
