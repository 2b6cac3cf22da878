package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type StorageType string

const (
	StorageNone     StorageType = ""
	StoragePostgres StorageType = "postgres"
	StorageBigQuery StorageType = "bigquery"
)

// TokenFile er fila vi leter etter token i når --token ikke er angitt.
const TokenFile = ".token"

// ErrNoToken betyr at vi hverken fikk token via flagg, .token-fil eller app-auth.
var ErrNoToken = errors.New("mangler token: angi --token, legg token i .token-fila, eller konfigurer GitHub App-auth")

// Injecter filleser (for testbarhet)
var ReadFile = os.ReadFile

// Flags er verdiene fra kommandolinja.
type Flags struct {
	Token    string
	Username string
	NoZip    bool
}

type Config struct {
	Token    string
	Username string // tom betyr autentisert bruker
	Compress bool
	Debug    bool

	// Rotkatalogen alle sesjoner havner under.
	BackupRoot string

	// GitHub App-auth, alternativ til PAT.
	AppID          int64
	InstallationID int64
	AppPrivateKey  string

	// Valgfri katalog over fullførte sesjoner.
	Catalog       StorageType
	PostgresDSN   string
	BQProjectID   string
	BQDataset     string
	BQTable       string
	BQCredentials string // Valgfritt hvis GCP auth skjer automatisk
}

// LoadConfig bygger konfigurasjonen fra flagg og miljø. Token-rekkefølgen er
// flagg først, deretter .token-fila. getenv injiseres for testbarhet.
func LoadConfig(flags Flags, getenv func(string) string) (Config, error) {
	cfg := Config{
		Token:         strings.TrimSpace(flags.Token),
		Username:      flags.Username,
		Compress:      !flags.NoZip,
		Debug:         getenv("REPOBACKUPERN_DEBUG") == "true",
		BackupRoot:    "backup",
		AppPrivateKey: getenv("GITHUB_APP_PRIVATE_KEY"),
		Catalog:       StorageType(getenv("CATALOG_STORAGE")),
		PostgresDSN:   getenv("POSTGRES_DSN"),
		BQProjectID:   getenv("BQ_PROJECT_ID"),
		BQDataset:     getenv("BQ_DATASET"),
		BQTable:       getenv("BQ_TABLE"),
		BQCredentials: getenv("BQ_CREDENTIALS"),
	}

	if root := getenv("REPOBACKUPERN_ROOT"); root != "" {
		cfg.BackupRoot = root
	}

	var err error
	if cfg.AppID, err = parseID(getenv("GITHUB_APP_ID")); err != nil {
		return Config{}, fmt.Errorf("GITHUB_APP_ID: %w", err)
	}
	if cfg.InstallationID, err = parseID(getenv("GITHUB_APP_INSTALLATION_ID")); err != nil {
		return Config{}, fmt.Errorf("GITHUB_APP_INSTALLATION_ID: %w", err)
	}

	if cfg.Token == "" {
		raw, rerr := ReadFile(TokenFile)
		if rerr == nil {
			cfg.Token = strings.TrimSpace(string(raw))
		}
	}

	return cfg, ValidateConfig(cfg)
}

// ValidateConfig sjekker at vi har nok til å kjøre. Skilt ut fra LoadConfig
// slik at testene kan validere håndbygde konfigurasjoner.
func ValidateConfig(cfg Config) error {
	if cfg.Token == "" && !cfg.UsesAppAuth() {
		return ErrNoToken
	}
	if (cfg.AppID != 0 || cfg.InstallationID != 0 || cfg.AppPrivateKey != "") && !cfg.UsesAppAuth() {
		return errors.New("GitHub App-auth krever GITHUB_APP_ID, GITHUB_APP_INSTALLATION_ID og GITHUB_APP_PRIVATE_KEY samlet")
	}

	switch cfg.Catalog {
	case StorageNone:
		// ingen katalog, helt greit
	case StoragePostgres:
		if cfg.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN må være satt for postgres-katalog")
		}
	case StorageBigQuery:
		if cfg.BQProjectID == "" || cfg.BQDataset == "" || cfg.BQTable == "" {
			return errors.New("BQ_PROJECT_ID, BQ_DATASET og BQ_TABLE må være satt for bigquery-katalog")
		}
	default:
		return errors.New("ugyldig verdi for CATALOG_STORAGE – må være 'postgres' eller 'bigquery'")
	}

	return nil
}

// UsesAppAuth sier om fetcheren skal bruke ghinstallation-transport i stedet
// for PAT.
func (c Config) UsesAppAuth() bool {
	return c.AppID != 0 && c.InstallationID != 0 && c.AppPrivateKey != ""
}

func parseID(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("må være et positivt heltall")
	}
	return id, nil
}
