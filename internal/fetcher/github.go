package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jonmartinstorm/repobackupern/internal/config"
	"github.com/jonmartinstorm/repobackupern/internal/models"
)

// Feiltaksonomien for GitHub-kall. ErrAuth og ErrRateLimit avbryter hele
// kjøringen, enkeltfiler og enkeltrepo håndteres av den som kaller.
var (
	ErrAuth      = errors.New("autentisering mot GitHub feilet")
	ErrRateLimit = errors.New("GitHub rate limit er brukt opp")
	ErrNetwork   = errors.New("nettverksfeil mot GitHub")
)

// Injecter en klient og base-URL (for testbarhet)
var (
	HttpClient = http.DefaultClient
	BaseURL    = "https://api.github.com"
)

const perPage = 100

// Client snakker med GitHub REST API for én konto.
type Client struct {
	Token    string
	Username string // tom betyr autentisert bruker
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		Token:    cfg.Token,
		Username: cfg.Username,
	}
}

// GetUser slår opp brukernavnet vi skal ta backup av. Uten --username er det
// eieren av tokenet.
func (c *Client) GetUser(ctx context.Context) (string, error) {
	url := BaseURL + "/user"
	if c.Username != "" {
		url = fmt.Sprintf("%s/users/%s", BaseURL, c.Username)
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := c.doRequest(ctx, url, &user); err != nil {
		return "", err
	}
	if user.Login == "" {
		return "", fmt.Errorf("tomt brukernavn fra %s", url)
	}
	return user.Login, nil
}

// GetReposPage henter én side av repolisten. Tom side betyr slutten.
// For autentisert bruker brukes /user/repos så private repo kommer med.
func (c *Client) GetReposPage(ctx context.Context, page int) ([]models.RepoMeta, error) {
	url := fmt.Sprintf("%s/user/repos?per_page=%d&page=%d", BaseURL, perPage, page)
	if c.Username != "" {
		url = fmt.Sprintf("%s/users/%s/repos?per_page=%d&page=%d", BaseURL, c.Username, perPage, page)
	}
	slog.Info("Henter repos", "page", page)

	var repos []models.RepoMeta
	if err := c.doRequest(ctx, url, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetGistsPage henter én side av gistlisten. For autentisert bruker brukes
// /gists slik at hemmelige gists også kommer med.
func (c *Client) GetGistsPage(ctx context.Context, login string, page int) ([]models.GistMeta, error) {
	url := fmt.Sprintf("%s/gists?per_page=%d&page=%d", BaseURL, perPage, page)
	if c.Username != "" {
		url = fmt.Sprintf("%s/users/%s/gists?per_page=%d&page=%d", BaseURL, login, perPage, page)
	}
	slog.Info("Henter gists", "page", page)

	var gists []models.GistMeta
	if err := c.doRequest(ctx, url, &gists); err != nil {
		return nil, err
	}
	return gists, nil
}

// GetBranches lister alle grennavn i et repo.
func (c *Client) GetBranches(ctx context.Context, fullName string) ([]string, error) {
	return c.listNames(ctx, fmt.Sprintf("%s/repos/%s/branches", BaseURL, fullName))
}

// GetTags lister alle taggnavn i et repo.
func (c *Client) GetTags(ctx context.Context, fullName string) ([]string, error) {
	return c.listNames(ctx, fmt.Sprintf("%s/repos/%s/tags", BaseURL, fullName))
}

// GetLanguages henter språkfordelingen (språk -> bytes) for et repo.
func (c *Client) GetLanguages(ctx context.Context, fullName string) (map[string]int64, error) {
	langs := map[string]int64{}
	url := fmt.Sprintf("%s/repos/%s/languages", BaseURL, fullName)
	if err := c.doRequest(ctx, url, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// DownloadRawFile henter råinnholdet i en gist-fil via raw_url.
func (c *Client) DownloadRawFile(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if err := evalStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) listNames(ctx context.Context, baseURL string) ([]string, error) {
	var names []string
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s?per_page=%d&page=%d", baseURL, perPage, page)

		var entries []struct {
			Name string `json:"name"`
		}
		if err := c.doRequest(ctx, url, &entries); err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return names, nil
		}
		for _, e := range entries {
			names = append(names, e.Name)
		}
	}
}

func (c *Client) doRequest(ctx context.Context, url string, out interface{}) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	if err := evalStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return resp, nil
}

// evalStatus oversetter HTTP-status til taksonomien vår. 403 med
// X-RateLimit-Remaining: 0 er kvote, ikke manglende tilgang.
func evalStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: status 401", ErrAuth)
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return fmt.Errorf("%w: kvoten nullstilles %s", ErrRateLimit, resetTime(resp))
	default:
		body, _ := io.ReadAll(resp.Body)
		slog.Error("GitHub-feil", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("GitHub API-feil: status %d – %s", resp.StatusCode, string(body))
	}
}

func resetTime(resp *http.Response) string {
	ts, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return "(ukjent tidspunkt)"
	}
	return time.Unix(ts, 0).Format(time.RFC3339)
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		slog.Warn("Klarte ikke å lukke body", "error", err)
	}
}
