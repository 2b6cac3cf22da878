package gitclone

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// ErrGitMissing betyr at git-binæren ikke finnes på PATH. Det er en
// konfigurasjonsfeil og stopper hele kjøringen før noe er skrevet.
var ErrGitMissing = errors.New("git er ikke installert eller ikke på PATH")

// Cloner kjører den eksterne git-binæren. Én klone om gangen, ingen
// parallellitet.
type Cloner struct {
	GitPath string
	Token   string
}

func NewCloner(token string) (*Cloner, error) {
	path, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGitMissing, err)
	}
	return &Cloner{GitPath: path, Token: token}, nil
}

// CloneAll kloner et repo med full historikk, henter alle tagger og lager
// lokale grener for alle kjente remote-grener. Submoduler hentes ikke.
// Ved feil fjernes den halvferdige katalogen før feilen returneres.
func (c *Cloner) CloneAll(ctx context.Context, cloneURL, dest string, branches []string) error {
	if err := c.run(ctx, "clone", AuthCloneURL(cloneURL, c.Token), dest); err != nil {
		c.removeDest(dest)
		return err
	}

	// Uten alle tagger er klonen ufullstendig, da skal katalogen bort.
	if err := c.run(ctx, "-C", dest, "fetch", "origin", "--tags"); err != nil {
		c.removeDest(dest)
		return err
	}

	for _, branch := range branches {
		// Kan allerede finnes (default branch), da hopper vi bare videre.
		if err := c.run(ctx, "-C", dest, "branch", "--track", branch, "origin/"+branch); err != nil {
			slog.Debug("Lokal gren ikke opprettet", "branch", branch, "error", err)
		}
	}
	return nil
}

func (c *Cloner) removeDest(dest string) {
	if err := os.RemoveAll(dest); err != nil {
		slog.Warn("Klarte ikke å rydde bort halvferdig klone", "dir", dest, "error", err)
	}
}

func (c *Cloner) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, c.GitPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		op := args[0]
		if op == "-C" && len(args) > 2 {
			op = args[2]
		}
		msg := strings.TrimSpace(stderr.String())
		return fmt.Errorf("git %s feilet: %w – %s", op, err, c.scrub(msg))
	}
	return nil
}

// scrub fjerner tokenet fra feilmeldinger; git skriver gjerne hele
// klone-URL-en til stderr.
func (c *Cloner) scrub(s string) string {
	if c.Token == "" {
		return s
	}
	return strings.ReplaceAll(s, c.Token, "***")
}

// AuthCloneURL legger tokenet inn i https-URL-en slik at private repo kan
// klones uten credential helper.
func AuthCloneURL(cloneURL, token string) string {
	if token == "" {
		return cloneURL
	}
	return strings.Replace(cloneURL, "https://", "https://"+token+"@", 1)
}
