package backup_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonmartinstorm/repobackupern/internal/backup"
	"github.com/jonmartinstorm/repobackupern/internal/mocks"
	"github.com/jonmartinstorm/repobackupern/internal/models"
	"github.com/stretchr/testify/mock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBackup(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Backup Suite")
}

// mkdirOnClone lar mock-kloneren opprette målkatalogen slik ekte git gjør.
func mkdirOnClone(args mock.Arguments) {
	dest := args.String(2)
	Expect(os.MkdirAll(dest, 0755)).To(Succeed())
}

func countMetadataFiles(dir, name string) int {
	entries, err := os.ReadDir(dir)
	Expect(err).To(BeNil())

	count := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, e.Name(), name)); err == nil {
			count++
		}
	}
	return count
}

var _ = Describe("BackupRepositories", func() {
	var (
		ctx     context.Context
		session *backup.Session
		f       *mocks.MockFetcher
		cl      *mocks.MockCloner
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = &mocks.MockFetcher{}
		cl = &mocks.MockCloner{}

		var err error
		session, err = backup.NewSession(GinkgoT().TempDir(), time.Now())
		Expect(err).To(BeNil())
	})

	stubEnrichment := func() {
		f.On("GetBranches", ctx, mock.Anything).Return([]string{"main"}, nil)
		f.On("GetTags", ctx, mock.Anything).Return([]string{"v1.0.0"}, nil)
		f.On("GetLanguages", ctx, mock.Anything).Return(map[string]int64{"Go": 100}, nil)
	}

	It("tar bare med repos som ikke er forks", func() {
		f.On("GetReposPage", ctx, 1).Return([]models.RepoMeta{
			{Name: "original", FullName: "jon/original", CloneUrl: "https://x/original.git"},
			{Name: "kopi", FullName: "jon/kopi", CloneUrl: "https://x/kopi.git", IsFork: true},
		}, nil)
		f.On("GetReposPage", ctx, 2).Return([]models.RepoMeta{}, nil)
		stubEnrichment()

		cl.On("CloneAll", ctx, "https://x/original.git", mock.Anything, mock.Anything).
			Run(mkdirOnClone).Return(nil)

		Expect(backup.BackupRepositories(ctx, session, f, cl)).To(Succeed())

		Expect(session.Summary.Repositories.Found).To(Equal(1))
		Expect(session.Summary.Repositories.BackedUp).To(Equal(1))
		Expect(filepath.Join(session.ReposDir, "original")).To(BeADirectory())
		Expect(filepath.Join(session.ReposDir, "kopi")).NotTo(BeADirectory())
		cl.AssertNotCalled(GinkgoT(), "CloneAll", ctx, "https://x/kopi.git", mock.Anything, mock.Anything)
	})

	It("fortsetter med neste repo når en klone feiler", func() {
		f.On("GetReposPage", ctx, 1).Return([]models.RepoMeta{
			{Name: "ødelagt", FullName: "jon/ødelagt", CloneUrl: "https://x/odelagt.git"},
			{Name: "fungerer", FullName: "jon/fungerer", CloneUrl: "https://x/fungerer.git"},
		}, nil)
		f.On("GetReposPage", ctx, 2).Return([]models.RepoMeta{}, nil)
		stubEnrichment()

		cl.On("CloneAll", ctx, "https://x/odelagt.git", mock.Anything, mock.Anything).
			Return(errors.New("git clone feilet"))
		cl.On("CloneAll", ctx, "https://x/fungerer.git", mock.Anything, mock.Anything).
			Run(mkdirOnClone).Return(nil)

		Expect(backup.BackupRepositories(ctx, session, f, cl)).To(Succeed())

		Expect(session.Summary.Repositories.BackedUp).To(Equal(1))
		Expect(session.Summary.Repositories.Failed).To(HaveLen(1))
		Expect(session.Summary.Repositories.Failed[0].Name).To(Equal("ødelagt"))
		Expect(filepath.Join(session.ReposDir, "fungerer")).To(BeADirectory())
	})

	It("skriver metadatafil per repo og samlet oppsummering", func() {
		f.On("GetReposPage", ctx, 1).Return([]models.RepoMeta{
			{Name: "demo", FullName: "jon/demo", CloneUrl: "https://x/demo.git"},
		}, nil)
		f.On("GetReposPage", ctx, 2).Return([]models.RepoMeta{}, nil)
		stubEnrichment()

		cl.On("CloneAll", ctx, mock.Anything, mock.Anything, mock.Anything).
			Run(mkdirOnClone).Return(nil)

		Expect(backup.BackupRepositories(ctx, session, f, cl)).To(Succeed())

		Expect(filepath.Join(session.ReposDir, "demo", "repo_metadata.json")).To(BeARegularFile())
		Expect(filepath.Join(session.ReposDir, "repositories_summary.json")).To(BeARegularFile())

		// Oppsummeringstallet skal stemme med det som ligger på disk.
		Expect(countMetadataFiles(session.ReposDir, "repo_metadata.json")).
			To(Equal(session.Summary.Repositories.BackedUp))
	})

	It("avbryter når repolistingen feiler", func() {
		f.On("GetReposPage", ctx, 1).Return(nil, errors.New("API-feil"))

		err := backup.BackupRepositories(ctx, session, f, cl)
		Expect(err).To(MatchError(ContainSubstring("API-feil")))
	})

	It("håndterer en konto uten repos", func() {
		f.On("GetReposPage", ctx, 1).Return([]models.RepoMeta{}, nil)

		Expect(backup.BackupRepositories(ctx, session, f, cl)).To(Succeed())
		Expect(session.Summary.Repositories.Found).To(Equal(0))
		Expect(filepath.Join(session.ReposDir, "repositories_summary.json")).To(BeARegularFile())
	})
})

var _ = Describe("BackupGists", func() {
	var (
		ctx     context.Context
		session *backup.Session
		f       *mocks.MockFetcher
	)

	gist := func(id, created string, files map[string]models.GistFile) models.GistMeta {
		return models.GistMeta{ID: id, CreatedAt: created, Files: files}
	}

	BeforeEach(func() {
		ctx = context.Background()
		f = &mocks.MockFetcher{}

		var err error
		session, err = backup.NewSession(GinkgoT().TempDir(), time.Now())
		Expect(err).To(BeNil())
	})

	It("lager kataloger navngitt <dato>_<id> i kronologisk rekkefølge", func() {
		f.On("GetGistsPage", ctx, "jon", 1).Return([]models.GistMeta{
			gist("nyest", "2023-09-30T12:00:00Z", nil),
			gist("eldst", "2019-01-15T08:00:00Z", nil),
		}, nil)
		f.On("GetGistsPage", ctx, "jon", 2).Return([]models.GistMeta{}, nil)

		Expect(backup.BackupGists(ctx, session, f, "jon")).To(Succeed())

		Expect(filepath.Join(session.GistsDir, "2019-01-15_eldst")).To(BeADirectory())
		Expect(filepath.Join(session.GistsDir, "2023-09-30_nyest")).To(BeADirectory())

		// gists_summary.json skal ligge sortert stigende på opprettelsesdato.
		var records []models.GistMeta
		raw, err := os.ReadFile(filepath.Join(session.GistsDir, "gists_summary.json"))
		Expect(err).To(BeNil())
		Expect(json.Unmarshal(raw, &records)).To(Succeed())
		Expect(records[0].ID).To(Equal("eldst"))
		Expect(records[1].ID).To(Equal("nyest"))
	})

	It("laster ned filinnhold og skriver metadata", func() {
		files := map[string]models.GistFile{
			"notat.md": {Filename: "notat.md", RawURL: "https://gist/raw/notat.md"},
		}
		f.On("GetGistsPage", ctx, "jon", 1).Return([]models.GistMeta{
			gist("abc123", "2021-05-01T10:00:00Z", files),
		}, nil)
		f.On("GetGistsPage", ctx, "jon", 2).Return([]models.GistMeta{}, nil)
		f.On("DownloadRawFile", ctx, "https://gist/raw/notat.md").Return([]byte("# Notat"), nil)

		Expect(backup.BackupGists(ctx, session, f, "jon")).To(Succeed())

		dir := filepath.Join(session.GistsDir, "2021-05-01_abc123")
		content, err := os.ReadFile(filepath.Join(dir, "notat.md"))
		Expect(err).To(BeNil())
		Expect(string(content)).To(Equal("# Notat"))
		Expect(filepath.Join(dir, "gist_metadata.json")).To(BeARegularFile())
	})

	It("rydder bort katalogen og fortsetter når en nedlasting feiler", func() {
		broken := map[string]models.GistFile{
			"borte.txt": {Filename: "borte.txt", RawURL: "https://gist/raw/borte.txt"},
		}
		f.On("GetGistsPage", ctx, "jon", 1).Return([]models.GistMeta{
			gist("feiler", "2020-02-02T00:00:00Z", broken),
			gist("fungerer", "2022-03-03T00:00:00Z", nil),
		}, nil)
		f.On("GetGistsPage", ctx, "jon", 2).Return([]models.GistMeta{}, nil)
		f.On("DownloadRawFile", ctx, "https://gist/raw/borte.txt").
			Return(nil, errors.New("404 fra raw-host"))

		Expect(backup.BackupGists(ctx, session, f, "jon")).To(Succeed())

		Expect(session.Summary.Gists.BackedUp).To(Equal(1))
		Expect(session.Summary.Gists.Failed).To(HaveLen(1))
		Expect(session.Summary.Gists.Failed[0].Name).To(Equal("feiler"))
		Expect(filepath.Join(session.GistsDir, "2020-02-02_feiler")).NotTo(BeADirectory())

		Expect(countMetadataFiles(session.GistsDir, "gist_metadata.json")).
			To(Equal(session.Summary.Gists.BackedUp))
	})
})

var _ = Describe("NewSession", func() {
	It("lager tidsstemplede kataloger som aldri kolliderer mellom kjøringer", func() {
		root := GinkgoT().TempDir()

		s1, err := backup.NewSession(root, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
		Expect(err).To(BeNil())
		s2, err := backup.NewSession(root, time.Date(2026, 8, 29, 10, 0, 1, 0, time.UTC))
		Expect(err).To(BeNil())

		Expect(s1.Dir).NotTo(Equal(s2.Dir))
		Expect(s1.ReposDir).To(BeADirectory())
		Expect(s1.GistsDir).To(BeADirectory())
	})
})
