package archiver_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonmartinstorm/repobackupern/internal/archiver"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestArchiver(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Archiver Suite")
}

var _ = Describe("Compress", func() {
	var sessionDir string

	writeFile := func(rel, content string) {
		path := filepath.Join(sessionDir, rel)
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		root := GinkgoT().TempDir()
		sessionDir = filepath.Join(root, "2026-08-29_10-00-00")
		Expect(os.MkdirAll(sessionDir, 0755)).To(Succeed())
	})

	It("pakker hele sesjonskatalogen til én zip ved siden av den", func() {
		writeFile("backup_summary.json", `{"backup_date": "2026-08-29_10-00-00"}`)
		writeFile("repositories/demo/repo_metadata.json", `{"name": "demo"}`)
		writeFile("gists/2021-05-01_abc/notat.md", "# Notat")

		result, err := archiver.Compress(sessionDir)
		Expect(err).To(BeNil())

		zipPath := sessionDir + ".zip"
		Expect(result.ZipFile).To(Equal(zipPath))
		Expect(zipPath).To(BeARegularFile())
		Expect(result.TotalFiles).To(Equal(3))
		Expect(result.FilesProcessed).To(Equal(3))
		Expect(result.FailedFiles).To(Equal(0))
		Expect(result.OriginalSizeBytes).To(BeNumerically(">", 0))
		Expect(result.CompressedSizeBytes).To(BeNumerically(">", 0))

		// Oppføringene skal starte med sesjonskatalogens navn, så en
		// utpakking gjenskaper treet.
		zr, err := zip.OpenReader(zipPath)
		Expect(err).To(BeNil())
		defer func() { _ = zr.Close() }()

		var names []string
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		Expect(names).To(ContainElement("2026-08-29_10-00-00/backup_summary.json"))
		Expect(names).To(ContainElement("2026-08-29_10-00-00/repositories/demo/repo_metadata.json"))
		Expect(names).To(ContainElement("2026-08-29_10-00-00/gists/2021-05-01_abc/notat.md"))
	})

	It("hopper over filer som ikke kan leses og teller dem", func() {
		writeFile("backup_summary.json", `{}`)
		// En død symlenke er den ene fila vi garantert ikke kan åpne.
		Expect(os.Symlink(filepath.Join(sessionDir, "finnes-ikke"),
			filepath.Join(sessionDir, "død-lenke"))).To(Succeed())

		result, err := archiver.Compress(sessionDir)
		Expect(err).To(BeNil())

		Expect(result.TotalFiles).To(Equal(2))
		Expect(result.FilesProcessed).To(Equal(1))
		Expect(result.FailedFiles).To(Equal(1))
	})

	It("gir konsistent ratio for komprimerbart innhold", func() {
		big := make([]byte, 64*1024)
		for i := range big {
			big[i] = 'a'
		}
		writeFile("repositories/demo/stor.txt", string(big))

		result, err := archiver.Compress(sessionDir)
		Expect(err).To(BeNil())
		Expect(result.CompressedSizeBytes).To(BeNumerically("<", result.OriginalSizeBytes))
		Expect(result.CompressionRatioPercent).To(BeNumerically(">", 0))
	})
})
