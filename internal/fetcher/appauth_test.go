package fetcher_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jonmartinstorm/repobackupern/internal/config"
	"github.com/jonmartinstorm/repobackupern/internal/fetcher"
)

var _ = Describe("NewAppAuthClient", func() {
	var (
		originalBaseURL string
		keyFile         string
	)

	BeforeEach(func() {
		originalBaseURL = fetcher.BaseURL

		key, err := rsa.GenerateKey(rand.Reader, 2048)
		Expect(err).To(BeNil())

		keyFile = filepath.Join(GinkgoT().TempDir(), "app.pem")
		pemBytes := pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		})
		Expect(os.WriteFile(keyFile, pemBytes, 0600)).To(Succeed())
	})

	AfterEach(func() {
		fetcher.BaseURL = originalBaseURL
	})

	It("henter et installasjonstoken git-klonene kan bruke", func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/app/installations/67890/access_tokens"))
			w.WriteHeader(http.StatusCreated)
			_, _ = fmt.Fprintf(w, `{"token": "ghs_installasjon", "expires_at": "%s"}`,
				time.Now().Add(time.Hour).UTC().Format(time.RFC3339))
		}))
		DeferCleanup(ts.Close)
		fetcher.BaseURL = ts.URL

		cfg := config.Config{AppID: 12345, InstallationID: 67890, AppPrivateKey: keyFile}
		client, token, err := fetcher.NewAppAuthClient(context.Background(), cfg)
		Expect(err).To(BeNil())
		Expect(client).NotTo(BeNil())
		Expect(token).To(Equal("ghs_installasjon"))
	})

	It("feiler når nøkkelfila ikke finnes", func() {
		cfg := config.Config{AppID: 1, InstallationID: 2, AppPrivateKey: "/finnes/ikke.pem"}
		_, _, err := fetcher.NewAppAuthClient(context.Background(), cfg)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("app-transport"))
	})
})
