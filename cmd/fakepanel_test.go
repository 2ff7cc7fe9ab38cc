package cmd

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bnema/stwcert/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	panelUsername = "operator"
	panelPassword = "s3cret"
)

type storedCertificate struct {
	id      string
	validTo time.Time
	cert    string
	key     string
}

// fakePanel is a minimal stand-in for the hosting panel: login, redirect
// form, SSL module and its certificate endpoints.
type fakePanel struct {
	t      *testing.T
	server *httptest.Server

	mu           sync.Mutex
	logins       int
	uploads      int
	certificates map[string]*storedCertificate
}

func newFakePanel(t *testing.T) *fakePanel {
	t.Helper()

	panel := &fakePanel{t: t, certificates: map[string]*storedCertificate{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", panel.handleLoginPage)
	mux.HandleFunc("POST /Account/Login", panel.handleLogin)
	mux.HandleFunc("POST /portal/{$}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html><body><a href="/SSL">SSL certificates</a></body></html>`)
	})
	mux.HandleFunc("GET /portal/SSL", panel.handleModule)
	mux.HandleFunc("GET /portal/SSL/SearchAutocomplete", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		_, _ = fmt.Fprintf(w, "site-%s|guid-%s", q, q)
	})
	mux.HandleFunc("POST /portal/SSL/Search", panel.handleSearch)
	mux.HandleFunc("GET /portal/SSL/GetCertificate", panel.handleDetail)
	mux.HandleFunc("POST /portal/SSL/AddCertificate", panel.handleUpload)
	mux.HandleFunc("POST /portal/SSL/UpdateCertificate", panel.handleUpload)

	panel.server = httptest.NewServer(mux)
	t.Cleanup(panel.server.Close)

	return panel
}

func (f *fakePanel) seed(domainName string, validTo time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.certificates["guid-"+domainName] = &storedCertificate{id: "id-" + domainName, validTo: validTo}
}

func (f *fakePanel) counts() (logins, uploads int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins, f.uploads
}

func (f *fakePanel) handleLoginPage(w http.ResponseWriter, _ *http.Request) {
	_, _ = io.WriteString(w, `<html><body>
<form id="aspnetForm" method="post" action="/Account/Login">
  <input type="text" id="username" name="ctl00$username">
  <input type="password" id="password" name="ctl00$password">
</form></body></html>`)
}

func (f *fakePanel) handleLogin(w http.ResponseWriter, r *http.Request) {
	assert.NoError(f.t, r.ParseForm())

	f.mu.Lock()
	f.logins++
	f.mu.Unlock()

	if r.PostForm.Get("ctl00$username") != panelUsername || r.PostForm.Get("ctl00$password") != panelPassword {
		f.handleLoginPage(w, r)
		return
	}

	_, _ = fmt.Fprintf(w, `<html><body><form method="POST" action="%s/portal/"></form></body></html>`, f.server.URL)
}

func (f *fakePanel) handleModule(w http.ResponseWriter, _ *http.Request) {
	_, _ = io.WriteString(w, `<html><body>
<input type="hidden" name="__RequestVerificationToken" value="tok">
<form id="iHaveCertAddForm" method="post" action="/SSL/AddCertificate" enctype="multipart/form-data">
  <input type="text" id="HaveCertificate_CommonName" name="CommonName">
  <input type="file" id="HaveCertificate_CertificateFile" name="CertificateFile">
  <input type="file" id="HaveCertificate_KeyFile" name="KeyFile">
</form>
<form id="updateForm" method="post" action="/SSL/UpdateCertificate" enctype="multipart/form-data">
  <input type="file" id="add_cert_upload" name="CertificateFile">
  <input type="file" id="add_key_upload" name="KeyFile">
</form>
</body></html>`)
}

func (f *fakePanel) handleSearch(w http.ResponseWriter, r *http.Request) {
	assert.NoError(f.t, r.ParseForm())

	f.mu.Lock()
	cert := f.certificates[r.PostForm.Get("adSearchQuery")]
	f.mu.Unlock()

	rows := [][]string{}
	if cert != nil {
		info := fmt.Sprintf(`{"logicalID":%q}`, cert.id)
		rows = append(rows, []string{"", "", "", "", "", info, "", ""})
	}
	assert.NoError(f.t, json.NewEncoder(w).Encode(map[string]any{"aaData": rows}))
}

func (f *fakePanel) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("adSearchQuery")

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cert := range f.certificates {
		if cert.id == id {
			assert.NoError(f.t, json.NewEncoder(w).Encode(map[string]string{
				"From":        "",
				"To":          cert.validTo.UTC().Format(domain.ValidityLayout),
				"Certificate": cert.cert,
				"Key":         cert.key,
			}))
			return
		}
	}
	http.NotFound(w, r)
}

func (f *fakePanel) handleUpload(w http.ResponseWriter, r *http.Request) {
	assert.NoError(f.t, r.ParseMultipartForm(1<<20))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++

	var target *storedCertificate
	if id := r.FormValue("LogicalID"); id != "" {
		for _, cert := range f.certificates {
			if cert.id == id {
				target = cert
			}
		}
	} else {
		domainName := r.FormValue("CommonName")
		target = &storedCertificate{id: "id-" + domainName}
		f.certificates["guid-"+domainName] = target
	}
	if target == nil {
		http.NotFound(w, r)
		return
	}

	target.cert = formFile(f.t, r, "CertificateFile")
	target.key = formFile(f.t, r, "KeyFile")
	target.validTo = time.Now().AddDate(0, 3, 0)

	_, _ = io.WriteString(w, `<html><body><textarea>{"success":"TRUE"}</textarea></body></html>`)
}

func formFile(t *testing.T, r *http.Request, field string) string {
	file, _, err := r.FormFile(field)
	if !assert.NoError(t, err) {
		return ""
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	assert.NoError(t, err)
	return string(content)
}

// usePanel points the CLI at the fake panel with a credentials file holding
// password.
func usePanel(t *testing.T, panel *fakePanel, home, password string) {
	t.Helper()

	credsFile := filepath.Join(home, "stw.json")
	require.NoError(t, os.WriteFile(credsFile, []byte(fmt.Sprintf(`{"username":%q,"password":%q}`, panelUsername, password)), 0o600))

	t.Setenv("STWCERT_PANEL_URL", panel.server.URL+"/")
	t.Setenv("STWCERT_CREDENTIALS_FILE", credsFile)
	t.Setenv("STWCERT_HTTP_RETRIES", "0")
}

// writeCertificate writes a self-signed certificate and its key for
// domainName into dir.
func writeCertificate(t *testing.T, dir, domainName string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: domainName},
		DNSNames:     []string{domainName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().AddDate(0, 3, 0),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, domainName+".crt")
	keyFile = filepath.Join(dir, domainName+".key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}
