package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bnema/stwcert/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, sitesPath string) *Repository {
	t.Helper()

	config := viper.New()
	config.Set("sites.path", sitesPath)

	repo, err := NewRepository(config)
	require.NoError(t, err)
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "sites.toml"))

	pem := domain.SiteEntry{Domain: "www.example.nl", CertFile: "/etc/ssl/example.crt", KeyFile: "/etc/ssl/example.key"}
	pfx := domain.SiteEntry{Domain: "shop.example.nl", PFXFile: "/etc/ssl/shop.pfx"}

	require.NoError(t, repo.Save(context.Background(), pem))
	require.NoError(t, repo.Save(context.Background(), pfx))

	got, err := repo.Get(context.Background(), pem.Domain)
	require.NoError(t, err)
	assert.Equal(t, pem, got)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.SiteEntry{pfx, pem}, entries)
}

func TestRepositorySaveReplacesExistingDomain(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "sites.toml"))

	require.NoError(t, repo.Save(context.Background(), domain.SiteEntry{Domain: "example.nl", CertFile: "old.crt", KeyFile: "old.key"}))
	require.NoError(t, repo.Save(context.Background(), domain.SiteEntry{Domain: "example.nl", CertFile: "new.crt", KeyFile: "new.key"}))

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new.crt", entries[0].CertFile)
}

func TestRepositoryDelete(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "sites.toml"))
	require.NoError(t, repo.Save(context.Background(), domain.SiteEntry{Domain: "a.example", PFXFile: "a.pfx"}))
	require.NoError(t, repo.Save(context.Background(), domain.SiteEntry{Domain: "b.example", PFXFile: "b.pfx"}))

	require.NoError(t, repo.Delete(context.Background(), "a.example"))

	_, err := repo.Get(context.Background(), "a.example")
	require.ErrorIs(t, err, domain.ErrSiteNotFound)

	err = repo.Delete(context.Background(), "a.example")
	require.ErrorIs(t, err, domain.ErrSiteNotFound)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.example", entries[0].Domain)
}

func TestRepositorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), domain.SiteEntry{Domain: "example.nl", PFXFile: "example.pfx"}))

	sitesPath := filepath.Join(homeDir, ".stwcert", "sites.toml")
	assert.Equal(t, sitesPath, repo.Path())
	info, err := os.Stat(sitesPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepositoryMissingFileBehaviors(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "missing", "sites.toml"))

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = repo.Get(context.Background(), "example.nl")
	require.ErrorIs(t, err, domain.ErrSiteNotFound)
}

func TestRepositoryListMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	sitesPath := filepath.Join(t.TempDir(), "sites.toml")
	require.NoError(t, os.WriteFile(sitesPath, []byte("sites = ["), 0o600))

	repo := newTestRepository(t, sitesPath)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode sites file")
}

func TestRepositorySaveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "sites.toml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, domain.SiteEntry{Domain: "example.nl"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRepositoryConcurrentSavesAcrossInstancesPreserveAllSites(t *testing.T) {
	t.Parallel()

	sitesPath := filepath.Join(t.TempDir(), "sites.toml")
	repoA := newTestRepository(t, sitesPath)
	repoB := newTestRepository(t, sitesPath)

	const perRepoWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRepoWrites*2)
	var wg sync.WaitGroup
	wg.Add(2)

	for prefix, repo := range map[string]*Repository{"a": repoA, "b": repoB} {
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < perRepoWrites; i++ {
				errCh <- repo.Save(context.Background(), domain.SiteEntry{Domain: prefix + strconv.Itoa(i) + ".example", PFXFile: "x.pfx"})
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	entries, err := repoA.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, perRepoWrites*2)
}

func TestRepositorySaveSerializedTOMLIncludesVersion(t *testing.T) {
	t.Parallel()

	sitesPath := filepath.Join(t.TempDir(), "sites.toml")
	repo := newTestRepository(t, sitesPath)

	require.NoError(t, repo.Save(context.Background(), domain.SiteEntry{Domain: "example.nl", CertFile: "a.crt", KeyFile: "a.key"}))

	data, err := os.ReadFile(sitesPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "cert_file = ")
	assert.NotContains(t, string(data), "pfx_file")
}

func TestRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	sitesPath := filepath.Join(t.TempDir(), "sites.toml")
	require.NoError(t, os.WriteFile(sitesPath, []byte(strings.Join([]string{
		"version = 999",
		"",
		"sites = []",
		"",
	}, "\n")), 0o600))

	repo := newTestRepository(t, sitesPath)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported sites schema version")
}
