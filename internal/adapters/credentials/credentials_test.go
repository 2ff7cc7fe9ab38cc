package credentials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/stwcert/internal/domain"
	"github.com/bnema/stwcert/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileProviderReadsJSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "stw.json", `{"username": " operator ", "password": "s3cret"}`)

	creds, err := NewFileProvider(path).Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Credentials{Username: "operator", Password: "s3cret"}, creds)
}

func TestFileProviderReadsTOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "stw.toml", "username = \"operator\"\npassword = \"s3cret\"\n")

	creds, err := NewFileProvider(path).Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "operator", creds.Username)
}

func TestFileProviderErrors(t *testing.T) {
	t.Parallel()

	_, err := NewFileProvider(filepath.Join(t.TempDir(), "missing.json")).Credentials(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "read credentials file")

	incomplete := writeFile(t, "stw.json", `{"username": "operator"}`)
	_, err = NewFileProvider(incomplete).Credentials(context.Background())
	require.ErrorIs(t, err, ErrIncompleteCredentials)

	malformed := writeFile(t, "stw.json", `{"username": `)
	_, err = NewFileProvider(malformed).Credentials(context.Background())
	require.Error(t, err)
}

func TestFileProviderDefaultsPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultFile, NewFileProvider(" ").Path())
}

func TestSecretProviderReadsPasswordFromStore(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockSecretStore(t)
	store.EXPECT().Get(mock.Anything, "stwcert/operator/password").Return("s3cret", nil).Once()

	creds, err := NewSecretProvider("operator", "", store).Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Credentials{Username: "operator", Password: "s3cret"}, creds)
}

func TestSecretProviderUsesExplicitRef(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockSecretStore(t)
	store.EXPECT().Get(mock.Anything, "hosting/panel").Return("s3cret", nil).Once()

	provider := NewSecretProvider("operator", "hosting/panel", store)
	assert.Equal(t, "hosting/panel", provider.Key())

	_, err := provider.Credentials(context.Background())
	require.NoError(t, err)
}

func TestSecretProviderErrors(t *testing.T) {
	t.Parallel()

	_, err := NewSecretProvider("", "", mocks.NewMockSecretStore(t)).Credentials(context.Background())
	require.ErrorIs(t, err, ErrMissingUsername)

	store := mocks.NewMockSecretStore(t)
	store.EXPECT().Get(mock.Anything, "stwcert/operator/password").Return("", domain.ErrSecretNotFound).Once()
	_, err = NewSecretProvider("operator", "", store).Credentials(context.Background())
	require.ErrorIs(t, err, domain.ErrSecretNotFound)

	empty := mocks.NewMockSecretStore(t)
	empty.EXPECT().Get(mock.Anything, "stwcert/operator/password").Return("", nil).Once()
	_, err = NewSecretProvider("operator", "", empty).Credentials(context.Background())
	require.ErrorIs(t, err, domain.ErrSecretNotFound)

	broken := mocks.NewMockSecretStore(t)
	storeErr := errors.New("gpg failed")
	broken.EXPECT().Get(mock.Anything, "stwcert/operator/password").Return("", storeErr).Once()
	_, err = NewSecretProvider("operator", "", broken).Credentials(context.Background())
	require.ErrorIs(t, err, storeErr)
}
