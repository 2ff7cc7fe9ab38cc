package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/stwcert/internal/domain"
	"github.com/bnema/stwcert/internal/ports"
)

var ErrMissingUsername = errors.New("panel username is not configured")

// SecretProvider combines a configured username with a password kept in a
// secret store.
type SecretProvider struct {
	username string
	ref      string
	store    ports.SecretStore
}

var _ ports.CredentialsProvider = (*SecretProvider)(nil)

// NewSecretProvider reads the password from ref, or from the default key of
// username when ref is empty.
func NewSecretProvider(username, ref string, store ports.SecretStore) *SecretProvider {
	return &SecretProvider{
		username: strings.TrimSpace(username),
		ref:      strings.TrimSpace(ref),
		store:    store,
	}
}

func (p *SecretProvider) Key() string {
	if p.ref != "" {
		return p.ref
	}
	return domain.PasswordSecretKey(p.username)
}

func (p *SecretProvider) Credentials(ctx context.Context) (domain.Credentials, error) {
	if p.username == "" {
		return domain.Credentials{}, ErrMissingUsername
	}

	password, err := p.store.Get(ctx, p.Key())
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("read panel password for %s: %w", p.username, err)
	}
	if password == "" {
		return domain.Credentials{}, fmt.Errorf("read panel password for %s: %w", p.username, domain.ErrSecretNotFound)
	}

	return domain.Credentials{Username: p.username, Password: password}, nil
}
