package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/stwcert/internal/domain"
	"github.com/bnema/stwcert/internal/ports"
)

var ErrInvalidSiteEntry = errors.New("invalid site entry")

// Service manages local state: the renewal manifest and the stored panel
// password. It never talks to the panel.
type Service struct {
	repo  ports.SiteRepository
	store ports.SecretStore
}

func NewService(repo ports.SiteRepository, store ports.SecretStore) *Service {
	return &Service{
		repo:  repo,
		store: store,
	}
}

func (s *Service) AddSite(ctx context.Context, cmd AddSiteCommand) (domain.SiteEntry, error) {
	entry, err := cmd.Entry()
	if err != nil {
		return domain.SiteEntry{}, err
	}

	if err := s.repo.Save(ctx, entry); err != nil {
		return domain.SiteEntry{}, fmt.Errorf("save site entry: %w", err)
	}

	return entry, nil
}

func (s *Service) RemoveSite(ctx context.Context, domainName string) error {
	domainName = strings.ToLower(strings.TrimSpace(domainName))
	if _, err := s.repo.Get(ctx, domainName); err != nil {
		return fmt.Errorf("get site entry: %w", err)
	}

	if err := s.repo.Delete(ctx, domainName); err != nil {
		return fmt.Errorf("delete site entry: %w", err)
	}

	return nil
}

func (s *Service) ListSites(ctx context.Context) ([]domain.SiteEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list site entries: %w", err)
	}

	return entries, nil
}

// SetPassword stores the panel password and returns the secret key it lives
// under.
func (s *Service) SetPassword(ctx context.Context, cmd SetPasswordCommand) (string, error) {
	username := strings.TrimSpace(cmd.Username)
	if username == "" {
		return "", errors.New("username is required")
	}
	if cmd.Password == "" {
		return "", errors.New("password is required")
	}

	key := domain.PasswordSecretKey(username)
	if err := s.store.Put(ctx, key, cmd.Password); err != nil {
		return "", fmt.Errorf("store panel password: %w", err)
	}

	return key, nil
}

func (s *Service) RemovePassword(ctx context.Context, username string) error {
	key := domain.PasswordSecretKey(strings.TrimSpace(username))
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return fmt.Errorf("delete panel password: %w", err)
	}

	return nil
}
