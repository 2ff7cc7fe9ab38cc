package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/stwcert/internal/ports"
)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

// ChainStore tries primary first and falls back on any error except context
// cancellation.
type ChainStore struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
}

var _ ports.SecretStore = (*ChainStore)(nil)

func NewChainStore(primary ports.SecretStore, fallback ports.SecretStore) (*ChainStore, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &ChainStore{primary: primary, fallback: fallback}, nil
}

func NewPassFirstWithFileFallback(fileRoot string) (*ChainStore, error) {
	return NewChainStore(NewPassStore(), NewFileStore(fileRoot))
}

func (s *ChainStore) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	if fallbackErr := s.fallback.Put(ctx, key, value); fallbackErr != nil {
		return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
	}
	return nil
}

func (s *ChainStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr != nil {
		return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
	}
	return fallbackValue, nil
}

func (s *ChainStore) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	if fallbackErr := s.fallback.Delete(ctx, key); fallbackErr != nil {
		return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
	}
	return nil
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
