package ports

import "context"

// SecretStore keeps the panel password out of the config file. Keys look like
// "stwcert/<username>/password".
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
