package ports

import (
	"context"

	"github.com/bnema/stwcert/internal/domain"
)

// CredentialsProvider supplies the panel login. It is consulted once per session.
type CredentialsProvider interface {
	Credentials(ctx context.Context) (domain.Credentials, error)
}

type MaterialLoader interface {
	Load(ctx context.Context, entry domain.SiteEntry) (domain.Material, error)
}
