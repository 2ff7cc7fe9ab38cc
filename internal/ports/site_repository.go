package ports

import (
	"context"

	"github.com/bnema/stwcert/internal/domain"
)

type SiteRepository interface {
	Get(ctx context.Context, domainName string) (domain.SiteEntry, error)
	List(ctx context.Context) ([]domain.SiteEntry, error)
	Save(ctx context.Context, entry domain.SiteEntry) error
	Delete(ctx context.Context, domainName string) error
}
