package application

import (
	"context"

	"github.com/bnema/stwcert/internal/domain"
)

type CheckResult struct {
	Domain   string
	Decision domain.RenewalDecision
	Err      error
}

// CheckAll reports the renewal decision for each domain in order. Lookups
// share the Panel session; a failing domain does not stop the rest.
func (r *Renewer) CheckAll(ctx context.Context, domains []string) []CheckResult {
	results := make([]CheckResult, 0, len(domains))
	for _, domainName := range domains {
		decision, err := r.NeedsRenewal(ctx, domainName)
		results = append(results, CheckResult{Domain: domainName, Decision: decision, Err: err})
	}
	return results
}
