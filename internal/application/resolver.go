package application

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/bnema/stwcert/internal/domain"
)

const siteLookupLimit = 10

// ResolveSite maps a domain to its panel site label and GUID. Answers are
// cached for the lifetime of the Panel; concurrent lookups of the same domain
// share one request.
func (p *Panel) ResolveSite(ctx context.Context, domainName string) (domain.SiteInfo, error) {
	if info, ok := p.cachedSite(domainName); ok {
		return info, nil
	}

	value, err, _ := p.siteFlight.Do(domainName, func() (any, error) {
		if info, ok := p.cachedSite(domainName); ok {
			return info, nil
		}

		info, err := p.lookupSite(ctx, domainName)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.sites[domainName] = info
		p.mu.Unlock()
		return info, nil
	})
	if err != nil {
		return domain.SiteInfo{}, err
	}

	return value.(domain.SiteInfo), nil
}

func (p *Panel) cachedSite(domainName string) (domain.SiteInfo, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	info, ok := p.sites[domainName]
	return info, ok
}

func (p *Panel) lookupSite(ctx context.Context, domainName string) (domain.SiteInfo, error) {
	if err := p.EnsureModuleLoaded(ctx); err != nil {
		return domain.SiteInfo{}, err
	}

	p.logger.Info("looking up site", "domain", domainName)
	lookupURL := joinURL(p.currentModule().url, "SearchAutocomplete") +
		"?q=" + url.QueryEscape(domainName) +
		"&limit=" + strconv.Itoa(siteLookupLimit) +
		"&timestamp=" + strconv.FormatInt(p.clock.Now().Unix(), 10)

	page, err := p.fetch(ctx, "look up site", lookupURL)
	if err != nil {
		return domain.SiteInfo{}, err
	}

	body := strings.TrimSpace(string(page.Body))
	fields := strings.Split(body, "|")
	if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
		return domain.SiteInfo{}, &domain.FormatError{Field: "site lookup response", Value: body}
	}

	info := domain.SiteInfo{
		Domain: domainName,
		Label:  strings.TrimSpace(fields[0]),
		GUID:   strings.TrimSpace(fields[1]),
	}
	p.logger.Info("found site", "domain", domainName, "site", info.Label, "guid", info.GUID)

	return info, nil
}
