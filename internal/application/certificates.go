package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/bnema/stwcert/internal/domain"
)

type gridResponse struct {
	AAData *[][]json.RawMessage `json:"aaData"`
	Rows   *[][]json.RawMessage `json:"rows"`
}

func (r gridResponse) entries() ([][]json.RawMessage, bool) {
	switch {
	case r.AAData != nil:
		return *r.AAData, true
	case r.Rows != nil:
		return *r.Rows, true
	default:
		return nil, false
	}
}

type certificateInfo struct {
	LogicalID string `json:"logicalID"`
}

type certificatePayload struct {
	From        string `json:"From"`
	To          string `json:"To"`
	Certificate string `json:"Certificate"`
	Key         string `json:"Key"`
}

// FindCertificateID searches the certificate table for the domain's site and
// returns the logical id of the first row. The boolean is false when the site
// has no certificate yet.
func (p *Panel) FindCertificateID(ctx context.Context, domainName string) (string, bool, error) {
	site, err := p.ResolveSite(ctx, domainName)
	if err != nil {
		return "", false, err
	}

	module := p.currentModule()
	query := gridQuery(site)
	token, hasToken := module.document.Attr(requestTokenSelector, "value")
	if hasToken {
		query.Set(requestTokenField, token)
	}

	p.logger.Info("looking up certificate", "domain", domainName)
	searchURL := joinURL(module.url, "Search")
	page, err := p.browser.PostForm(ctx, searchURL, query)
	if _, err := checkPage("search certificates", searchURL, page, err); err != nil {
		return "", false, err
	}

	var response gridResponse
	if err := json.Unmarshal(page.Body, &response); err != nil {
		if !hasToken {
			return "", false, &domain.StructureError{Page: "certificate module", Element: requestTokenField}
		}
		return "", false, &domain.FormatError{Field: "certificate search response", Value: snippet(page.Body), Err: err}
	}

	rows, ok := response.entries()
	if !ok {
		return "", false, &domain.FormatError{Field: "certificate search response", Value: snippet(page.Body)}
	}
	if len(rows) == 0 {
		p.logger.Info("no certificates found", "domain", domainName)
		return "", false, nil
	}

	if len(rows[0]) <= certificateInfoCell {
		return "", false, &domain.StructureError{Page: "certificate search response", Element: fmt.Sprintf("row 0 cell %d", certificateInfoCell)}
	}

	info, err := decodeCertificateInfo(rows[0][certificateInfoCell])
	if err != nil {
		return "", false, err
	}
	if info.LogicalID == "" {
		return "", false, &domain.StructureError{Page: "certificate search response", Element: "logicalID"}
	}

	p.logger.Info("found certificate", "domain", domainName, "logical_id", info.LogicalID)
	return info.LogicalID, true, nil
}

// decodeCertificateInfo accepts the cell either as a JSON string holding an
// object or as the object itself.
func decodeCertificateInfo(cell json.RawMessage) (certificateInfo, error) {
	raw := bytes.TrimSpace(cell)
	if len(raw) > 0 && raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return certificateInfo{}, &domain.FormatError{Field: "certificate info cell", Value: snippet(raw), Err: err}
		}
		raw = []byte(encoded)
	}

	var info certificateInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return certificateInfo{}, &domain.FormatError{Field: "certificate info cell", Value: snippet(raw), Err: err}
	}
	return info, nil
}

// GetCertificate fetches the validity window and PEM material stored for a
// logical id.
func (p *Panel) GetCertificate(ctx context.Context, logicalID string) (domain.CertificateRecord, error) {
	if err := p.EnsureModuleLoaded(ctx); err != nil {
		return domain.CertificateRecord{}, err
	}

	p.logger.Debug("fetching certificate", "logical_id", logicalID)
	certificateURL := joinURL(p.currentModule().url, "GetCertificate") + "?adSearchQuery=" + url.QueryEscape(logicalID)
	page, err := p.fetch(ctx, "fetch certificate", certificateURL)
	if err != nil {
		return domain.CertificateRecord{}, err
	}

	var payload certificatePayload
	if err := json.Unmarshal(page.Body, &payload); err != nil {
		return domain.CertificateRecord{}, &domain.FormatError{Field: "certificate detail response", Value: snippet(page.Body), Err: err}
	}

	validTo, err := domain.ParseValidity(payload.To)
	if err != nil {
		return domain.CertificateRecord{}, err
	}

	record := domain.CertificateRecord{
		LogicalID:      logicalID,
		ValidTo:        validTo,
		CertificatePEM: payload.Certificate,
		KeyPEM:         payload.Key,
	}
	if strings.TrimSpace(payload.From) != "" {
		validFrom, err := domain.ParseValidity(payload.From)
		if err != nil {
			return domain.CertificateRecord{}, err
		}
		record.ValidFrom = validFrom
	}

	return record, nil
}

func snippet(body []byte) string {
	const limit = 120
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
