package application

import (
	"fmt"
	"strings"

	"github.com/bnema/stwcert/internal/domain"
)

type AddSiteCommand struct {
	Domain   string
	CertFile string
	KeyFile  string
	PFXFile  string
}

func (c AddSiteCommand) Entry() (domain.SiteEntry, error) {
	entry := domain.SiteEntry{
		Domain:   strings.ToLower(strings.TrimSpace(c.Domain)),
		CertFile: strings.TrimSpace(c.CertFile),
		KeyFile:  strings.TrimSpace(c.KeyFile),
		PFXFile:  strings.TrimSpace(c.PFXFile),
	}

	switch {
	case entry.Domain == "":
		return domain.SiteEntry{}, fmt.Errorf("%w: domain is required", ErrInvalidSiteEntry)
	case entry.UsesPFX() && (entry.CertFile != "" || entry.KeyFile != ""):
		return domain.SiteEntry{}, fmt.Errorf("%w: %s: pfx file excludes cert and key files", ErrInvalidSiteEntry, entry.Domain)
	case !entry.UsesPFX() && (entry.CertFile == "" || entry.KeyFile == ""):
		return domain.SiteEntry{}, fmt.Errorf("%w: %s: cert and key files are required", ErrInvalidSiteEntry, entry.Domain)
	}

	return entry, nil
}

type SetPasswordCommand struct {
	Username string
	Password string
}
