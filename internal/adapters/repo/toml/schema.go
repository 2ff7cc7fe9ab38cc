package toml

import (
	"fmt"

	"github.com/bnema/stwcert/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int          `toml:"version"`
	Sites   []siteSchema `toml:"sites"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported sites schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type siteSchema struct {
	Domain   string `toml:"domain"`
	CertFile string `toml:"cert_file,omitempty"`
	KeyFile  string `toml:"key_file,omitempty"`
	PFXFile  string `toml:"pfx_file,omitempty"`
}

func toSchema(entry domain.SiteEntry) siteSchema {
	return siteSchema{
		Domain:   entry.Domain,
		CertFile: entry.CertFile,
		KeyFile:  entry.KeyFile,
		PFXFile:  entry.PFXFile,
	}
}

func fromSchema(site siteSchema) domain.SiteEntry {
	return domain.SiteEntry{
		Domain:   site.Domain,
		CertFile: site.CertFile,
		KeyFile:  site.KeyFile,
		PFXFile:  site.PFXFile,
	}
}
