package material

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bnema/stwcert/internal/domain"
	"github.com/bnema/stwcert/internal/ports"
	"software.sslmate.com/src/go-pkcs12"
)

var (
	ErrNoCertificate = errors.New("no certificate PEM block")
	ErrKeyMismatch   = errors.New("private key does not match certificate")
	ErrNameMismatch  = errors.New("certificate does not cover domain")
)

// Loader reads certificate material for manifest entries and checks it
// before anything is uploaded.
type Loader struct {
	// PFXPassword unlocks PKCS#12 bundles.
	PFXPassword string
	// KeyPassword unlocks encrypted PKCS#8 key files.
	KeyPassword string
}

var _ ports.MaterialLoader = (*Loader)(nil)

func NewLoader(pfxPassword, keyPassword string) *Loader {
	return &Loader{PFXPassword: pfxPassword, KeyPassword: keyPassword}
}

// Load returns the material for entry. PEM files are passed through as read,
// except encrypted keys which are decrypted to PKCS#8. PKCS#12 bundles are
// converted to a PEM chain and a PKCS#8 key.
func (l *Loader) Load(ctx context.Context, entry domain.SiteEntry) (domain.Material, error) {
	if err := ctx.Err(); err != nil {
		return domain.Material{}, err
	}

	var (
		material domain.Material
		err      error
	)
	if entry.UsesPFX() {
		material, err = l.loadPFX(entry.PFXFile)
	} else {
		material, err = l.loadPEM(entry.CertFile, entry.KeyFile)
	}
	if err != nil {
		return domain.Material{}, err
	}

	info, err := Inspect(material, "")
	if err != nil {
		return domain.Material{}, fmt.Errorf("%s: %w", entry.Domain, err)
	}
	if !info.Matches(entry.Domain) {
		return domain.Material{}, fmt.Errorf("%s: %w (subject %q)", entry.Domain, ErrNameMismatch, info.Subject)
	}
	return material, nil
}

func (l *Loader) loadPEM(certFile, keyFile string) (domain.Material, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return domain.Material{}, fmt.Errorf("read certificate file: %w", err)
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return domain.Material{}, fmt.Errorf("read key file: %w", err)
	}

	material := domain.Material{Certificate: string(certPEM), Key: string(keyPEM)}

	block, err := firstKeyBlock(keyPEM)
	if err != nil {
		return domain.Material{}, fmt.Errorf("%s: %w", keyFile, err)
	}
	if block.Type == "ENCRYPTED PRIVATE KEY" {
		key, err := parsePrivateKeyBlock(block, l.KeyPassword)
		if err != nil {
			return domain.Material{}, fmt.Errorf("%s: %w", keyFile, err)
		}
		if material.Key, err = encodePKCS8(key); err != nil {
			return domain.Material{}, err
		}
	}

	return material, nil
}

func (l *Loader) loadPFX(path string) (domain.Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Material{}, fmt.Errorf("read pfx file: %w", err)
	}

	key, leaf, chain, err := pkcs12.DecodeChain(data, l.PFXPassword)
	if err != nil {
		return domain.Material{}, fmt.Errorf("decode pfx file %s: %w", path, err)
	}

	keyPEM, err := encodePKCS8(key)
	if err != nil {
		return domain.Material{}, err
	}

	return domain.Material{
		Certificate: encodeCertificates(append([]*x509.Certificate{leaf}, chain...)...),
		Key:         keyPEM,
	}, nil
}

// Info summarizes the leaf certificate of a material.
type Info struct {
	Subject  string
	DNSNames []string
	NotAfter time.Time
}

// Inspect parses the first certificate and the private key of m and checks
// that they belong together.
func Inspect(m domain.Material, keyPassword string) (Info, error) {
	block, _ := pem.Decode([]byte(firstCertificateBlock(m.Certificate)))
	if block == nil {
		return Info{}, ErrNoCertificate
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return Info{}, fmt.Errorf("parse certificate: %w", err)
	}

	keyBlock, err := firstKeyBlock([]byte(m.Key))
	if err != nil {
		return Info{}, err
	}
	key, err := parsePrivateKeyBlock(keyBlock, keyPassword)
	if err != nil {
		return Info{}, err
	}

	if !publicKeysEqual(cert.PublicKey, key.Public()) {
		return Info{}, ErrKeyMismatch
	}

	return Info{
		Subject:  cert.Subject.CommonName,
		DNSNames: cert.DNSNames,
		NotAfter: cert.NotAfter,
	}, nil
}

func firstCertificateBlock(text string) string {
	rest := []byte(text)
	for {
		block, next := pem.Decode(rest)
		if block == nil {
			return ""
		}
		if block.Type == "CERTIFICATE" {
			return string(pem.EncodeToMemory(block))
		}
		rest = next
	}
}

func publicKeysEqual(a, b crypto.PublicKey) bool {
	key, ok := a.(interface{ Equal(crypto.PublicKey) bool })
	return ok && key.Equal(b)
}

// Matches reports whether name is covered by the certificate.
func (i Info) Matches(name string) bool {
	name = strings.ToLower(name)
	for _, dnsName := range i.DNSNames {
		dnsName = strings.ToLower(dnsName)
		if dnsName == name {
			return true
		}
		if suffix, ok := strings.CutPrefix(dnsName, "*."); ok {
			if head, tail, found := strings.Cut(name, "."); found && head != "" && tail == suffix {
				return true
			}
		}
	}
	return strings.EqualFold(i.Subject, name)
}
