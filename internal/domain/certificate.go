package domain

import (
	"strings"
	"time"
)

// ValidityLayout is the panel's textual timestamp format, e.g. "Jan 02 15:04:05 2025 UTC".
const ValidityLayout = "Jan 02 15:04:05 2006 MST"

const DefaultRenewalThreshold = 7 * 24 * time.Hour

type CertificateRecord struct {
	LogicalID      string
	ValidFrom      time.Time
	ValidTo        time.Time
	CertificatePEM string
	KeyPEM         string
}

type RenewalDecision struct {
	NeedsUpdate bool
	// CurrentExpiry is nil when the panel holds no certificate for the domain.
	CurrentExpiry *time.Time
	LogicalID     string
}

func (d RenewalDecision) HasCertificate() bool {
	return d.LogicalID != ""
}

// Material is the certificate and private key text submitted to the panel.
type Material struct {
	Certificate string
	Key         string
}

type UploadAction string

const (
	ActionSkipped    UploadAction = "skipped"
	ActionRegistered UploadAction = "registered"
	ActionUpdated    UploadAction = "updated"
)

type UploadOutcome struct {
	Domain    string
	Action    UploadAction
	Decision  RenewalDecision
	LogicalID string
}

func ParseValidity(raw string) (time.Time, error) {
	parsed, err := time.Parse(ValidityLayout, raw)
	if err != nil {
		return time.Time{}, &FormatError{Field: "validity timestamp", Value: raw, Err: err}
	}
	return parsed, nil
}

// DecideRenewal reports whether a certificate valid until validTo is due,
// i.e. expires at or before now+threshold.
func DecideRenewal(validTo, now time.Time, threshold time.Duration) bool {
	return !validTo.After(now.Add(threshold))
}

// Normalize converts CRLF line endings to LF and trims surrounding whitespace.
func Normalize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}
