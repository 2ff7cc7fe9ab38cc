package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/stwcert/internal/domain"
	"github.com/bnema/stwcert/internal/ports"
)

const (
	addFormSelector        = "form#iHaveCertAddForm"
	addCommonNameSelector  = "#HaveCertificate_CommonName"
	addCertificateSelector = "#HaveCertificate_CertificateFile"
	addKeySelector         = "#HaveCertificate_KeyFile"

	updateFormSelector        = "form#updateForm"
	updateCertificateSelector = "#add_cert_upload"
	updateKeySelector         = "#add_key_upload"
	logicalIDField            = "LogicalID"
)

// Renewer decides whether a domain's certificate is due and replaces it,
// verifying the result against what the panel stores afterwards.
type Renewer struct {
	panel     *Panel
	loader    ports.MaterialLoader
	threshold time.Duration
	force     bool
}

type RenewerConfig struct {
	Threshold time.Duration
	// Force uploads even when the current certificate is not due.
	Force bool
}

func NewRenewer(panel *Panel, loader ports.MaterialLoader, cfg RenewerConfig) *Renewer {
	if cfg.Threshold <= 0 {
		cfg.Threshold = domain.DefaultRenewalThreshold
	}

	return &Renewer{
		panel:     panel,
		loader:    loader,
		threshold: cfg.Threshold,
		force:     cfg.Force,
	}
}

func (r *Renewer) NeedsRenewal(ctx context.Context, domainName string) (domain.RenewalDecision, error) {
	logicalID, found, err := r.panel.FindCertificateID(ctx, domainName)
	if err != nil {
		return domain.RenewalDecision{}, err
	}
	if !found {
		return domain.RenewalDecision{NeedsUpdate: true}, nil
	}

	record, err := r.panel.GetCertificate(ctx, logicalID)
	if err != nil {
		return domain.RenewalDecision{}, err
	}

	expiry := record.ValidTo
	return domain.RenewalDecision{
		NeedsUpdate:   domain.DecideRenewal(expiry, r.panel.clock.Now(), r.threshold),
		CurrentExpiry: &expiry,
		LogicalID:     logicalID,
	}, nil
}

func (r *Renewer) UploadCertificate(ctx context.Context, domainName string, material domain.Material) (domain.UploadOutcome, error) {
	outcome := domain.UploadOutcome{Domain: domainName}

	decision, err := r.NeedsRenewal(ctx, domainName)
	if err != nil {
		return outcome, err
	}
	outcome.Decision = decision

	log := r.panel.logger.With("domain", domainName)
	if !decision.NeedsUpdate && !r.force {
		log.Info("current certificate not near expiration, not updating", "expires", decision.CurrentExpiry.Format(domain.ValidityLayout))
		outcome.Action = domain.ActionSkipped
		return outcome, nil
	}

	if !decision.HasCertificate() {
		logicalID, err := r.register(ctx, domainName, material)
		if err != nil {
			return outcome, err
		}
		outcome.Action = domain.ActionRegistered
		outcome.LogicalID = logicalID
	} else {
		if err := r.update(ctx, domainName, decision.LogicalID, material); err != nil {
			return outcome, err
		}
		outcome.Action = domain.ActionUpdated
		outcome.LogicalID = decision.LogicalID
	}

	log.Info("certificate updated", "logical_id", outcome.LogicalID)
	return outcome, nil
}

func (r *Renewer) register(ctx context.Context, domainName string, material domain.Material) (string, error) {
	r.panel.logger.Info("adding new certificate", "domain", domainName)

	module := r.panel.currentModule()
	form, ok := module.document.Form(addFormSelector)
	if !ok {
		return "", &domain.StructureError{Page: "certificate module", Element: addFormSelector}
	}
	if !form.Set(addCommonNameSelector, domainName) {
		return "", &domain.StructureError{Page: "certificate module", Element: addCommonNameSelector}
	}
	if !form.SetFile(addCertificateSelector, domainName+".crt", material.Certificate) {
		return "", &domain.StructureError{Page: "certificate module", Element: addCertificateSelector}
	}
	if !form.SetFile(addKeySelector, domainName+".key", material.Key) {
		return "", &domain.StructureError{Page: "certificate module", Element: addKeySelector}
	}

	page, err := r.submitUpload(ctx, "register certificate", form)
	if err != nil {
		return "", err
	}

	result, found, err := decodeUploadResult(page)
	if err != nil {
		return "", err
	}
	if !found {
		return "", &domain.StructureError{Page: "registration response", Element: "textarea"}
	}
	if !result.Success {
		return "", &domain.UploadError{Message: result.Message}
	}

	r.panel.logger.Info("verifying", "domain", domainName)
	logicalID, found, err := r.panel.FindCertificateID(ctx, domainName)
	if err != nil {
		return "", fmt.Errorf("look up registered certificate: %w", err)
	}
	if !found {
		return "", &domain.VerificationError{Component: "certificate", Reason: "no certificate registered after upload"}
	}

	if err := r.verify(ctx, logicalID, material); err != nil {
		return "", err
	}
	return logicalID, nil
}

func (r *Renewer) update(ctx context.Context, domainName, logicalID string, material domain.Material) error {
	r.panel.logger.Info("updating certificate", "domain", domainName, "logical_id", logicalID)

	module := r.panel.currentModule()
	form, ok := module.document.Form(updateFormSelector)
	if !ok {
		return &domain.StructureError{Page: "certificate module", Element: updateFormSelector}
	}
	form.AddHidden(logicalIDField, logicalID)
	if !form.SetFile(updateCertificateSelector, domainName+".crt", material.Certificate) {
		return &domain.StructureError{Page: "certificate module", Element: updateCertificateSelector}
	}
	if !form.SetFile(updateKeySelector, domainName+".key", material.Key) {
		return &domain.StructureError{Page: "certificate module", Element: updateKeySelector}
	}

	page, err := r.submitUpload(ctx, "update certificate", form)
	if err != nil {
		return err
	}

	// The update endpoint does not always answer with an envelope; the
	// verification below is authoritative then.
	result, found, err := decodeUploadResult(page)
	if err != nil {
		return err
	}
	if found && !result.Success {
		return &domain.UploadError{Message: result.Message}
	}

	r.panel.logger.Info("verifying", "domain", domainName)
	return r.verify(ctx, logicalID, material)
}

func (r *Renewer) submitUpload(ctx context.Context, op string, form ports.Form) (*ports.Page, error) {
	if form.Action() == "" {
		return nil, &domain.StructureError{Page: "certificate module", Element: "form action"}
	}
	actionURL := joinURL(r.panel.currentSession().baseURL, form.Action())
	return r.panel.submit(ctx, op, form, actionURL)
}

func (r *Renewer) verify(ctx context.Context, logicalID string, material domain.Material) error {
	record, err := r.panel.GetCertificate(ctx, logicalID)
	if err != nil {
		return fmt.Errorf("fetch certificate for verification: %w", err)
	}

	if domain.Normalize(record.CertificatePEM) != domain.Normalize(material.Certificate) {
		return &domain.VerificationError{Component: "certificate", Reason: "stored certificate differs from upload"}
	}
	if domain.Normalize(record.KeyPEM) != domain.Normalize(material.Key) {
		return &domain.VerificationError{Component: "key", Reason: "stored key differs from upload"}
	}
	return nil
}

type uploadResult struct {
	Success bool
	Message string
}

type uploadEnvelope struct {
	Success *flexBool `json:"success"`
	Info    []struct {
		Message string `json:"message"`
	} `json:"info"`
}

// flexBool decodes both JSON booleans and the "TRUE"/"FALSE" strings the
// panel emits.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case bool:
		*b = flexBool(v)
	case string:
		switch strings.ToUpper(strings.TrimSpace(v)) {
		case "TRUE":
			*b = true
		case "FALSE":
			*b = false
		default:
			return fmt.Errorf("unexpected success flag %q", v)
		}
	default:
		return fmt.Errorf("unexpected success flag %s", string(data))
	}
	return nil
}

// decodeUploadResult reads the result envelope the upload endpoints embed in
// a textarea. found is false when the page has no textarea.
func decodeUploadResult(page *ports.Page) (uploadResult, bool, error) {
	text, ok := page.Document.Text("textarea")
	if !ok {
		return uploadResult{}, false, nil
	}

	result, err := decodeUploadEnvelope(text)
	return result, true, err
}

func decodeUploadEnvelope(text string) (uploadResult, error) {
	var envelope uploadEnvelope
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &envelope); err != nil {
		return uploadResult{}, &domain.FormatError{Field: "upload response", Value: snippet([]byte(text)), Err: err}
	}

	result := uploadResult{Success: envelope.Success == nil || bool(*envelope.Success)}
	if len(envelope.Info) > 0 {
		result.Message = envelope.Info[0].Message
	}
	return result, nil
}

// RenewEntry loads the material for a manifest entry and runs UploadCertificate.
func (r *Renewer) RenewEntry(ctx context.Context, entry domain.SiteEntry) (domain.UploadOutcome, error) {
	if r.loader == nil {
		return domain.UploadOutcome{Domain: entry.Domain}, errors.New("no material loader configured")
	}

	material, err := r.loader.Load(ctx, entry)
	if err != nil {
		return domain.UploadOutcome{Domain: entry.Domain}, fmt.Errorf("load material for %s: %w", entry.Domain, err)
	}
	return r.UploadCertificate(ctx, entry.Domain, material)
}
