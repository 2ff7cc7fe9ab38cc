package cmd

import (
	"fmt"

	"github.com/bnema/stwcert/internal/adapters/material"
	"github.com/bnema/stwcert/internal/application"
	"github.com/bnema/stwcert/internal/domain"
	"github.com/spf13/cobra"
)

func newUpdateCertCmd(app *app) *cobra.Command {
	var force bool
	var pfxFile string
	var pfxPassword string
	var keyPassword string

	cmd := &cobra.Command{
		Use:   "update-cert <domain> [certfile keyfile]",
		Short: "Upload a certificate for a domain when the current one is due",
		Long:  "update-cert replaces the domain's certificate on the panel when it expires within the renewal threshold (or always with --force), then verifies the stored copy. Pass either a PEM certificate and key or --pfx.",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			addCmd := application.AddSiteCommand{Domain: args[0], PFXFile: pfxFile}
			if len(args) > 1 {
				addCmd.CertFile = args[1]
			}
			if len(args) > 2 {
				addCmd.KeyFile = args[2]
			}
			entry, err := addCmd.Entry()
			if err != nil {
				return err
			}

			loader := material.NewLoader(pfxPassword, keyPassword)
			payload, err := loader.Load(cmd.Context(), entry)
			if err != nil {
				return err
			}

			renewer, err := app.newRenewer(cmd.Context(), loader, force)
			if err != nil {
				return err
			}

			outcome, err := renewer.UploadCertificate(cmd.Context(), entry.Domain, payload)
			if err != nil {
				return fmt.Errorf("update certificate for %s: %w", entry.Domain, err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), describeOutcome(outcome))
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Upload even when the current certificate is not due")
	cmd.Flags().StringVar(&pfxFile, "pfx", "", "PKCS#12 bundle to upload instead of PEM files")
	cmd.Flags().StringVar(&pfxPassword, "pfx-password", "", "Password of the PKCS#12 bundle")
	cmd.Flags().StringVar(&keyPassword, "key-password", "", "Password of an encrypted PKCS#8 key file")

	return cmd
}

func describeOutcome(outcome domain.UploadOutcome) string {
	switch outcome.Action {
	case domain.ActionSkipped:
		return fmt.Sprintf("%s: certificate valid until %s, not updated", outcome.Domain, outcome.Decision.CurrentExpiry.UTC().Format(domain.ValidityLayout))
	case domain.ActionRegistered:
		return fmt.Sprintf("%s: certificate registered and verified (%s)", outcome.Domain, outcome.LogicalID)
	default:
		return fmt.Sprintf("%s: certificate updated and verified (%s)", outcome.Domain, outcome.LogicalID)
	}
}
