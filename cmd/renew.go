package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/stwcert/internal/adapters/material"
	"github.com/bnema/stwcert/internal/application"
	"github.com/spf13/cobra"
)

func newRenewCmd(app *app) *cobra.Command {
	var force bool
	var concurrency int
	var pfxPassword string
	var keyPassword string
	var noSpinner bool

	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Renew every domain in the site manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := app.service.ListSites(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return errNoDomains
			}

			if !cmd.Flags().Changed("concurrency") {
				concurrency = app.cfg.GetInt("renew.concurrency")
			}

			renewer, err := app.newRenewer(cmd.Context(), material.NewLoader(pfxPassword, keyPassword), force)
			if err != nil {
				return err
			}

			var results []application.BatchResult
			var batchErr error
			work := func(ctx context.Context) error {
				results, batchErr = renewer.RenewAll(ctx, entries, concurrency)
				return nil
			}

			if noSpinner {
				_ = work(cmd.Context())
			} else {
				label := fmt.Sprintf("Renewing %d certificates...", len(entries))
				if err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), label, work); err != nil {
					return err
				}
			}

			rendered, err := app.batchRenderer(results)
			if err != nil {
				return fmt.Errorf("render renewal summary: %w", err)
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
				return err
			}

			return batchErr
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Upload even when the current certificate is not due")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum number of domains renewed at once")
	cmd.Flags().StringVar(&pfxPassword, "pfx-password", "", "Password of PKCS#12 bundles in the manifest")
	cmd.Flags().StringVar(&keyPassword, "key-password", "", "Password of encrypted PKCS#8 key files")
	cmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "Do not show the progress spinner")

	return cmd
}
