package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/bnema/stwcert/internal/application"
	"github.com/spf13/cobra"
)

func newSiteCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Manage the site manifest used by renew",
	}

	cmd.AddCommand(newSiteAddCmd(app), newSiteListCmd(app), newSiteRemoveCmd(app))

	return cmd
}

func newSiteAddCmd(app *app) *cobra.Command {
	var addCmd application.AddSiteCommand

	cmd := &cobra.Command{
		Use:   "add <domain>",
		Short: "Add or replace a domain in the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addCmd.Domain = args[0]
			entry, err := app.service.AddSite(cmd.Context(), addCmd)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", entry.Domain)
			return err
		},
	}

	cmd.Flags().StringVar(&addCmd.CertFile, "cert", "", "PEM certificate file")
	cmd.Flags().StringVar(&addCmd.KeyFile, "key", "", "PEM private key file")
	cmd.Flags().StringVar(&addCmd.PFXFile, "pfx", "", "PKCS#12 bundle (instead of --cert/--key)")

	return cmd
}

func newSiteListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List manifest entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := app.service.ListSites(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, entry := range entries {
				if entry.UsesPFX() {
					_, _ = fmt.Fprintf(w, "%s\tpfx\t%s\n", entry.Domain, entry.PFXFile)
					continue
				}
				_, _ = fmt.Fprintf(w, "%s\tpem\t%s\t%s\n", entry.Domain, entry.CertFile, entry.KeyFile)
			}
			return w.Flush()
		},
	}
}

func newSiteRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <domain>",
		Short: "Remove a domain from the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.service.RemoveSite(cmd.Context(), args[0])
		},
	}
}
