package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	statusadapter "github.com/bnema/stwcert/internal/adapters/render/status"
	"github.com/bnema/stwcert/internal/application"
	"github.com/spf13/cobra"
)

var errNoDomains = errors.New("no domains given and the site manifest is empty")

type checkOutput struct {
	Domain        string     `json:"domain"`
	NeedsUpdate   bool       `json:"needs_update"`
	CurrentExpiry *time.Time `json:"current_expiry,omitempty"`
	LogicalID     string     `json:"logical_id,omitempty"`
	Error         string     `json:"error,omitempty"`
}

func newCheckCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check [domain...]",
		Short: "Report whether certificates need renewal",
		Long:  "check looks up each domain on the panel and reports its current expiry. Without arguments every domain in the site manifest is checked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			domains, err := domainsToCheck(cmd, app, args)
			if err != nil {
				return err
			}

			if asJSON {
				app.logTo(cmd.ErrOrStderr())
			}

			renewer, err := app.newRenewer(cmd.Context(), nil, false)
			if err != nil {
				return err
			}

			results := renewer.CheckAll(cmd.Context(), domains)
			if err := writeCheckOutput(cmd, app, results, asJSON); err != nil {
				return err
			}

			return checkErrors(results)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func domainsToCheck(cmd *cobra.Command, app *app, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	entries, err := app.service.ListSites(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errNoDomains
	}

	domains := make([]string, 0, len(entries))
	for _, entry := range entries {
		domains = append(domains, entry.Domain)
	}
	return domains, nil
}

func writeCheckOutput(cmd *cobra.Command, app *app, results []application.CheckResult, asJSON bool) error {
	if asJSON {
		out := make([]checkOutput, 0, len(results))
		for _, result := range results {
			item := checkOutput{
				Domain:        result.Domain,
				NeedsUpdate:   result.Decision.NeedsUpdate,
				CurrentExpiry: result.Decision.CurrentExpiry,
				LogicalID:     result.Decision.LogicalID,
			}
			if result.Err != nil {
				item.Error = result.Err.Error()
			}
			out = append(out, item)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rendered, err := app.statusRenderer(results, statusadapter.RenderOptions{
		Now:       app.now(),
		Threshold: app.threshold(),
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func checkErrors(results []application.CheckResult) error {
	var errs []error
	for _, result := range results {
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", result.Domain, result.Err))
		}
	}
	return errors.Join(errs...)
}
