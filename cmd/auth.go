package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/stwcert/internal/application"
	"github.com/spf13/cobra"
)

var errUsernameRequired = errors.New("username required: pass --username or set panel.username")

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored panel password",
	}

	cmd.AddCommand(newAuthSetPasswordCmd(app), newAuthRemovePasswordCmd(app))

	return cmd
}

func newAuthSetPasswordCmd(app *app) *cobra.Command {
	var username string
	var password string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Store the panel password in the secret store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := resolveUsername(app, username)
			if err != nil {
				return err
			}

			if fromStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			key, err := app.service.SetPassword(cmd.Context(), application.SetPasswordCommand{
				Username: name,
				Password: password,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored password for %s under %s\n", name, key)
			return err
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Panel username (default panel.username)")
	cmd.Flags().StringVar(&password, "password", "", "Panel password")
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "Read the password from stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	cmd.MarkFlagsOneRequired("password", "password-stdin")

	return cmd
}

func newAuthRemovePasswordCmd(app *app) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "remove-password",
		Short: "Delete the stored panel password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := resolveUsername(app, username)
			if err != nil {
				return err
			}
			return app.service.RemovePassword(cmd.Context(), name)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Panel username (default panel.username)")

	return cmd
}

func resolveUsername(app *app, flagValue string) (string, error) {
	if username := strings.TrimSpace(flagValue); username != "" {
		return username, nil
	}
	if username := strings.TrimSpace(app.cfg.GetString("panel.username")); username != "" {
		return username, nil
	}
	return "", errUsernameRequired
}
