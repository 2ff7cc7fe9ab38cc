package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var opts globalOptions
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "stwcert",
		Short:         "Renew SSL certificates on the hosting control panel",
		Long:          "stwcert logs into the hosting control panel, checks whether a domain's certificate is close to expiry, uploads the replacement and verifies that the panel stores exactly what was uploaded.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			wired, err := wireApp(cmd, opts)
			if err != nil {
				return err
			}
			*app = *wired
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default ~/.stwcert/config.toml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log request details")
	flags.String("panel-url", "", "Panel login URL (default https://hcp.stwcp.net/)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newUpdateCertCmd(app),
		newCheckCmd(app),
		newRenewCmd(app),
		newSiteCmd(app),
		newAuthCmd(app),
	)

	return rootCmd
}
