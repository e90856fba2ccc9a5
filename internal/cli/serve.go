package cli

import (
	"github.com/spf13/cobra"
)

var (
	listenAddr       string
	registerSchedule string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("listen") {
			cfg.ListenAddr = listenAddr
		}
		if cmd.Flags().Changed("schedule") {
			cfg.RegisterSchedule = registerSchedule
		}
		a, err := newApp(cmd, cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (default :3001)")
	serveCmd.Flags().StringVar(&registerSchedule, "schedule", "", `cron expression for background register refreshes, e.g. "0 6 * * *"`)
	rootCmd.AddCommand(serveCmd)
}
