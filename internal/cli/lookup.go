package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/carrierscope/internal/scrape"
)

var insuranceRaw bool

var carrierCmd = &cobra.Command{
	Use:   "carrier <mc-number>",
	Short: "Fetch the SAFER snapshot for an MC number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		p, err := a.Service().Carrier(cmd.Context(), args[0])
		if errors.Is(err, scrape.ErrNotFound) {
			return fmt.Errorf("carrier %s not found", args[0])
		}
		if err != nil {
			return err
		}
		return printJSON(cmd, p)
	},
}

var safetyCmd = &cobra.Command{
	Use:   "safety <dot-number>",
	Short: "Fetch the SMS safety profile for a DOT number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		p, err := a.Service().Safety(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, p)
	},
}

var insuranceCmd = &cobra.Command{
	Use:   "insurance <dot-number>",
	Short: "Fetch insurance policies for a DOT number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		res, err := a.Service().Insurance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if insuranceRaw {
			return printJSON(cmd, res)
		}
		return printJSON(cmd, res.Policies)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Fetch and parse the FMCSA daily register",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		res, err := a.Service().Register(cmd.Context())
		if err != nil {
			return err
		}
		cmd.PrintErrf("%d entries via %s\n", len(res.Entries), strategyName(res.Strategy))
		return printJSON(cmd, res.Entries)
	},
}

func strategyName(s string) string {
	if s == "" {
		return "no strategy"
	}
	return s
}

func init() {
	insuranceCmd.Flags().BoolVar(&insuranceRaw, "raw", false, "include the upstream payload")
	rootCmd.AddCommand(carrierCmd, safetyCmd, insuranceCmd, registerCmd)
}
