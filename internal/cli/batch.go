package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	batchFile    string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch [mc-number...]",
	Short: "Look up many carriers concurrently",
	Long: `Looks up every MC number given as an argument or listed one per line in
--file. A failed lookup is reported in its item and never stops the rest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mcs := append([]string{}, args...)
		if batchFile != "" {
			more, err := readNumbers(cmd.InOrStdin(), batchFile)
			if err != nil {
				return err
			}
			mcs = append(mcs, more...)
		}
		if len(mcs) == 0 {
			return fmt.Errorf("no MC numbers given")
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("workers") {
			cfg.BatchWorkers = batchWorkers
		}
		a, err := newApp(cmd, cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		return printJSON(cmd, a.Batch(cmd.Context(), mcs))
	},
}

// readNumbers reads one MC number per line, skipping blanks and # comments.
// A path of "-" reads stdin.
func readNumbers(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "file with one MC number per line (- for stdin)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "concurrent lookups")
	rootCmd.AddCommand(batchCmd)
}
