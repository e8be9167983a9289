package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thruflo/sortviz/internal/sorting"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the available algorithms",
	Args:  cobra.NoArgs,
	RunE:  runAlgorithms,
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}

func runAlgorithms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	selected, err := sorting.Parse(cfg.Algorithm)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for i, alg := range sorting.Algorithms() {
		mark := ""
		if alg == selected {
			mark = "(default)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, alg, alg.Title(), mark)
	}
	return w.Flush()
}
