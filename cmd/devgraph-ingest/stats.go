package main

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print consolidated node/edge counts, or with --analytics the analytics breakdown (§6 /stats, /analytics)",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("analytics", false, "print the extended /analytics breakdown instead of plain /stats")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg.ValidateOrFatal()

	st, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.client.Close(ctx)
	defer st.backend.Close(ctx)

	analytics, _ := cmd.Flags().GetBool("analytics")
	if analytics {
		a, err := st.layer.Analytics(ctx)
		if err != nil {
			return err
		}
		printJSON(a)
		return nil
	}

	s, err := st.layer.Stats(ctx)
	if err != nil {
		return err
	}
	printJSON(s)
	return nil
}
