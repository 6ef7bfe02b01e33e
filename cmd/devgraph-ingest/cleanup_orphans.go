package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupOrphansCmd = &cobra.Command{
	Use:   "cleanup-orphans",
	Short: "Delete every node with no incident edges (§6 /cleanup/orphans)",
	Args:  cobra.NoArgs,
	RunE:  runCleanupOrphans,
}

func runCleanupOrphans(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg.ValidateOrFatal()

	st, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.client.Close(ctx)
	defer st.backend.Close(ctx)

	deleted, err := st.backend.DeleteOrphanNodes(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("deleted %d orphan node(s)\n", deleted)
	return nil
}
