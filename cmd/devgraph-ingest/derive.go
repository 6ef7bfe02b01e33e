package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/devgraph/internal/deriver"
	"github.com/rohankatakam/devgraph/internal/graphstore"
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Run only the Relationship Deriver (§4.7) against an already-bootstrapped graph",
	Args:  cobra.NoArgs,
	RunE:  runDerive,
}

func init() {
	deriveCmd.Flags().Bool("dry-run", false, "compute derived edges without writing them")
}

func runDerive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg.ValidateOrFatal()

	st, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.client.Close(ctx)
	defer st.backend.Close(ctx)

	runID := graphstore.Now()
	d := deriver.NewDeriver(st.backend, runID, dryRun)

	families := []struct {
		name string
		fn   func(context.Context) (int, error)
	}{
		{"IMPLEMENTS", d.DeriveImplements},
		{"EVOLVES_FROM", d.DeriveEvolvesFrom},
		{"DEPENDS_ON", d.DeriveDependsOn},
		{"MENTIONS", d.DeriveMentions},
		{"RELATES_TO", d.DeriveRelatesTo},
		{"CO_OCCURS_WITH", d.DeriveCoOccurs},
	}

	derived := make(map[string]int, len(families))
	for _, family := range families {
		count, err := family.fn(ctx)
		if err != nil {
			return err
		}
		derived[family.name] = count
	}

	fmt.Printf("derivation run %s complete\n", runID)
	printJSON(derived)
	return nil
}
