package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/devgraph/internal/apperrors"
	"github.com/rohankatakam/devgraph/internal/query"
)

var validateCmd = &cobra.Command{
	Use:   "validate [schema|temporal|relationships]",
	Short: "Run one of the three post-bootstrap invariant checks (§6)",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg.ValidateOrFatal()

	st, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.client.Close(ctx)
	defer st.backend.Close(ctx)

	var report query.ValidationReport
	switch args[0] {
	case "schema":
		report, err = st.layer.ValidateSchema(ctx)
	case "temporal":
		report, err = st.layer.ValidateTemporal(ctx)
	case "relationships":
		report, err = st.layer.ValidateRelationships(ctx)
	default:
		return apperrors.ValidationErrorf("unknown validate target %q, want schema, temporal, or relationships", args[0])
	}
	if err != nil {
		return err
	}

	printJSON(report)
	if !report.Valid {
		fmt.Println("validation failed")
		return apperrors.InternalErrorf("%s validation reported %d violation(s)", args[0], len(report.Violations))
	}
	return nil
}
