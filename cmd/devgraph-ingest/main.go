// Command devgraph-ingest drives the ingestion pipeline, the windowed
// query layer, and the HTTP/MCP contract surfaces from a single CLI,
// adapting the teacher's cmd/crisk command layout (one file per
// subcommand, a persistent config/logger load in the root command) to
// this engine's own stages and error taxonomy.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/devgraph/internal/apperrors"
	"github.com/rohankatakam/devgraph/internal/config"
	"github.com/rohankatakam/devgraph/internal/logging"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	// Config.ValidateOrFatal panics with an *apperrors.Error rather than
	// returning one (it's called deep inside every subcommand's RunE,
	// where threading a return value back out adds nothing); this recover
	// is the one place that turns it back into the exit code its own doc
	// comment promises.
	defer func() {
		if r := recover(); r != nil {
			if appErr, ok := r.(*apperrors.Error); ok {
				os.Exit(exitCodeForErr(appErr))
			}
			fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeForErr(err))
	}
}

var rootCmd = &cobra.Command{
	Use:     "devgraph-ingest",
	Short:   "Temporal semantic dev-graph ingestion engine",
	Long:    `devgraph-ingest builds and queries a labelled property graph over a repository's commit history, file tree, documentation, and source code.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logrus.New()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}

		// Every component logger below this command (orchestrator, httpapi,
		// query, deriver, ...) calls slog.Default() rather than taking a
		// logger by dependency injection, so installing the process-wide
		// default here is what actually threads --verbose and JSON/text
		// formatting through to them; logrus above stays the CLI's own
		// command-feedback logger, a separate concern from component logs.
		slogConfig := logging.DebugConfig()
		if !verbose {
			slogConfig = logging.ProductionConfig("")
		}
		if slogLogger, err := logging.NewLogger(slogConfig); err != nil {
			logger.WithError(err).Warn("failed to initialize component logger, using slog default")
		} else {
			slog.SetDefault(slogLogger.Slog())
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("failed to load config, using defaults")
			cfg = config.Default()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./devgraph.yaml or ~/.devgraph/devgraph.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`devgraph-ingest {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(cleanupOrphansCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}
