package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP/RPC contract surface (§6), or the MCP tool surface with --mcp",
	Long: `serve starts the thin HTTP/RPC contract surface at http.bind_address and
blocks until interrupted. With --mcp it serves the three read-only MCP
tools over stdio instead — the two transports share one process's stdio,
so only one runs per invocation; run two "serve" processes side by side
to offer both at once.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "serve the MCP tool surface over stdio instead of HTTP")
	serveCmd.Flags().Bool("open", false, "open the dashboard URL in a browser once the HTTP server is listening")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg.ValidateOrFatal()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.client.Close(context.Background())
	defer st.backend.Close(context.Background())

	useMCP, _ := cmd.Flags().GetBool("mcp")
	if useMCP {
		return serveMCP(ctx, st)
	}
	return serveHTTP(ctx, cmd, st)
}

func serveMCP(ctx context.Context, st *stores) error {
	srv := newMCPServer(st)
	logger.Info("serving MCP tool surface over stdio")
	return srv.Run(ctx)
}

func serveHTTP(ctx context.Context, cmd *cobra.Command, st *stores) error {
	srv := newHTTPServer(st)
	httpServer := &http.Server{
		Addr:    cfg.HTTP.BindAddress,
		Handler: srv.Router(),
	}

	open, _ := cmd.Flags().GetBool("open")
	if open {
		go func() {
			time.Sleep(300 * time.Millisecond)
			browser.OpenURL("http://" + cfg.HTTP.BindAddress)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("serving HTTP/RPC contract surface at %s", cfg.HTTP.BindAddress)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
