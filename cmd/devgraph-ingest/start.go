package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/devgraph/internal/apperrors"
)

// start and status talk to an already-running "serve" daemon over HTTP
// rather than running the pipeline in this process: the job registry
// that makes "asynchronous, polled via status" meaningful only outlives
// a single invocation when something keeps running after this command
// returns (§6: "/ingest/start ... asynchronous, job polled via
// /ingest/status/{id}"). "bootstrap" is the standalone, no-daemon
// equivalent that blocks until the run finishes in this process.
var startCmd = &cobra.Command{
	Use:   "start [repo-path]",
	Short: "Ask a running \"devgraph-ingest serve\" daemon to start a run asynchronously",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().Bool("reset", false, "wipe the graph before running")
	startCmd.Flags().Int("commit-limit", 0, "override commit_limit (0 keeps the configured value)")
	startCmd.Flags().Bool("no-derive", false, "skip the relationship derivation stage")
}

func runStart(cmd *cobra.Command, args []string) error {
	repoPath := cfg.RepoPath
	if len(args) == 1 {
		repoPath = args[0]
	}
	reset, _ := cmd.Flags().GetBool("reset")
	commitLimit, _ := cmd.Flags().GetInt("commit-limit")
	noDerive, _ := cmd.Flags().GetBool("no-derive")

	body := map[string]any{
		"repo_path":   repoPath,
		"reset_graph": reset,
	}
	if commitLimit > 0 {
		body["commit_limit"] = commitLimit
	}
	if noDerive {
		derive := false
		body["derive_relationships"] = &derive
	}

	var resp struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := daemonPost(cmd.Context(), "/ingest/start", body, &resp); err != nil {
		return err
	}

	fmt.Printf("started job %s (status: %s)\n", resp.JobID, resp.Status)
	fmt.Printf("poll with: devgraph-ingest status %s\n", resp.JobID)
	return nil
}

// daemonPost issues a POST against the configured HTTP bind address and
// decodes a JSON response, surfacing any daemon-reported {kind, stage,
// message, retryable} body as the matching apperrors type so exit codes
// stay consistent whether a stage fails in-process or inside the daemon.
func daemonPost(ctx context.Context, path string, body any, out any) error {
	return daemonRequest(ctx, http.MethodPost, path, body, out)
}

func daemonGet(ctx context.Context, path string, out any) error {
	return daemonRequest(ctx, http.MethodGet, path, nil, out)
}

func daemonRequest(ctx context.Context, method, path string, body any, out any) error {
	url := "http://" + cfg.HTTP.BindAddress + path

	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return apperrors.InternalErrorf("encode request body: %v", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return apperrors.InternalErrorf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return apperrors.StoreTransientError(err, fmt.Sprintf("cannot reach devgraph-ingest serve at %s", cfg.HTTP.BindAddress))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Kind      string `json:"kind"`
			Stage     string `json:"stage"`
			Message   string `json:"message"`
			Retryable bool   `json:"retryable"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		return daemonErrorFor(resp.StatusCode, errBody.Kind, errBody.Message)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.DecodingError(err, "decode daemon response")
		}
	}
	return nil
}

// daemonErrorFor reconstructs an *apperrors.Error from the daemon's HTTP
// status/kind so exitCodeForErr maps it the same way a local failure would.
func daemonErrorFor(status int, kind, message string) error {
	switch status {
	case http.StatusUnprocessableEntity:
		return apperrors.ConfigError(message)
	case http.StatusBadRequest:
		return apperrors.ValidationError(message)
	case http.StatusNotFound:
		return apperrors.RepositoryError(fmt.Errorf("%s", message), message)
	case http.StatusServiceUnavailable:
		return apperrors.StoreTransientError(fmt.Errorf("%s", message), message)
	case http.StatusRequestTimeout:
		return apperrors.CancellationError(message)
	default:
		return apperrors.InternalError(message)
	}
}
