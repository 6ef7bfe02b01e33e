package main

import (
	"fmt"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rohankatakam/devgraph/internal/apperrors"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Poll a running or finished job's status from a \"serve\" daemon",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Bool("watch", false, "poll every second until the job leaves the running state")
}

type jobStatusResponse struct {
	JobID           string `json:"job_id"`
	Status          string `json:"status"`
	StagesCompleted int    `json:"stages_completed"`
	Progress        string `json:"progress"`
	DurationSeconds int    `json:"duration_seconds"`
	Error           string `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	jobID := args[0]
	watch, _ := cmd.Flags().GetBool("watch")

	// term.IsTerminal gates the watch spinner the same way the teacher's
	// login flow decides whether to print an interactive prompt: a
	// non-interactive caller (CI, a pipe) gets the full status as indented
	// JSON on every poll instead of a repainted progress line.
	interactive := watch && term.IsTerminal(int(syscall.Stdin))

	for {
		var resp jobStatusResponse
		if err := daemonGet(cmd.Context(), "/ingest/status/"+jobID, &resp); err != nil {
			return err
		}

		if interactive {
			fmt.Printf("\r%s: %s (%d/6 stages, %ds)   ", resp.JobID, resp.Status, resp.StagesCompleted, resp.DurationSeconds)
		} else {
			printJSON(resp)
		}

		if resp.Status != "running" || !watch {
			if interactive {
				fmt.Println()
			}
			if resp.Status == "failed" {
				return apperrors.InternalErrorf("job %s failed: %s", resp.JobID, resp.Error)
			}
			return nil
		}
		time.Sleep(time.Second)
	}
}
