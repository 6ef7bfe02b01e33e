package gitlog

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PathHistory returns every historical path a file has been known by,
// current path first, oldest path last — the chain `git log --follow`
// walks through rename-and-reorganize commits. Grounded on 
// HistoryTracker.GetFileHistory in internal/git/history.go; used here to
// resolve a file's full rename chain for the supplemented
// rename-chain-resolution feature, not by the core Temporal Engine writer
// (which only needs the single-hop R/C rows numstat already reports).
func PathHistory(ctx context.Context, repoPath, filePath string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "--follow", "--name-only",
		"--pretty=format:", "--", filePath)
	cmd.Dir = repoPath

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git log --follow failed for %s: %w (stderr: %s)", filePath, err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("git log --follow failed for %s: %w", filePath, err)
	}

	seen := make(map[string]bool)
	var paths []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no history found for %s", filePath)
	}
	return paths, nil
}
