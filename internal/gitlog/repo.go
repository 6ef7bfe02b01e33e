package gitlog

import (
	"context"
	"fmt"
	"os/exec"
)

// VerifyRepo checks that repoPath is inside a git working tree, failing
// fast before the pipeline touches it (§6 exit code 3, "repository
// unreadable").
func VerifyRepo(ctx context.Context, repoPath string) error {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = repoPath
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("not a git repository: %s: %w", repoPath, err)
	}
	return nil
}
