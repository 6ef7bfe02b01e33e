package gitlog

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v: %s", args, err, out)
	}
}

func initRenameTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test")
	return dir
}

func TestPathHistory_FollowsARenameAcrossCommits(t *testing.T) {
	dir := initRenameTestRepo(t)

	if err := os.WriteFile(filepath.Join(dir, "old.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", "old.txt")
	runGit(t, dir, "commit", "-m", "add old.txt")

	runGit(t, dir, "mv", "old.txt", "new.txt")
	runGit(t, dir, "commit", "-m", "rename to new.txt")

	paths, err := PathHistory(context.Background(), dir, "new.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("expected 2 historical paths, got %d: %v", len(paths), paths)
	}
	if paths[0] != "new.txt" {
		t.Errorf("paths[0] = %q, want new.txt (current path first)", paths[0])
	}
	if paths[1] != "old.txt" {
		t.Errorf("paths[1] = %q, want old.txt (oldest path last)", paths[1])
	}
}

func TestPathHistory_UnknownPathIsAnError(t *testing.T) {
	dir := initRenameTestRepo(t)

	if err := os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", "tracked.txt")
	runGit(t, dir, "commit", "-m", "add tracked.txt")

	if _, err := PathHistory(context.Background(), dir, "never-existed.txt"); err == nil {
		t.Error("expected an error for a path with no history")
	}
}
