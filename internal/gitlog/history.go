// Package gitlog shells out to the system git binary for everything the
// Git History Service and Temporal Engine need: commit enumeration with
// per-file numstat, blame, and extension-based language detection. No git
// library is wired in anywhere in the reference corpus; internal/git wraps
// os/exec throughout, so this package keeps that idiom rather than
// introducing go-git.
package gitlog

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Commit is one entry from `git log`, oldest-first as yielded by ListCommits.
type Commit struct {
	Hash      string
	Author    string
	Email     string
	Timestamp time.Time
	Branch    string
	Message   string
	Changes   []FileChange
}

// FileChange is one numstat row under a commit.
type FileChange struct {
	Path      string
	OldPath   string // set only for renames
	Additions int
	Deletions int
	Status    string // "R" for a rename, otherwise "M" (see parseNumstatLine)
}

const logFormat = "%H|%an|%ae|%ad|%s"

// ListCommits streams commits oldest-first from repoPath, starting strictly
// after sinceTS (RFC3339; pass "" for a full bootstrap walk). Commits are
// delivered to fn as they're parsed rather than collected into a slice
// first, so a multi-year history doesn't have to fit in memory at once
// (§4.4, "oldest-first, streaming"). fn returning an error stops the walk
// and that error is returned to the caller.
func ListCommits(ctx context.Context, repoPath, sinceTS string, fn func(Commit) error) error {
	args := []string{"log", "--reverse", "-M", "--numstat",
		"--pretty=format:" + logFormat, "--date=iso-strict"}
	if sinceTS != "" {
		args = append(args, fmt.Sprintf("--since=%s", sinceTS))
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open git log pipe: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start git log: %w", err)
	}

	walkErr := scanCommits(stdout, fn)

	if err := cmd.Wait(); err != nil {
		if walkErr != nil {
			return walkErr
		}
		return fmt.Errorf("git log failed: %w (stderr: %s)", err, stderr.String())
	}
	return walkErr
}

func scanCommits(r interface{ Read([]byte) (int, error) }, fn func(Commit) error) error {
	scanner := bufio.NewScanner(bufio.NewReader(r))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	var current *Commit
	flush := func() error {
		if current == nil {
			return nil
		}
		c := *current
		current = nil
		return fn(c)
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if looksLikeHeader(line) {
			if err := flush(); err != nil {
				return err
			}
			parts := strings.SplitN(line, "|", 5)
			if len(parts) != 5 {
				continue
			}
			ts, err := time.Parse(time.RFC3339, parts[3])
			if err != nil {
				ts, err = time.Parse("2006-01-02T15:04:05-07:00", parts[3])
				if err != nil {
					continue
				}
			}
			current = &Commit{
				Hash:      parts[0],
				Author:    parts[1],
				Email:     parts[2],
				Timestamp: ts.UTC(),
				Message:   parts[4],
			}
			continue
		}

		if current != nil {
			if fc, ok := parseNumstatLine(line); ok {
				current.Changes = append(current.Changes, fc)
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}
	return scanner.Err()
}

// looksLikeHeader distinguishes a commit header (hash|author|email|date|msg)
// from a --numstat row (added\tdeleted\tpath): only the header contains the
// pipe-delimited field separator.
func looksLikeHeader(line string) bool {
	return strings.Count(line, "|") >= 4 && !strings.Contains(line, "\t")
}

// CurrentBranch returns the repository's checked-out branch name, used to
// stamp every GitCommit's `branch` property for a single-branch ingestion
// run (§3: the walk ingests the currently checked-out history, not every
// ref in the repository).
func CurrentBranch(ctx context.Context, repoPath string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = repoPath
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("detect current branch: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// parseNumstatLine parses one `-M --numstat` row:
//
//	3\t0\tpath.go                        (add/modify/delete)
//	-\t-\tbinary.png                     (binary file, counts unknown)
//	5\t2\told.go => new.go                (full-path rename, no common prefix)
//	5\t2\tshared/{old.go => new.go}       (rename with a common directory)
//
// numstat output does not label a row's change type, so Status is "R" for a
// row containing "=>" and "M" for every other row: additions and deletions
// are reported as "M", and copies are not detected.
func parseNumstatLine(line string) (FileChange, bool) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 {
		return FileChange{}, false
	}

	fc := FileChange{Status: "M"}
	fc.Additions, _ = strconv.Atoi(fields[0])
	fc.Deletions, _ = strconv.Atoi(fields[1])

	pathField := fields[2]
	if !strings.Contains(pathField, "=>") {
		fc.Path = pathField
		return fc, true
	}

	fc.Status = "R"
	if braceStart := strings.Index(pathField, "{"); braceStart >= 0 {
		prefix := pathField[:braceStart]
		braceEnd := strings.Index(pathField, "}")
		if braceEnd < 0 {
			fc.Path = pathField
			return fc, true
		}
		inner := pathField[braceStart+1 : braceEnd]
		suffix := pathField[braceEnd+1:]
		parts := strings.SplitN(inner, " => ", 2)
		if len(parts) != 2 {
			fc.Path = pathField
			return fc, true
		}
		fc.OldPath = prefix + strings.TrimSpace(parts[0]) + suffix
		fc.Path = prefix + strings.TrimSpace(parts[1]) + suffix
		return fc, true
	}

	parts := strings.SplitN(pathField, " => ", 2)
	if len(parts) != 2 {
		fc.Path = pathField
		return fc, true
	}
	fc.OldPath = strings.TrimSpace(parts[0])
	fc.Path = strings.TrimSpace(parts[1])
	return fc, true
}
