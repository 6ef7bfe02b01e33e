package gitlog

import (
	"strings"
	"testing"
)

const sampleHash = "abc1234567890abc1234567890abc1234567890a"

func TestIsBlameHeaderLine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{sampleHash + " 1 1 3", true},
		{sampleHash + " 1 1", true},
		{"author Jane Doe", false},
		{"\tfunc main() {}", false},
		{"short hash 1 1", false},
	}
	for _, c := range cases {
		if got := isBlameHeaderLine(c.line); got != c.want {
			t.Errorf("isBlameHeaderLine(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestParseBlamePorcelain_GroupsShareHashAndAuthor(t *testing.T) {
	input := sampleHash + " 1 1 2\n" +
		"author Jane Doe\n" +
		"summary fix bug\n" +
		"\tline one\n" +
		sampleHash + " 2 2\n" +
		"\tline two\n"

	lines, err := parseBlamePorcelain(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(lines), lines)
	}
	for i, l := range lines {
		if l.CommitHash != sampleHash {
			t.Errorf("lines[%d].CommitHash = %q, want %q", i, l.CommitHash, sampleHash)
		}
		if l.Author != "Jane Doe" {
			t.Errorf("lines[%d].Author = %q, want Jane Doe", i, l.Author)
		}
	}
	if lines[0].Line != 1 || lines[1].Line != 2 {
		t.Errorf("unexpected line numbers: %d, %d", lines[0].Line, lines[1].Line)
	}
}
