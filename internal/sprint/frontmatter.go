// Package sprint implements the Sprint Mapper (Stage 5): it finds documents
// under a sprint-folder convention, reads their date range, and links them
// to the commits, files, and requirements that fall inside that window.
package sprint

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// FrontMatter is a sprint document's declared metadata (§4.5: "front-matter
// or first-heading declaration of start_date and end_date"). Grounded on
// the pack's own YAML front-matter split/parse in
// internal/marshal/frontmatter.go, narrowed to the two fields this stage
// needs plus a passthrough Name.
type FrontMatter struct {
	Name      string `yaml:"name"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

// ParseFrontMatter splits a document on its leading "---" delimited YAML
// block and decodes it. A document with no front-matter block returns a
// zero-value FrontMatter and body equal to content unchanged — callers fall
// back to the first-heading convention in that case.
func ParseFrontMatter(content string) (FrontMatter, string, error) {
	if !strings.HasPrefix(content, frontmatterDelimiter) {
		return FrontMatter{}, content, nil
	}

	rest := content[len(frontmatterDelimiter):]
	idx := strings.Index(rest, "\n"+frontmatterDelimiter)
	if idx == -1 {
		return FrontMatter{}, content, fmt.Errorf("unclosed front-matter block")
	}

	raw := rest[:idx]
	body := strings.TrimPrefix(rest[idx+len("\n"+frontmatterDelimiter):], "\n")

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return FrontMatter{}, content, fmt.Errorf("parse front-matter: %w", err)
	}
	return fm, body, nil
}
