package ingest

import (
	"regexp"
	"strings"
)

// atxHeading matches ATX-style Markdown headings (# through ######).
var atxHeading = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)

// setextUnderline matches a Setext heading's underline row ("===" for
// level 1, "---" for level 2); the heading text is the preceding line.
var setextUnderline = regexp.MustCompile(`^(=+|-+)\s*$`)

const chunkPreviewLimit = 512

// MarkdownChunk is one heading-delimited section of a document, matching
// the Chunk node's properties for a Document (§4.3 step 4).
type MarkdownChunk struct {
	Heading        string
	Level          int
	Ordinal        int
	Content        string
	ContentPreview string
	Length         int
}

// ChunkMarkdown splits a document's text into hierarchical chunks at ATX
// and Setext heading boundaries. Content before the first heading becomes
// chunk 0 with an empty heading and level 0, matching 
// convention elsewhere of always emitting a "header" chunk.
func ChunkMarkdown(text string) []MarkdownChunk {
	lines := strings.Split(text, "\n")

	type section struct {
		heading string
		level   int
		body    []string
	}
	var sections []section
	current := section{heading: "", level: 0}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := atxHeading.FindStringSubmatch(line); m != nil {
			sections = append(sections, current)
			current = section{heading: strings.TrimSpace(m[2]), level: len(m[1])}
			continue
		}

		if i+1 < len(lines) && strings.TrimSpace(line) != "" {
			if m := setextUnderline.FindStringSubmatch(lines[i+1]); m != nil {
				level := 2
				if strings.HasPrefix(m[1], "=") {
					level = 1
				}
				sections = append(sections, current)
				current = section{heading: strings.TrimSpace(line), level: level}
				i++ // consume the underline row
				continue
			}
		}

		current.body = append(current.body, line)
	}
	sections = append(sections, current)

	chunks := make([]MarkdownChunk, 0, len(sections))
	ordinal := 0
	for _, s := range sections {
		if s.heading == "" && len(strings.TrimSpace(strings.Join(s.body, ""))) == 0 && ordinal > 0 {
			continue
		}
		body := strings.TrimSpace(strings.Join(s.body, "\n"))
		chunks = append(chunks, MarkdownChunk{
			Heading:        s.heading,
			Level:          s.level,
			Ordinal:        ordinal,
			Content:        body,
			ContentPreview: truncate(body, chunkPreviewLimit),
			Length:         len(body),
		})
		ordinal++
	}
	return chunks
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// DocumentTitle extracts a title for the Document node: the first level-1
// heading if present, else the first non-blank line, else the basename
// (assigned by the caller as a fallback).
func DocumentTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if m := atxHeading.FindStringSubmatch(line); m != nil && len(m[1]) == 1 {
			return strings.TrimSpace(m[2])
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

// WordCount is a whitespace-delimited word count for Document.word_count.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
