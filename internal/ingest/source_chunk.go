package ingest

import (
	"strings"

	"github.com/rohankatakam/devgraph/internal/symbols"
)

// ChunkRecord is one File or Document chunk, ready for the Chunk node write
// (§4.3 step 4). Heading/Level/Ordinal/Content/ContentPreview/Length mirror
// MarkdownChunk's shape so the writer doesn't need to distinguish document
// chunks from source chunks once they reach this form.
type ChunkRecord struct {
	Heading        string
	Level          int
	Ordinal        int
	Content        string
	ContentPreview string
	Length         int
}

// ChunkSource splits a source file into symbol-aware chunks: one chunk per
// top-level declaration plus a leading "header" chunk for imports and file
// comments (§4.3 step 4, source files case). Files whose language has no
// extraction patterns, or that contain no recognised declarations, yield a
// single header chunk spanning the whole file.
func ChunkSource(language, content string) []ChunkRecord {
	syms := symbols.Extract(language, content)
	lines := strings.Split(content, "\n")

	if len(syms) == 0 {
		return []ChunkRecord{buildChunkRecord("", 0, 0, content)}
	}

	var chunks []ChunkRecord
	ordinal := 0

	if header := strings.Join(lines[:syms[0].LineNumber-1], "\n"); strings.TrimSpace(header) != "" {
		chunks = append(chunks, buildChunkRecord("", 0, ordinal, header))
		ordinal++
	}

	for i, s := range syms {
		end := len(lines)
		if i+1 < len(syms) {
			end = syms[i+1].LineNumber - 1
		}
		start := s.LineNumber - 1
		if start > end {
			start = end
		}
		body := strings.Join(lines[start:end], "\n")

		level := 0
		if s.Nested {
			level = 1
		}
		chunks = append(chunks, buildChunkRecord(s.Name, level, ordinal, body))
		ordinal++
	}

	return chunks
}

func buildChunkRecord(heading string, level, ordinal int, content string) ChunkRecord {
	trimmed := strings.TrimSpace(content)
	return ChunkRecord{
		Heading:        heading,
		Level:          level,
		Ordinal:        ordinal,
		Content:        trimmed,
		ContentPreview: truncate(trimmed, chunkPreviewLimit),
		Length:         len(trimmed),
	}
}
