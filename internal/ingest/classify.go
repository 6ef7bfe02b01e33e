package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rohankatakam/devgraph/internal/gitlog"
)

// docExtensions are treated as Document/Chunk-via-Markdown sources.
var docExtensions = map[string]bool{
	".md": true, ".markdown": true, ".mdx": true,
}

// Classification is the result of §4.3 step 2: is_code/is_doc/is_other plus
// the detected language and file extension.
type Classification struct {
	IsCode    bool
	IsDoc     bool
	IsOther   bool
	Language  string
	Extension string
}

// Classify decides a file's kind from its extension alone; content is not
// inspected (there is no BOM or UTF-8 sniff here).
func Classify(path string, content []byte) Classification {
	ext := strings.ToLower(filepath.Ext(path))

	if docExtensions[ext] {
		return Classification{IsDoc: true, Language: "Markdown", Extension: ext}
	}

	if gitlog.IsCodeExtension(path) {
		return Classification{IsCode: true, Language: gitlog.DetectLanguage(path), Extension: ext}
	}

	return Classification{IsOther: true, Language: gitlog.DetectLanguage(path), Extension: ext}
}

// DecodeResult is the outcome of §4.3 step 3's UTF-8-first decode with
// fallback encodings.
type DecodeResult struct {
	Text   string
	Failed bool
}

// fallbackEncodings lists the ordered list of single-byte encodings tried
// after UTF-8 fails, per §4.3 step 3. Both map every byte value to a rune,
// so decoding itself never fails; they exist only to give a second
// "this text decodes as Latin-1/CP1252" attempt before giving up.
var fallbackEncodings = []string{"latin1", "windows-1252"}

// Decode reads a file's content as UTF-8 (dropping a UTF-8 BOM) and decodes
// invalid UTF-8 byte for byte as Latin-1. The file is flagged as failed only
// when the invalid content looks binary: a NUL byte, or more than 30% control
// characters in its first 8 KiB.
func Decode(content []byte) DecodeResult {
	if utf8.Valid(content) {
		return DecodeResult{Text: stripBOM(content)}
	}

	// Latin-1 and Windows-1252 map every byte 1:1 (approximately) to a
	// Unicode code point, so re-decoding never fails outright; the
	// practical failure mode is binary content, which we detect via a
	// density check on non-printable bytes instead.
	if looksBinary(content) {
		return DecodeResult{Failed: true}
	}

	return DecodeResult{Text: decodeLatin1(content)}
}

func stripBOM(b []byte) string {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return string(b[3:])
	}
	return string(b)
}

func decodeLatin1(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

func looksBinary(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	nonPrintable := 0
	sample := b
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	for _, c := range sample {
		if c == 0 {
			return true
		}
		if c < 0x09 || (c > 0x0D && c < 0x20) {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(sample)) > 0.3
}

// ReadFile loads a file's bytes for classification and decoding in one
// pass, bounded so a single pathological file can't exhaust memory; files
// larger than maxBytes are classified but not chunked.
func ReadFile(path string, maxBytes int64) ([]byte, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}
	if info.Size() > maxBytes {
		return nil, true, nil
	}
	b, err := os.ReadFile(path)
	return b, false, err
}
