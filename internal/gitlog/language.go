package gitlog

import (
	"path/filepath"
	"strings"
)

// DetectLanguage returns the programming language implied by a file's
// extension, used to populate File.language (§3) and as the extension
// table for the shallow symbol extractor (§4.6).
func DetectLanguage(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))

	languageMap := map[string]string{
		".go":    "Go",
		".py":    "Python",
		".js":    "JavaScript",
		".jsx":   "JavaScript",
		".ts":    "TypeScript",
		".tsx":   "TypeScript",
		".java":  "Java",
		".c":     "C",
		".cpp":   "C++",
		".cc":    "C++",
		".cxx":   "C++",
		".h":     "C/C++",
		".hpp":   "C++",
		".cs":    "C#",
		".rb":    "Ruby",
		".php":   "PHP",
		".rs":    "Rust",
		".swift": "Swift",
		".kt":    "Kotlin",
		".scala": "Scala",
		".sh":    "Shell",
		".bash":  "Shell",
		".sql":   "SQL",
		".r":     "R",
		".m":     "Objective-C",
		".pl":    "Perl",
		".lua":   "Lua",
		".vim":   "Vimscript",
		".dart":  "Dart",
		".ex":    "Elixir",
		".exs":   "Elixir",
		".clj":   "Clojure",
		".fs":    "F#",
		".ml":    "OCaml",
		".hs":    "Haskell",
	}

	if lang, ok := languageMap[ext]; ok {
		return lang
	}
	if ext != "" {
		return strings.TrimPrefix(ext, ".")
	}
	return "unknown"
}

// nonCodeExtensions are extensions DetectLanguage recognises (or passes
// through as a bare suffix) that the symbol extractor has no declaration
// patterns for — config, markup, and data formats rather than source.
var nonCodeExtensions = map[string]bool{
	".txt": true, ".json": true, ".yaml": true, ".yml": true, ".toml": true,
	".xml": true, ".html": true, ".htm": true, ".css": true, ".csv": true,
	".ini": true, ".cfg": true, ".conf": true, ".lock": true, ".svg": true,
}

// IsCodeExtension reports whether filePath has an extension that is not in
// nonCodeExtensions; any other extension counts as code, including ones
// DetectLanguage only passes through as a bare suffix and ones the symbol
// extractor has no patterns for. Used by the Chunk Ingester's is_code
// classification (§4.3).
func IsCodeExtension(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == "" || nonCodeExtensions[ext] {
		return false
	}
	return DetectLanguage(filePath) != "unknown"
}
