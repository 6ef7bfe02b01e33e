package symbols

import (
	"path/filepath"
	"regexp"
	"strings"
)

// ImportKind distinguishes an import resolved to a repo file from one
// pointing at an external library (§4.6 step 2).
type ImportKind int

const (
	ImportFile ImportKind = iota
	ImportLibrary
)

// Import is one extracted import/require/use statement.
type Import struct {
	Kind       ImportKind
	Target     string // repo-relative path if Kind == ImportFile, else library name
	Confidence float64
	LineNumber int
}

var importPatterns = map[string]*regexp.Regexp{
	"Go":         regexp.MustCompile(`^\s*(?:_\s+)?"([^"]+)"\s*$`),
	"Python":     regexp.MustCompile(`^\s*(?:from\s+(\S+)\s+import|import\s+(\S+))`),
	"JavaScript": regexp.MustCompile(`(?:import\s+.*\s+from\s+|require\()\s*['"]([^'"]+)['"]`),
	"TypeScript": regexp.MustCompile(`(?:import\s+.*\s+from\s+|require\()\s*['"]([^'"]+)['"]`),
	"Rust":       regexp.MustCompile(`^\s*use\s+([\w:]+)`),
}

// ExtractImports finds import statements in content for language and
// classifies each as a same-repo file reference (resolvable against
// knownFiles, a POSIX-path set built once per ingestion run) or an
// external library reference. Resolution ambiguity (a relative import
// that doesn't match any known file, a dynamic `require(expr)`) yields
// ImportLibrary at confidence 0.5 rather than failing, per §4.6's mandate
// to record low confidence instead of erroring.
func ExtractImports(language, fromFilePath, content string, knownFiles map[string]bool) []Import {
	re, ok := importPatterns[language]
	if !ok {
		return nil
	}

	var imports []Import
	for i, line := range strings.Split(content, "\n") {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		raw := firstNonEmpty(m[1:])
		if raw == "" {
			continue
		}

		if isRelative(language, raw) {
			from, rel := fromFilePath, raw
			switch language {
			case "Go":
				// A dotless Go import path is rooted at the repository, not
				// at the importing file's directory.
				if !strings.HasPrefix(raw, "./") {
					from = ""
				}
			case "Python":
				// ".util" names a sibling module, "..pkg.mod" one package up.
				dots := len(raw) - len(strings.TrimLeft(raw, "."))
				rel = strings.Repeat("../", dots-1) + strings.ReplaceAll(raw[dots:], ".", "/")
			}
			resolved, ok := resolveRelative(from, rel, knownFiles)
			if ok {
				imports = append(imports, Import{Kind: ImportFile, Target: resolved, Confidence: 0.9, LineNumber: i + 1})
				continue
			}
			imports = append(imports, Import{Kind: ImportLibrary, Target: raw, Confidence: 0.5, LineNumber: i + 1})
			continue
		}

		imports = append(imports, Import{Kind: ImportLibrary, Target: libraryName(language, raw), Confidence: 0.9, LineNumber: i + 1})
	}
	return imports
}

func firstNonEmpty(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}
	return ""
}

func isRelative(language, raw string) bool {
	switch language {
	case "JavaScript", "TypeScript":
		return strings.HasPrefix(raw, ".")
	case "Go":
		return !strings.Contains(raw, ".") || strings.HasPrefix(raw, "./")
	case "Python":
		return strings.HasPrefix(raw, ".")
	default:
		return false
	}
}

// resolveRelative tries each plausible source extension against the
// joined, POSIX-normalised path and reports whether it matches a known
// repo file.
func resolveRelative(fromFilePath, raw string, knownFiles map[string]bool) (string, bool) {
	dir := filepath.ToSlash(filepath.Dir(fromFilePath))
	joined := filepath.ToSlash(filepath.Join(dir, raw))

	candidates := []string{joined}
	for _, ext := range []string{".go", ".py", ".js", ".jsx", ".ts", ".tsx", "/index.js", "/index.ts"} {
		candidates = append(candidates, joined+ext)
	}
	for _, c := range candidates {
		if knownFiles[c] {
			return c, true
		}
	}
	return "", false
}

// libraryName strips a Go import path or a scoped npm package down to the
// name used for Library.name (§4.6 step 3): the last path segment for Go,
// the full specifier for everything else (npm scoped packages like
// "@org/pkg" are kept whole since the scope is part of the package's
// identity).
func libraryName(language, raw string) string {
	if language == "Go" {
		parts := strings.Split(raw, "/")
		return parts[len(parts)-1]
	}
	return raw
}
