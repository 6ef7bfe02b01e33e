package symbols

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ManifestLibrary is one dependency declared by a manifest file, destined
// for a Library node plus a USES_LIBRARY edge from the manifest's owning
// File (§4.6 step 3).
type ManifestLibrary struct {
	Name           string
	Version        string
	ManifestSource string // the manifest file path this declaration came from
}

// ParseManifest dispatches to the right parser by filename. Unrecognised
// manifest-looking files simply yield no libraries rather than an error,
// matching the shallow-parser posture used throughout this package.
func ParseManifest(path string, content []byte) []ManifestLibrary {
	base := lastSegment(path)
	switch {
	case base == "go.mod":
		return parseGoMod(path, content)
	case base == "package.json":
		return parsePackageJSON(path, content)
	case base == "requirements.txt":
		return parseRequirementsTxt(path, content)
	case base == "Cargo.toml":
		return parseCargoToml(path, content)
	default:
		return nil
	}
}

func lastSegment(path string) string {
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}

var goModRequireLine = regexp.MustCompile(`^\s*([a-zA-Z0-9._/-]+)\s+(v[\w.\-+]+)`)

// parseGoMod reads both single-line `require x v1` statements and the
// `require ( ... )` block form, skipping the module's own directive lines
// (module/go/toolchain) and "// indirect" comments are kept as part of the
// matched line but don't affect extraction.
func parseGoMod(path string, content []byte) []ManifestLibrary {
	var libs []ManifestLibrary
	inBlock := false
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "require ("):
			inBlock = true
			continue
		case inBlock && trimmed == ")":
			inBlock = false
			continue
		case strings.HasPrefix(trimmed, "require ") && !strings.Contains(trimmed, "("):
			trimmed = strings.TrimPrefix(trimmed, "require ")
		case !inBlock:
			continue
		}

		if m := goModRequireLine.FindStringSubmatch(trimmed); m != nil {
			libs = append(libs, ManifestLibrary{Name: m[1], Version: m[2], ManifestSource: path})
		}
	}
	return libs
}

// parsePackageJSON reads "dependencies" and "devDependencies" objects.
func parsePackageJSON(path string, content []byte) []ManifestLibrary {
	var doc struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil
	}

	var libs []ManifestLibrary
	for name, version := range doc.Dependencies {
		libs = append(libs, ManifestLibrary{Name: name, Version: version, ManifestSource: path})
	}
	for name, version := range doc.DevDependencies {
		libs = append(libs, ManifestLibrary{Name: name, Version: version, ManifestSource: path})
	}
	return libs
}

// parseRequirementsTxt handles the common pinning operators (==, >=, ~=,
// !=) and bare names, ignoring comments, blank lines, and -r/-e includes.
var requirementLine = regexp.MustCompile(`^([A-Za-z0-9_.\-\[\]]+)\s*(==|>=|<=|~=|!=)?\s*([\w.\-]*)`)

func parseRequirementsTxt(path string, content []byte) []ManifestLibrary {
	var libs []ManifestLibrary
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "-") {
			continue
		}
		m := requirementLine.FindStringSubmatch(trimmed)
		if m == nil || m[1] == "" {
			continue
		}
		libs = append(libs, ManifestLibrary{Name: m[1], Version: m[3], ManifestSource: path})
	}
	return libs
}

// parseCargoToml reads the [dependencies] and [dev-dependencies] tables,
// supporting both the plain `name = "1.2"` form and the inline-table
// `name = { version = "1.2" }` form. Lines under any other `[section]`
// header are ignored.
func parseCargoToml(path string, content []byte) []ManifestLibrary {
	var libs []ManifestLibrary
	inDeps := false
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			inDeps = trimmed == "[dependencies]" || trimmed == "[dev-dependencies]"
			continue
		}
		if !inDeps {
			continue
		}
		parts := strings.SplitN(trimmed, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		version := extractCargoVersion(strings.TrimSpace(parts[1]))
		libs = append(libs, ManifestLibrary{Name: name, Version: version, ManifestSource: path})
	}
	return libs
}

var cargoVersionQuoted = regexp.MustCompile(`"([^"]+)"`)

func extractCargoVersion(value string) string {
	if m := cargoVersionQuoted.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return ""
}
