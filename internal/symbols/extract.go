// Package symbols implements Stage 6's intentionally shallow, per-language
// symbol extraction: indentation rules for Python-like languages, brace +
// signature regex for JS/TS, and brace + func/type for Go-like languages.
// Grounded on internal/git diff_chunker.go functionPatterns
// table (a per-language, single-line declaration regex), extended here
// from diff-chunk boundary detection to full top-level symbol extraction.
package symbols

import (
	"bufio"
	"regexp"
	"strings"
)

// Kind is a Symbol node's `type` property.
type Kind string

const (
	KindClass     Kind = "class"
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindInterface Kind = "interface"
)

// Symbol is one extracted top-level (or one-level-nested) declaration.
type Symbol struct {
	Type       Kind
	Name       string
	Signature  string
	LineNumber int
	Nested     bool // true => Chunk.level 1 (method inside a class), false => 0
}

// declPattern pairs a regex with the symbol kind and name-capture group it
// identifies, tried in order for a given language family.
type declPattern struct {
	re       *regexp.Regexp
	kind     Kind
	nameIdx  int
	indented bool // true: match requires a class-body indent (method, not function)
}

var patterns = map[string][]declPattern{
	"Go": {
		{regexp.MustCompile(`^func\s+\(\s*\w+\s+\*?(\w+)\s*\)\s+(\w+)`), KindMethod, 2, false},
		{regexp.MustCompile(`^func\s+(\w+)`), KindFunction, 1, false},
		{regexp.MustCompile(`^type\s+(\w+)\s+(struct|interface)\b`), KindClass, 1, false},
	},
	"Python": {
		{regexp.MustCompile(`^class\s+(\w+)`), KindClass, 1, false},
		{regexp.MustCompile(`^def\s+(\w+)\s*\(`), KindFunction, 1, false},
		{regexp.MustCompile(`^\s+def\s+(\w+)\s*\(`), KindMethod, 1, true},
	},
	"JavaScript": {
		{regexp.MustCompile(`^class\s+(\w+)`), KindClass, 1, false},
		{regexp.MustCompile(`^(?:export\s+)?(?:async\s+)?function\s+(\w+)`), KindFunction, 1, false},
		{regexp.MustCompile(`^(?:export\s+)?const\s+(\w+)\s*=\s*(?:async\s*)?\(`), KindFunction, 1, false},
	},
	"TypeScript": {
		{regexp.MustCompile(`^(?:export\s+)?interface\s+(\w+)`), KindInterface, 1, false},
		{regexp.MustCompile(`^(?:export\s+)?class\s+(\w+)`), KindClass, 1, false},
		{regexp.MustCompile(`^(?:export\s+)?(?:async\s+)?function\s+(\w+)`), KindFunction, 1, false},
		{regexp.MustCompile(`^(?:export\s+)?const\s+(\w+)\s*=\s*(?:async\s*)?\(`), KindFunction, 1, false},
	},
	"Java": {
		{regexp.MustCompile(`^\s*(?:public|private|protected)?\s*(?:static\s+)?(?:final\s+)?class\s+(\w+)`), KindClass, 1, false},
		{regexp.MustCompile(`^\s*(?:public|private|protected)?\s*(?:static\s+)?(?:final\s+)?interface\s+(\w+)`), KindInterface, 1, false},
		{regexp.MustCompile(`^\s+(?:public|private|protected)\s+.*\s(\w+)\s*\([^)]*\)\s*\{?\s*$`), KindMethod, 1, true},
	},
	"Ruby": {
		{regexp.MustCompile(`^class\s+(\w+)`), KindClass, 1, false},
		{regexp.MustCompile(`^\s*def\s+(\w+)`), KindFunction, 1, false},
	},
	"Rust": {
		{regexp.MustCompile(`^(?:pub\s+)?struct\s+(\w+)`), KindClass, 1, false},
		{regexp.MustCompile(`^(?:pub\s+)?trait\s+(\w+)`), KindInterface, 1, false},
		{regexp.MustCompile(`^(?:pub\s+)?fn\s+(\w+)`), KindFunction, 1, false},
	},
	"C": {
		{regexp.MustCompile(`^\w[\w\s\*]*\s(\w+)\s*\([^)]*\)\s*\{`), KindFunction, 1, false},
	},
	"C++": {
		{regexp.MustCompile(`^class\s+(\w+)`), KindClass, 1, false},
		{regexp.MustCompile(`^\w[\w\s\*:]*\s(\w+)\s*\([^)]*\)\s*\{`), KindFunction, 1, false},
	},
}

// Extract runs the appropriate declaration-pattern table for language
// against content, line by line. Declarations that don't match any known
// pattern are simply not extracted — per §4.6, ambiguity is resolved by
// omission/low confidence, never by failing the file.
func Extract(language string, content string) []Symbol {
	table, ok := patterns[language]
	if !ok {
		return nil
	}

	var symbols []Symbol
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			continue
		}

		for _, p := range table {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			symbols = append(symbols, Symbol{
				Type:       p.kind,
				Name:       m[p.nameIdx],
				Signature:  strings.TrimSpace(trimmed),
				LineNumber: lineNum,
				Nested:     p.indented,
			})
			break
		}
	}
	return symbols
}
