package symbols

import "testing"

func TestExtractImports_GoResolvesKnownRelativeFile(t *testing.T) {
	known := map[string]bool{"internal/util/helper.go": true}
	content := `import (
	"internal/util/helper"
)`
	imports := ExtractImports("Go", "internal/main.go", content, known)
	if len(imports) != 1 {
		t.Fatalf("expected 1 import, got %d: %+v", len(imports), imports)
	}
	if imports[0].Kind != ImportFile || imports[0].Target != "internal/util/helper.go" {
		t.Errorf("unexpected import: %+v", imports[0])
	}
	if imports[0].Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", imports[0].Confidence)
	}
}

func TestExtractImports_GoUnresolvedDotlessPathFallsBackToLibraryAtLowConfidence(t *testing.T) {
	content := `"fmt"`
	imports := ExtractImports("Go", "internal/main.go", content, map[string]bool{})
	if len(imports) != 1 {
		t.Fatalf("expected 1 import, got %d", len(imports))
	}
	if imports[0].Kind != ImportLibrary || imports[0].Target != "fmt" {
		t.Errorf("unexpected import: %+v", imports[0])
	}
	if imports[0].Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", imports[0].Confidence)
	}
}

func TestExtractImports_GoDottedPathIsALibraryImport(t *testing.T) {
	content := `"github.com/spf13/cobra"`
	imports := ExtractImports("Go", "main.go", content, map[string]bool{})
	if len(imports) != 1 {
		t.Fatalf("expected 1 import, got %d", len(imports))
	}
	if imports[0].Kind != ImportLibrary || imports[0].Target != "cobra" {
		t.Errorf("unexpected import: %+v", imports[0])
	}
	if imports[0].Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", imports[0].Confidence)
	}
}

func TestExtractImports_PythonRelativeImport(t *testing.T) {
	known := map[string]bool{"pkg/util.py": true}
	content := "from .util import helper"
	imports := ExtractImports("Python", "pkg/main.py", content, known)
	if len(imports) != 1 {
		t.Fatalf("expected 1 import, got %d", len(imports))
	}
	if imports[0].Kind != ImportFile || imports[0].Target != "pkg/util.py" {
		t.Errorf("unexpected import: %+v", imports[0])
	}
}

func TestExtractImports_JavaScriptRelativeImportUnresolved(t *testing.T) {
	content := `import foo from './missing'`
	imports := ExtractImports("JavaScript", "src/main.js", content, map[string]bool{})
	if len(imports) != 1 {
		t.Fatalf("expected 1 import, got %d", len(imports))
	}
	if imports[0].Kind != ImportLibrary || imports[0].Confidence != 0.5 {
		t.Errorf("unexpected import: %+v", imports[0])
	}
}

func TestExtractImports_UnknownLanguageReturnsNil(t *testing.T) {
	imports := ExtractImports("COBOL", "main.cbl", "anything", nil)
	if imports != nil {
		t.Errorf("expected nil for an unrecognised language, got %+v", imports)
	}
}

func TestLibraryName_GoTakesLastPathSegment(t *testing.T) {
	if got := libraryName("Go", "github.com/spf13/cobra"); got != "cobra" {
		t.Errorf("libraryName = %q, want cobra", got)
	}
}

func TestLibraryName_NonGoKeepsFullSpecifier(t *testing.T) {
	if got := libraryName("JavaScript", "@org/pkg"); got != "@org/pkg" {
		t.Errorf("libraryName = %q, want @org/pkg (scope kept whole)", got)
	}
}
