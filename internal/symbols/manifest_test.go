package symbols

import "testing"

func TestParseManifest_DispatchesByFilename(t *testing.T) {
	if libs := ParseManifest("go.mod", []byte("module x\n\nrequire github.com/spf13/cobra v1.8.1\n")); len(libs) != 1 {
		t.Errorf("expected go.mod to dispatch to parseGoMod, got %v", libs)
	}
	if libs := ParseManifest("unknown.txt", []byte("anything")); libs != nil {
		t.Errorf("expected an unrecognised manifest to yield nil, got %v", libs)
	}
}

func TestParseGoMod_SingleLineRequire(t *testing.T) {
	content := []byte("module x\n\ngo 1.22\n\nrequire github.com/spf13/cobra v1.8.1\n")
	libs := parseGoMod("go.mod", content)
	if len(libs) != 1 {
		t.Fatalf("expected 1 lib, got %d: %+v", len(libs), libs)
	}
	if libs[0].Name != "github.com/spf13/cobra" || libs[0].Version != "v1.8.1" {
		t.Errorf("unexpected lib: %+v", libs[0])
	}
}

func TestParseGoMod_RequireBlock(t *testing.T) {
	content := []byte(`module x

require (
	github.com/spf13/cobra v1.8.1
	golang.org/x/term v0.36.0 // indirect
)
`)
	libs := parseGoMod("go.mod", content)
	if len(libs) != 2 {
		t.Fatalf("expected 2 libs, got %d: %+v", len(libs), libs)
	}
	if libs[0].Name != "github.com/spf13/cobra" {
		t.Errorf("libs[0] = %+v", libs[0])
	}
	if libs[1].Name != "golang.org/x/term" || libs[1].Version != "v0.36.0" {
		t.Errorf("libs[1] = %+v", libs[1])
	}
}

func TestParsePackageJSON_ReadsDependenciesAndDevDependencies(t *testing.T) {
	content := []byte(`{
		"dependencies": {"react": "^18.0.0"},
		"devDependencies": {"jest": "^29.0.0"}
	}`)
	libs := parsePackageJSON("package.json", content)
	if len(libs) != 2 {
		t.Fatalf("expected 2 libs, got %d: %+v", len(libs), libs)
	}
}

func TestParsePackageJSON_InvalidJSONYieldsNil(t *testing.T) {
	if libs := parsePackageJSON("package.json", []byte("not json")); libs != nil {
		t.Errorf("expected nil for invalid JSON, got %v", libs)
	}
}

func TestParseRequirementsTxt_SkipsCommentsAndIncludes(t *testing.T) {
	content := []byte("# comment\n-r base.txt\nrequests==2.31.0\nflask>=2.0\nnumpy\n\n")
	libs := parseRequirementsTxt("requirements.txt", content)
	if len(libs) != 3 {
		t.Fatalf("expected 3 libs, got %d: %+v", len(libs), libs)
	}
	if libs[0].Name != "requests" || libs[0].Version != "2.31.0" {
		t.Errorf("libs[0] = %+v", libs[0])
	}
	if libs[1].Name != "flask" || libs[1].Version != "2.0" {
		t.Errorf("libs[1] = %+v", libs[1])
	}
	if libs[2].Name != "numpy" || libs[2].Version != "" {
		t.Errorf("libs[2] = %+v", libs[2])
	}
}

func TestParseCargoToml_ReadsPlainAndInlineTableForms(t *testing.T) {
	content := []byte(`[package]
name = "myapp"

[dependencies]
serde = "1.0"
tokio = { version = "1.35", features = ["full"] }

[dev-dependencies]
criterion = "0.5"
`)
	libs := parseCargoToml("Cargo.toml", content)
	if len(libs) != 3 {
		t.Fatalf("expected 3 libs, got %d: %+v", len(libs), libs)
	}
	if libs[0].Name != "serde" || libs[0].Version != "1.0" {
		t.Errorf("libs[0] = %+v", libs[0])
	}
	if libs[1].Name != "tokio" || libs[1].Version != "1.35" {
		t.Errorf("libs[1] = %+v", libs[1])
	}
	if libs[2].Name != "criterion" || libs[2].Version != "0.5" {
		t.Errorf("libs[2] = %+v", libs[2])
	}
}
