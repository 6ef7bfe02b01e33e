package gitlog

import "testing"

func TestDetectLanguage_KnownExtensions(t *testing.T) {
	cases := map[string]string{
		"main.go":        "Go",
		"script.py":      "Python",
		"app.tsx":        "TypeScript",
		"Main.java":      "Java",
		"lib.rs":         "Rust",
		"README.MD":      "md",
		"noext":          "unknown",
		"archive.tar.gz": "gz",
	}
	for path, want := range cases {
		if got := DetectLanguage(path); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestIsCodeExtension_TrueForSourceFiles(t *testing.T) {
	for _, path := range []string{"main.go", "app.py", "index.ts", "lib.rs", "Main.java"} {
		if !IsCodeExtension(path) {
			t.Errorf("expected %q to be classified as code", path)
		}
	}
}

func TestIsCodeExtension_FalseForConfigAndDataFiles(t *testing.T) {
	for _, path := range []string{"config.json", "values.yaml", "Cargo.lock", "style.css", "page.html", "notes.txt", "noext"} {
		if IsCodeExtension(path) {
			t.Errorf("expected %q to NOT be classified as code", path)
		}
	}
}
