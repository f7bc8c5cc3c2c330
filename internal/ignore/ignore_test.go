package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
}

func TestBuiltinPatternsAlwaysIgnored(t *testing.T) {
	root := t.TempDir()
	f, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !f.IsIgnored(".codeindex/index.db") {
		t.Error("expected state directory to be ignored")
	}
	if !f.IsIgnored("debug.log") {
		t.Error("expected *.log to be ignored")
	}
}

func TestRootGitignoreExcludesPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "node_modules/\n*.tmp\n")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "")

	f, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !f.IsIgnored("node_modules/pkg/index.js") {
		t.Error("expected node_modules/ to be ignored recursively")
	}
	if !f.IsIgnored("scratch.tmp") {
		t.Error("expected *.tmp to be ignored")
	}
	if f.IsIgnored("src/main.go") {
		t.Error("src/main.go should not be ignored")
	}
}

func TestNegationReincludesPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\n!important.log\n")

	f, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !f.IsIgnored("debug.log") {
		t.Error("expected debug.log to be ignored")
	}
	if f.IsIgnored("important.log") {
		t.Error("expected important.log to be re-included by negation")
	}
}

func TestNestedGitignoreInheritsAndAdds(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.tmp\n")
	writeFile(t, filepath.Join(root, "sub", ".gitignore"), "local.secret\n")
	writeFile(t, filepath.Join(root, "sub", "file.go"), "")

	f, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !f.IsIgnored("sub/scratch.tmp") {
		t.Error("expected root pattern to apply within nested directory")
	}
	if !f.IsIgnored("sub/local.secret") {
		t.Error("expected nested .gitignore pattern to apply")
	}
	if f.IsIgnored("local.secret") {
		t.Error("nested pattern should not leak up to the root scope")
	}
}

func TestGitDirectoryAlwaysIgnored(t *testing.T) {
	root := t.TempDir()
	f, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !f.IsIgnored(".git/HEAD") {
		t.Error("expected .git/ contents to be ignored")
	}
}
