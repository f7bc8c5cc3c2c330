package incremental

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/project-cortex/internal/astdoc"
	"github.com/mvp-joe/project-cortex/internal/embedding"
	"github.com/mvp-joe/project-cortex/internal/hybridindex"
	"github.com/mvp-joe/project-cortex/internal/ignore"
	"github.com/mvp-joe/project-cortex/internal/store"
	"github.com/mvp-joe/project-cortex/internal/symindex"
	"github.com/mvp-joe/project-cortex/internal/vcsdiff"
)

func newTestEngine(t *testing.T, root string) *Engine {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "index.db"), 256)
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	astDocs, err := astdoc.Open(filepath.Join(t.TempDir(), "ast"))
	if err != nil {
		t.Fatalf("astdoc.Open() error: %v", err)
	}

	symbols, err := symindex.New()
	if err != nil {
		t.Fatalf("symindex.New() error: %v", err)
	}
	t.Cleanup(symbols.Close)

	hybrid, err := hybridindex.Open(st, hybridindex.NewFTSBackend(st), embedding.NewLightProvider())
	if err != nil {
		t.Fatalf("hybridindex.Open() error: %v", err)
	}

	ignoreFilter, err := ignore.Load(root)
	if err != nil {
		t.Fatalf("ignore.Load() error: %v", err)
	}

	return New(root, ignoreFilter, st, astDocs, symbols, hybrid)
}

func writeSource(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("MkdirAll() error: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
}

func TestFullIndexProcessesFiles(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.ts", "export function add(a, b) {\n  return a + b;\n}\n")
	writeSource(t, root, "strings.ts", "export function concat(a, b) {\n  return a + b;\n}\n")

	e := newTestEngine(t, root)
	counters, err := e.FullIndex(context.Background())
	if err != nil {
		t.Fatalf("FullIndex() error: %v", err)
	}
	if counters.FilesAdded != 2 {
		t.Errorf("FilesAdded = %d, want 2", counters.FilesAdded)
	}
	if len(counters.Errors) != 0 {
		t.Errorf("unexpected errors: %v", counters.Errors)
	}
}

func TestRefreshByMtimeSkipsUnchangedFiles(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.ts", "export function add(a, b) {\n  return a + b;\n}\n")

	e := newTestEngine(t, root)
	if _, err := e.FullIndex(context.Background()); err != nil {
		t.Fatalf("FullIndex() error: %v", err)
	}

	counters, err := e.RefreshByMtime(context.Background())
	if err != nil {
		t.Fatalf("RefreshByMtime() error: %v", err)
	}
	if counters.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", counters.FilesSkipped)
	}
	if counters.Mutations() != 0 {
		t.Errorf("expected no mutations on an unchanged refresh, got %d", counters.Mutations())
	}
}

func TestRefreshByMtimeDetectsAddAndDelete(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "math.ts", "export function add(a, b) {\n  return a + b;\n}\n")

	e := newTestEngine(t, root)
	if _, err := e.FullIndex(context.Background()); err != nil {
		t.Fatalf("FullIndex() error: %v", err)
	}

	if err := os.Remove(filepath.Join(root, "math.ts")); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	writeSource(t, root, "strings.ts", "export function concat(a, b) {\n  return a + b;\n}\n")

	counters, err := e.RefreshByMtime(context.Background())
	if err != nil {
		t.Fatalf("RefreshByMtime() error: %v", err)
	}
	if counters.FilesAdded != 1 {
		t.Errorf("FilesAdded = %d, want 1", counters.FilesAdded)
	}
	if counters.FilesDeleted != 1 {
		t.Errorf("FilesDeleted = %d, want 1", counters.FilesDeleted)
	}
}

func TestRefreshByVCSDiffOrdersDeletesBeforeAdds(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "old.ts", "export function one() {\n  return 1;\n}\n")

	e := newTestEngine(t, root)
	if _, err := e.FullIndex(context.Background()); err != nil {
		t.Fatalf("FullIndex() error: %v", err)
	}

	if err := os.Rename(filepath.Join(root, "old.ts"), filepath.Join(root, "new.ts")); err != nil {
		t.Fatalf("Rename() error: %v", err)
	}

	diff := &vcsdiff.Diff{
		DiffSource: vcsdiff.SourceWorkingDir,
		ChangedFiles: []vcsdiff.ChangedFile{
			{Status: vcsdiff.StatusRenamed, OldPath: "old.ts", Path: "new.ts"},
		},
	}

	counters, err := e.RefreshByVCSDiff(context.Background(), diff)
	if err != nil {
		t.Fatalf("RefreshByVCSDiff() error: %v", err)
	}
	if counters.FilesDeleted != 1 || counters.FilesAdded != 1 {
		t.Errorf("counters = %+v, want 1 delete + 1 add", counters)
	}
}

func TestRefreshByVCSDiffNilDiffErrors(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine(t, root)
	if _, err := e.RefreshByVCSDiff(context.Background(), nil); err == nil {
		t.Error("expected error for nil diff")
	}
}
