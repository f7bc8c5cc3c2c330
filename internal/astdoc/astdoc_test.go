package astdoc

import (
	"testing"

	"github.com/mvp-joe/project-cortex/internal/model"
)

func TestWriteReadRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	doc := Document{
		FilePath: "src/math.ts",
		Language: "typescript",
		Symbols: map[string][]model.Symbol{
			"function": {{Name: "add", Kind: model.KindFunction}},
		},
	}
	if err := s.Write(doc); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := s.Read("src/math.ts")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(got.Symbols["function"]) != 1 || got.Symbols["function"][0].Name != "add" {
		t.Errorf("Read() = %+v, want one function symbol named add", got)
	}
}

func TestListAllAndDelete(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	for _, path := range []string{"a.ts", "nested/b.ts"} {
		if err := s.Write(Document{FilePath: path, Language: "typescript"}); err != nil {
			t.Fatalf("Write(%q) error: %v", path, err)
		}
	}

	all, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListAll() = %v, want 2 entries", all)
	}

	if err := s.Delete("a.ts"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	all, err = s.ListAll()
	if err != nil {
		t.Fatalf("ListAll() after delete error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("ListAll() after delete = %v, want 1 entry", all)
	}
}

func TestClear(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := s.Write(Document{FilePath: "a.ts", Language: "typescript"}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	all, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("ListAll() after Clear() = %v, want empty", all)
	}
}
