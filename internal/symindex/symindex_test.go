package symindex

import (
	"testing"

	"github.com/mvp-joe/project-cortex/internal/model"
)

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(idx.Close)
	idx.Load([]Entry{
		{Name: "parseConfig", Kind: model.KindFunction, FilePath: "config.ts"},
		{Name: "parseArgs", Kind: model.KindFunction, FilePath: "cli.ts"},
		{Name: "Config", Kind: model.KindClass, FilePath: "config.ts"},
	})
	return idx
}

func TestExact(t *testing.T) {
	idx := buildTestIndex(t)
	got := idx.Exact("Config")
	if len(got) != 1 || got[0].FilePath != "config.ts" {
		t.Errorf("Exact() = %+v", got)
	}
}

func TestPrefix(t *testing.T) {
	idx := buildTestIndex(t)
	got := idx.Prefix("parse")
	if len(got) != 2 {
		t.Errorf("Prefix() = %+v, want 2 matches", got)
	}
}

func TestSubstring(t *testing.T) {
	idx := buildTestIndex(t)
	got := idx.Substring("Conf")
	names := map[string]bool{}
	for _, e := range got {
		names[e.Name] = true
	}
	if !names["parseConfig"] || !names["Config"] {
		t.Errorf("Substring() = %+v, want parseConfig and Config", got)
	}
}

func TestFuzzy(t *testing.T) {
	idx := buildTestIndex(t)
	got := idx.Fuzzy("parsConfig", 2)
	if len(got) == 0 || got[0].Name != "parseConfig" {
		t.Errorf("Fuzzy() = %+v, want parseConfig first", got)
	}
}

func TestStatsSummary(t *testing.T) {
	idx := buildTestIndex(t)
	stats := idx.StatsSummary()
	if stats.TotalEntries != 3 || stats.UniqueNames != 3 {
		t.Errorf("StatsSummary() = %+v", stats)
	}
}
