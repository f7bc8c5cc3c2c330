package ranker

import (
	"context"
	"errors"
	"testing"

	"github.com/mvp-joe/project-cortex/internal/model"
)

func candidate(filePath, name string, rank int) model.RankingCandidate {
	return model.RankingCandidate{FilePath: filePath, SymbolName: name, SourceRank: rank}
}

func fixedLexical(results []model.RankingCandidate) LexicalSearchFunc {
	return func(ctx context.Context, query string, limit int) ([]model.RankingCandidate, error) {
		return results, nil
	}
}

func fixedVector(results []model.RankingCandidate) VectorSearchFunc {
	return func(ctx context.Context, query string, limit int) ([]model.RankingCandidate, error) {
		return results, nil
	}
}

func TestFuseBothSourcesOutscoreSingleSource(t *testing.T) {
	lex := []model.RankingCandidate{candidate("a.ts", "alpha", 0), candidate("b.ts", "beta", 1)}
	vec := []model.RankingCandidate{candidate("a.ts", "alpha", 0), candidate("c.ts", "gamma", 1)}

	r := New(DefaultConfig(), fixedLexical(lex), fixedVector(vec))
	results, _, err := r.Search(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) == 0 || results[0].Candidate.SymbolName != "alpha" {
		t.Fatalf("expected alpha (present on both sides) to rank first, got %+v", results)
	}
	if results[0].Breakdown.LexicalContribution == 0 || results[0].Breakdown.VectorContribution == 0 {
		t.Errorf("expected alpha's score breakdown to carry a nonzero contribution from both sides, got %+v", results[0].Breakdown)
	}
}

func TestSearchReturnsLexicalOnlyWhenVectorFails(t *testing.T) {
	lex := []model.RankingCandidate{candidate("a.ts", "alpha", 0)}
	cfg := DefaultConfig()
	r := New(cfg, fixedLexical(lex), func(ctx context.Context, query string, limit int) ([]model.RankingCandidate, error) {
		return nil, errors.New("vector backend down")
	})

	results, _, err := r.Search(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 || results[0].Candidate.SymbolName != "alpha" {
		t.Errorf("expected lexical-only fallback, got %+v", results)
	}
}

func TestSearchPropagatesLexicalError(t *testing.T) {
	r := New(DefaultConfig(), func(ctx context.Context, query string, limit int) ([]model.RankingCandidate, error) {
		return nil, errors.New("lexical backend down")
	}, fixedVector(nil))

	_, _, err := r.Search(context.Background(), "q", 10)
	if err == nil {
		t.Fatal("expected error when lexical search fails")
	}
}

func TestDiversifyCapsPerFileAndBackfills(t *testing.T) {
	ranked := []model.RankedResult{
		{Candidate: candidate("a.ts", "one", 0), FinalScore: 1.0},
		{Candidate: candidate("a.ts", "two", 1), FinalScore: 0.9},
		{Candidate: candidate("a.ts", "three", 2), FinalScore: 0.8},
		{Candidate: candidate("a.ts", "four", 3), FinalScore: 0.7},
		{Candidate: candidate("b.ts", "five", 4), FinalScore: 0.6},
	}

	out := diversify(ranked, 3, 5)
	if len(out) != 5 {
		t.Fatalf("expected backfill to reach limit 5, got %d: %+v", len(out), out)
	}

	capped := map[string]int{}
	for _, r := range out[:3] {
		capped[r.Candidate.FilePath]++
	}
	if capped["a.ts"] != 3 {
		t.Errorf("expected exactly 3 a.ts entries before backfill, got %d", capped["a.ts"])
	}
}

func TestDiversifyDefaultsCapWhenUnset(t *testing.T) {
	ranked := []model.RankedResult{
		{Candidate: candidate("a.ts", "one", 0), FinalScore: 1.0},
		{Candidate: candidate("a.ts", "two", 1), FinalScore: 0.9},
	}
	out := diversify(ranked, 0, 0)
	if len(out) != 2 {
		t.Fatalf("expected default cap to admit both entries, got %d", len(out))
	}
}

func TestEarlyTerminateLimitsFusedResults(t *testing.T) {
	lex := []model.RankingCandidate{
		candidate("a.ts", "one", 0),
		candidate("b.ts", "two", 1),
		candidate("c.ts", "three", 2),
	}
	cfg := DefaultConfig()
	cfg.EarlyTerminate = 1
	r := New(cfg, fixedLexical(lex), fixedVector(nil))

	results, _, err := r.Search(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected early termination to cap at 1 result, got %d", len(results))
	}
}

func TestMonitorTotalMsSumsPhases(t *testing.T) {
	m := Monitor{LexicalSearchTimeMs: 10, VectorSearchTimeMs: 20, RankingTimeMs: 5}
	if m.TotalMs() != 35 {
		t.Errorf("TotalMs() = %d, want 35", m.TotalMs())
	}
}

// TestFuseTieBrokenByKindPriority mirrors the worked example of lexical
// [A@1, B@2, C@3] and vector [A@1, D@2, E@3]: A fuses from both sides and
// leads, B and D tie on fused score (single-source RRF contributions with
// alpha == beta), and the kind-priority tie-breaker (function > class)
// decides their order.
func TestFuseTieBrokenByKindPriority(t *testing.T) {
	lex := []model.RankingCandidate{
		{FilePath: "a.go", SymbolName: "A"},
		{FilePath: "b.go", SymbolName: "B", SymbolKind: "class"},
		{FilePath: "c.go", SymbolName: "C"},
	}
	vec := []model.RankingCandidate{
		{FilePath: "a.go", SymbolName: "A"},
		{FilePath: "d.go", SymbolName: "D", SymbolKind: "function"},
		{FilePath: "e.go", SymbolName: "E"},
	}

	results := fuse(lex, vec, DefaultConfig())

	if len(results) != 5 {
		t.Fatalf("expected 5 fused results, got %d: %+v", len(results), results)
	}
	if results[0].Candidate.SymbolName != "A" {
		t.Fatalf("expected A (both sources) to rank first, got %s", results[0].Candidate.SymbolName)
	}
	if results[1].Candidate.SymbolName != "D" || results[2].Candidate.SymbolName != "B" {
		t.Fatalf("expected D (function) before B (class) on the tie, got %s then %s",
			results[1].Candidate.SymbolName, results[2].Candidate.SymbolName)
	}
	found := false
	for _, tb := range results[2].TieBreakers {
		if tb == "kind-priority" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected kind-priority tiebreaker recorded on B, got %v", results[2].TieBreakers)
	}
}

func TestTieBreakLessSourceRankProductBeatsSingleSideTie(t *testing.T) {
	cfg := DefaultConfig()
	a := &fuseEntry{candidate: model.RankingCandidate{FilePath: "a.go", SymbolName: "A"}, lexRank: 1, vecRank: 1}
	b := &fuseEntry{candidate: model.RankingCandidate{FilePath: "b.go", SymbolName: "B"}, lexRank: 2, vecRank: 2}

	less, tag := tieBreakLess(a, b, cfg)
	if tag != "source-rank-product" {
		t.Fatalf("expected source-rank-product to decide equal-kind/path candidates, got tag %q", tag)
	}
	if !less {
		t.Errorf("expected a (lexRank 1) to win the higher source-rank product")
	}
}

func TestPathRankPrefersEarlierPrefix(t *testing.T) {
	priority := []string{"src/", "test/", "docs/"}
	if got := pathRank("src/foo.go", priority); got != 0 {
		t.Errorf("pathRank(src/foo.go) = %d, want 0", got)
	}
	if got := pathRank("test/foo_test.go", priority); got != 1 {
		t.Errorf("pathRank(test/foo_test.go) = %d, want 1", got)
	}
	if got := pathRank("README.md", priority); got != len(priority) {
		t.Errorf("pathRank(unmatched) = %d, want %d (lowest priority)", got, len(priority))
	}
}
