// Package ranker fuses lexical and vector search candidates into one
// ranked result list using Reciprocal Rank Fusion, then diversifies by
// file path and applies deterministic tie-breakers.
package ranker

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mvp-joe/project-cortex/internal/model"
)

// Config tunes the fusion, diversification, and tie-break behavior (spec
// §4.J), mirroring the ranking config schema of spec §6:
// {fusion {alpha, beta, k}, diversification {perFileCap},
//  tieBreakers {epsilon, kindPriority[], pathPriority[]}}.
type Config struct {
	Alpha          float64 // lexical weight, default 0.5
	Beta           float64 // vector weight, default 0.5
	K              float64 // RRF rank-damping constant, default 60
	PerFileCap     int     // max results per file before backfill, default 3
	SLACutoffMs    int64   // abandon the slow side past this budget, default 300
	EarlyTerminate int     // stop merging once this many results are ranked, 0 = unlimited

	// Epsilon is how close two final scores must be to be treated as a
	// tie subject to the tie-breakers below, rather than ranked on score
	// alone.
	Epsilon float64
	// KindPriority orders symbol kinds from most to least preferred for
	// tie-breaking (spec §4.J: "function > class > variable").
	KindPriority []string
	// PathPriority orders file-path prefixes from most to least preferred
	// for tie-breaking (spec §4.J: "src/ > test/ > docs/").
	PathPriority []string
}

// DefaultConfig mirrors spec §4.J's stated defaults.
func DefaultConfig() Config {
	return Config{
		Alpha: 0.5, Beta: 0.5, K: 60, PerFileCap: 3, SLACutoffMs: 300,
		Epsilon:      1e-6,
		KindPriority: []string{"function", "class", "variable"},
		PathPriority: []string{"src/", "test/", "docs/"},
	}
}

func (c Config) epsilon() float64 {
	if c.Epsilon > 0 {
		return c.Epsilon
	}
	return DefaultConfig().Epsilon
}

// Monitor accumulates per-query timing counters, surfaced to callers for
// logging/metrics (spec §4.J Performance Monitor).
type Monitor struct {
	LexicalSearchTimeMs int64
	VectorSearchTimeMs  int64
	RankingTimeMs       int64
}

// TotalMs is the cumulative wall time across all three phases.
func (m Monitor) TotalMs() int64 {
	return m.LexicalSearchTimeMs + m.VectorSearchTimeMs + m.RankingTimeMs
}

// LexicalSearchFunc and VectorSearchFunc are the two candidate sources a
// Ranker fuses. Swappable so callers can point them at hybridindex.Index,
// a mock, or any other source satisfying the same shapes.
type LexicalSearchFunc func(ctx context.Context, query string, limit int) ([]model.RankingCandidate, error)
type VectorSearchFunc func(ctx context.Context, query string, limit int) ([]model.RankingCandidate, error)

// Ranker runs a hybrid search and fuses the two result sets.
type Ranker struct {
	cfg     Config
	lexical LexicalSearchFunc
	vector  VectorSearchFunc
	nowMs   func() int64
}

func New(cfg Config, lexical LexicalSearchFunc, vector VectorSearchFunc) *Ranker {
	return &Ranker{cfg: cfg, lexical: lexical, vector: vector, nowMs: nowMillis}
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// Search runs both candidate sources (falling back to lexical-only if the
// vector side blows through the SLA cutoff), fuses with RRF, diversifies
// by file, and returns up to limit ranked results.
func (r *Ranker) Search(ctx context.Context, query string, limit int) ([]model.RankedResult, Monitor, error) {
	var mon Monitor

	lexStart := r.nowMs()
	lexCandidates, err := r.lexical(ctx, query, limit*4)
	mon.LexicalSearchTimeMs = r.nowMs() - lexStart
	if err != nil {
		return nil, mon, err
	}

	var vecCandidates []model.RankingCandidate
	vecStart := r.nowMs()
	if mon.LexicalSearchTimeMs < r.cutoff() {
		vecCandidates, err = r.vector(ctx, query, limit*4)
		mon.VectorSearchTimeMs = r.nowMs() - vecStart
		if err != nil || mon.LexicalSearchTimeMs+mon.VectorSearchTimeMs > r.cutoff() {
			vecCandidates = nil
		}
	}

	rankStart := r.nowMs()
	fused := fuse(lexCandidates, vecCandidates, r.cfg)
	diversified := diversify(fused, r.cfg.PerFileCap, limit)
	mon.RankingTimeMs = r.nowMs() - rankStart

	if r.cfg.EarlyTerminate > 0 && len(diversified) > r.cfg.EarlyTerminate {
		diversified = diversified[:r.cfg.EarlyTerminate]
	}
	if len(diversified) > limit {
		diversified = diversified[:limit]
	}
	return diversified, mon, nil
}

func (r *Ranker) cutoff() int64 {
	if r.cfg.SLACutoffMs > 0 {
		return r.cfg.SLACutoffMs
	}
	return DefaultConfig().SLACutoffMs
}

type key struct {
	filePath string
	line     int
	name     string
}

func candidateKey(c model.RankingCandidate) key {
	return key{filePath: c.FilePath, line: c.LineNumber, name: c.SymbolName}
}

// fuseEntry is the per-candidate bookkeeping fuse needs: the RRF
// contribution from each side plus the rank that produced it, the latter
// feeding the "source-rank product" tie-breaker.
type fuseEntry struct {
	candidate model.RankingCandidate
	lexicalC  float64
	vectorC   float64
	lexRank   int // 1-indexed rank in the lexical list, 0 if absent
	vecRank   int // 1-indexed rank in the vector list, 0 if absent
}

func (e *fuseEntry) sourceRankProduct() float64 {
	lex, vec := 0.0, 0.0
	if e.lexRank > 0 {
		lex = 1.0 / float64(e.lexRank)
	}
	if e.vecRank > 0 {
		vec = 1.0 / float64(e.vecRank)
	}
	return lex * vec
}

// fuse combines lexical and vector candidate lists with Reciprocal Rank
// Fusion: score(d) = alpha/(k+rank_lex(d)) + beta/(k+rank_vec(d)), using 0
// contribution from a side that did not surface the candidate. Results
// within cfg.Epsilon of each other are ordered by the spec §4.J tie-break
// chain instead of by score alone.
func fuse(lexical, vector []model.RankingCandidate, cfg Config) []model.RankedResult {
	byKey := map[key]*fuseEntry{}
	var order []key

	for rank, c := range lexical {
		k := candidateKey(c)
		e, ok := byKey[k]
		if !ok {
			e = &fuseEntry{candidate: c}
			byKey[k] = e
			order = append(order, k)
		}
		e.lexicalC = cfg.Alpha / (cfg.K + float64(rank+1))
		e.lexRank = rank + 1
	}
	for rank, c := range vector {
		k := candidateKey(c)
		e, ok := byKey[k]
		if !ok {
			e = &fuseEntry{candidate: c}
			byKey[k] = e
			order = append(order, k)
		}
		e.vectorC = cfg.Beta / (cfg.K + float64(rank+1))
		e.vecRank = rank + 1
	}

	results := make([]model.RankedResult, 0, len(order))
	for _, k := range order {
		e := byKey[k]
		results = append(results, model.RankedResult{
			Candidate:  e.candidate,
			FinalScore: e.lexicalC + e.vectorC,
			Breakdown: model.ScoreBreakdown{
				LexicalContribution: e.lexicalC,
				VectorContribution:  e.vectorC,
			},
		})
	}

	eps := cfg.epsilon()
	sort.SliceStable(results, func(i, j int) bool {
		a, b := byKey[candidateKey(results[i].Candidate)], byKey[candidateKey(results[j].Candidate)]
		if !scoresTie(results[i].FinalScore, results[j].FinalScore, eps) {
			return results[i].FinalScore > results[j].FinalScore
		}
		less, _ := tieBreakLess(a, b, cfg)
		return less
	})

	// Record which tie-breaker actually separated each within-epsilon
	// neighbor, so callers can see why a borderline result landed where
	// it did (spec §4.J: "Record which tie-breakers fired").
	for i := 1; i < len(results); i++ {
		if !scoresTie(results[i].FinalScore, results[i-1].FinalScore, eps) {
			continue
		}
		a := byKey[candidateKey(results[i-1].Candidate)]
		b := byKey[candidateKey(results[i].Candidate)]
		if _, tag := tieBreakLess(a, b, cfg); tag != "" {
			results[i].TieBreakers = append(results[i].TieBreakers, tag)
		}
	}
	return results
}

func scoresTie(a, b, epsilon float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= epsilon
}

// tieBreakLess orders two equally (within epsilon) scored candidates per
// spec §4.J: higher source-rank product, symbol-kind preference, path
// preference, larger file size, newer lastModified, and finally symbol
// name for full determinism. It returns whether a sorts before b and the
// name of the criterion that decided it ("" if only the final fallback
// fired).
func tieBreakLess(a, b *fuseEntry, cfg Config) (bool, string) {
	if pa, pb := a.sourceRankProduct(), b.sourceRankProduct(); pa != pb {
		return pa > pb, "source-rank-product"
	}
	if ka, kb := kindRank(a.candidate.SymbolKind, cfg.KindPriority), kindRank(b.candidate.SymbolKind, cfg.KindPriority); ka != kb {
		return ka < kb, "kind-priority"
	}
	if ra, rb := pathRank(a.candidate.FilePath, cfg.PathPriority), pathRank(b.candidate.FilePath, cfg.PathPriority); ra != rb {
		return ra < rb, "path-priority"
	}
	if a.candidate.FileSize != b.candidate.FileSize {
		return a.candidate.FileSize > b.candidate.FileSize, "file-size"
	}
	if a.candidate.LastModified != b.candidate.LastModified {
		return a.candidate.LastModified > b.candidate.LastModified, "last-modified"
	}
	return a.candidate.SymbolName < b.candidate.SymbolName, ""
}

// kindRank returns priority's index for kind, or len(priority) (lowest
// priority) when kind isn't listed.
func kindRank(kind string, priority []string) int {
	for i, k := range priority {
		if k == kind {
			return i
		}
	}
	return len(priority)
}

// pathRank returns the index of the first priority prefix contained in
// filePath, or len(priority) when none match.
func pathRank(filePath string, priority []string) int {
	for i, prefix := range priority {
		if strings.Contains(filePath, prefix) {
			return i
		}
	}
	return len(priority)
}

// diversify enforces a per-file result cap, backfilling from the
// remaining ranked pool once every file has contributed up to the cap if
// the capped list is still under limit.
func diversify(ranked []model.RankedResult, perFileCap, limit int) []model.RankedResult {
	if perFileCap <= 0 {
		perFileCap = 3
	}

	var primary, overflow []model.RankedResult
	perFile := map[string]int{}
	for _, r := range ranked {
		if perFile[r.Candidate.FilePath] < perFileCap {
			primary = append(primary, r)
			perFile[r.Candidate.FilePath]++
		} else {
			overflow = append(overflow, r)
		}
	}

	if limit > 0 && len(primary) < limit {
		need := limit - len(primary)
		if need > len(overflow) {
			need = len(overflow)
		}
		primary = append(primary, overflow[:need]...)
	}
	return primary
}
