// Package symindex is the in-memory symbol name index: exact, prefix,
// substring, and fuzzy (edit-distance) lookups over every symbol name
// known to the store, accelerated by a k-gram inverted index cached with
// otter.
package symindex

import (
	"sort"
	"strings"
	"sync"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/project-cortex/internal/model"
)

const kgramSize = 3

// Entry is one indexed symbol occurrence.
type Entry struct {
	Name     string
	Kind     model.SymbolKind
	FilePath string
	Span     model.Span
}

// Index is a rebuildable, read-mostly symbol name index.
type Index struct {
	mu      sync.RWMutex
	entries []Entry
	byName  map[string][]int

	kgramCache otter.Cache[string, []int]
}

// New builds an empty index. Load must be called before querying.
func New() (*Index, error) {
	cache, err := otter.MustBuilder[string, []int](4096).
		Cost(func(key string, value []int) uint32 { return uint32(len(value)) + 1 }).
		Build()
	if err != nil {
		return nil, err
	}
	return &Index{
		byName:     map[string][]int{},
		kgramCache: cache,
	}, nil
}

// Load replaces the index contents with entries, rebuilding the name map
// and clearing the k-gram cache (stale shard keys would otherwise answer
// substring queries against symbols no longer present).
func (idx *Index) Load(entries []Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.entries = entries
	idx.byName = make(map[string][]int, len(entries))
	for i, e := range entries {
		idx.byName[e.Name] = append(idx.byName[e.Name], i)
	}
	idx.kgramCache.Clear()
}

// Exact returns every entry whose name matches query exactly.
func (idx *Index) Exact(query string) []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.collect(idx.byName[query])
}

// Prefix returns every entry whose name starts with query.
func (idx *Index) Prefix(query string) []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []Entry
	for name, indexes := range idx.byName {
		if strings.HasPrefix(name, query) {
			out = append(out, idx.collect(indexes)...)
		}
	}
	sortEntries(out)
	return out
}

// Substring returns every entry whose name contains query, using the
// k-gram inverted index to narrow candidates before the final scan when
// query is long enough to produce at least one k-gram.
func (idx *Index) Substring(query string) []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(query) < kgramSize {
		var out []Entry
		for name, indexes := range idx.byName {
			if strings.Contains(name, query) {
				out = append(out, idx.collect(indexes)...)
			}
		}
		sortEntries(out)
		return out
	}

	candidates := idx.kgramCandidates(query)
	var out []Entry
	seen := map[int]bool{}
	for _, i := range candidates {
		if seen[i] {
			continue
		}
		seen[i] = true
		if strings.Contains(idx.entries[i].Name, query) {
			out = append(out, idx.entries[i])
		}
	}
	sortEntries(out)
	return out
}

// Fuzzy returns entries within maxDistance Levenshtein edit distance of
// query, sorted by distance then name.
func (idx *Index) Fuzzy(query string, maxDistance int) []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type scored struct {
		entry    Entry
		distance int
	}
	var matches []scored
	for name, indexes := range idx.byName {
		d := levenshtein(query, name)
		if d <= maxDistance {
			for _, i := range indexes {
				matches = append(matches, scored{entry: idx.entries[i], distance: d})
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].entry.Name < matches[j].entry.Name
	})

	out := make([]Entry, len(matches))
	for i, m := range matches {
		out[i] = m.entry
	}
	return out
}

// EnclosingSymbol returns the smallest-span entry in filePath whose range
// contains line, used to correlate a structural pattern match (spec §4
// pattern search) with the symbol it falls inside.
func (idx *Index) EnclosingSymbol(filePath string, line int) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var best Entry
	found := false
	bestLines := 0
	for _, e := range idx.entries {
		if e.FilePath != filePath {
			continue
		}
		if line < e.Span.StartLine || line > e.Span.EndLine {
			continue
		}
		lines := e.Span.EndLine - e.Span.StartLine
		if !found || lines < bestLines {
			best = e
			bestLines = lines
			found = true
		}
	}
	return best, found
}

// Stats summarizes index size, used by the doctor command.
type Stats struct {
	TotalEntries int
	UniqueNames  int
}

func (idx *Index) StatsSummary() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return Stats{TotalEntries: len(idx.entries), UniqueNames: len(idx.byName)}
}

// Close releases the k-gram cache's background resources.
func (idx *Index) Close() {
	idx.kgramCache.Close()
}

func (idx *Index) collect(indexes []int) []Entry {
	if len(indexes) == 0 {
		return nil
	}
	out := make([]Entry, len(indexes))
	for i, n := range indexes {
		out[i] = idx.entries[n]
	}
	return out
}

// kgramCandidates returns candidate entry indexes sharing any k-gram with
// query, memoizing each k-gram's posting list in the otter cache.
func (idx *Index) kgramCandidates(query string) []int {
	seen := map[int]bool{}
	var out []int
	for _, gram := range kgrams(query) {
		postings, ok := idx.kgramCache.Get(gram)
		if !ok {
			postings = idx.buildPostings(gram)
			idx.kgramCache.Set(gram, postings)
		}
		for _, i := range postings {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	return out
}

func (idx *Index) buildPostings(gram string) []int {
	var out []int
	for i, e := range idx.entries {
		if strings.Contains(e.Name, gram) {
			out = append(out, i)
		}
	}
	return out
}

func kgrams(s string) []string {
	if len(s) < kgramSize {
		return nil
	}
	var grams []string
	for i := 0; i+kgramSize <= len(s); i++ {
		grams = append(grams, s[i:i+kgramSize])
	}
	return grams
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}

// levenshtein computes edit distance with the classic dynamic-programming
// table, adequate for the short symbol-name strings this index deals with.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
