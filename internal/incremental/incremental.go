// Package incremental implements the Incremental Indexer (spec §4.L): full
// indexing, mtime-based refresh, and VCS-diff-driven refresh, each routing
// through the same per-file pipeline that parses, chunks, and persists to
// the Persistent Store, AST Persistence, Symbol Index, and Hybrid Index.
package incremental

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mvp-joe/project-cortex/internal/astdoc"
	"github.com/mvp-joe/project-cortex/internal/hybridindex"
	"github.com/mvp-joe/project-cortex/internal/ignore"
	"github.com/mvp-joe/project-cortex/internal/indexerr"
	"github.com/mvp-joe/project-cortex/internal/store"
	"github.com/mvp-joe/project-cortex/internal/symindex"
	"github.com/mvp-joe/project-cortex/internal/vcsdiff"
)

// ProgressEvery is how often (in files processed) the engine logs progress
// during a refresh (spec §4.L: "periodic progress logs every 100 files").
const ProgressEvery = 100

// Counters accumulates the outcome of one refresh or full index run.
type Counters struct {
	FilesAdded   int
	FilesUpdated int
	FilesDeleted int
	FilesSkipped int
	Errors       []error
	durationMs   int64
}

// Mutations is the sum of counters that represent a store write; a refresh
// with zero mutations does not need to rebuild the Hybrid Index.
func (c Counters) Mutations() int {
	return c.FilesAdded + c.FilesUpdated + c.FilesDeleted
}

// PerSecond is the file-processing rate over the run's wall-clock duration.
func (c Counters) PerSecond() float64 {
	if c.durationMs <= 0 {
		return 0
	}
	total := c.FilesAdded + c.FilesUpdated + c.FilesDeleted + c.FilesSkipped
	return float64(total) / (float64(c.durationMs) / 1000.0)
}

// Engine drives the three refresh strategies over one project root.
type Engine struct {
	root    string
	ignore  *ignore.Filter
	store   *store.Store
	astDocs *astdoc.Store
	symbols *symindex.Index
	hybrid  *hybridindex.Index

	// Progress, if set, is called after each file during FullIndex with
	// the running count and the total discovered, for CLI progress bars.
	Progress func(processed, total int)
}

func New(root string, ignoreFilter *ignore.Filter, st *store.Store, astDocs *astdoc.Store, symbols *symindex.Index, hybrid *hybridindex.Index) *Engine {
	return &Engine{root: root, ignore: ignoreFilter, store: st, astDocs: astDocs, symbols: symbols, hybrid: hybrid}
}

// FullIndex clears all store state and walks the project tree from scratch.
func (e *Engine) FullIndex(ctx context.Context) (Counters, error) {
	started := time.Now()

	if err := e.store.ClearAll(); err != nil {
		return Counters{}, err
	}
	if err := e.astDocs.Clear(); err != nil {
		return Counters{}, err
	}
	e.symbols.Load(nil)

	paths, err := e.walk()
	if err != nil {
		return Counters{}, err
	}

	var counters Counters
	var entries []symindex.Entry
	processed := 0

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		fileEntries, err := e.indexFile(ctx, path)
		processed++
		if err != nil {
			if indexerr.Is(err, indexerr.UnsupportedLanguage) || indexerr.Is(err, indexerr.ParseFailure) {
				counters.FilesSkipped++
			} else {
				counters.Errors = append(counters.Errors, err)
			}
		} else {
			counters.FilesAdded++
			entries = append(entries, fileEntries...)
		}
		if processed%ProgressEvery == 0 {
			log.Printf("indexed %d/%d files", processed, len(paths))
		}
		if e.Progress != nil {
			e.Progress(processed, len(paths))
		}
	}

	e.symbols.Load(entries)
	counters.durationMs = time.Since(started).Milliseconds()
	return counters, nil
}

// RefreshByMtime compares the store's (path, mtime) snapshot against the
// current filesystem state: unknown paths are added, newer mtimes are
// modified, missing paths are deleted, everything else is skipped.
func (e *Engine) RefreshByMtime(ctx context.Context) (Counters, error) {
	started := time.Now()

	known, err := e.store.AllFiles()
	if err != nil {
		return Counters{}, err
	}
	knownMtime := make(map[string]int64, len(known))
	for _, f := range known {
		knownMtime[f.Path] = f.MTimeMillis
	}

	seen := map[string]bool{}
	paths, err := e.walk()
	if err != nil {
		return Counters{}, err
	}

	var counters Counters
	processed := 0
	changedEntries := map[string][]symindex.Entry{}

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		rel := e.relPath(path)
		seen[rel] = true

		mtime, statErr := fileMTimeMs(path)
		if statErr != nil {
			counters.Errors = append(counters.Errors, statErr)
			continue
		}

		prior, known := knownMtime[rel]
		if known && mtime <= prior {
			counters.FilesSkipped++
			processed++
			continue
		}

		entries, err := e.indexFile(ctx, path)
		processed++
		if err != nil {
			if indexerr.Is(err, indexerr.UnsupportedLanguage) || indexerr.Is(err, indexerr.ParseFailure) {
				counters.FilesSkipped++
			} else {
				counters.Errors = append(counters.Errors, err)
			}
			continue
		}
		changedEntries[rel] = entries
		if known {
			counters.FilesUpdated++
		} else {
			counters.FilesAdded++
		}
		if processed%ProgressEvery == 0 {
			log.Printf("refreshed %d/%d files", processed, len(paths))
		}
	}

	for path := range knownMtime {
		if !seen[path] {
			if err := e.deleteFile(ctx, path); err != nil {
				counters.Errors = append(counters.Errors, err)
				continue
			}
			counters.FilesDeleted++
		}
	}

	if counters.Mutations() > 0 {
		e.rebuildSymbolIndex(changedEntries)
	}
	counters.durationMs = time.Since(started).Milliseconds()
	return counters, nil
}

// RefreshByVCSDiff maps a vcsdiff.Diff's changed files onto add/modify/
// delete operations (spec §4.L status mapping) and processes them with
// deletes ordered before adds so a rename never loses its new chunks to
// the delete of the old path.
func (e *Engine) RefreshByVCSDiff(ctx context.Context, diff *vcsdiff.Diff) (Counters, error) {
	started := time.Now()
	if diff == nil {
		return Counters{}, indexerr.New(indexerr.VCSNotARepository, "nil diff")
	}

	var deletes, adds []string
	for _, cf := range diff.ChangedFiles {
		switch cf.Status {
		case vcsdiff.StatusAdded, vcsdiff.StatusCopied:
			adds = append(adds, cf.Path)
		case vcsdiff.StatusModified, vcsdiff.StatusTypeChanged:
			adds = append(adds, cf.Path)
		case vcsdiff.StatusDeleted:
			deletes = append(deletes, cf.Path)
		case vcsdiff.StatusRenamed:
			deletes = append(deletes, cf.OldPath)
			adds = append(adds, cf.Path)
		default: // Unmerged, Unknown: skip
		}
	}

	var counters Counters
	changedEntries := map[string][]symindex.Entry{}

	for _, rel := range deletes {
		if err := e.deleteFile(ctx, rel); err != nil {
			counters.Errors = append(counters.Errors, err)
			continue
		}
		counters.FilesDeleted++
	}

	for i, rel := range adds {
		abs := filepath.Join(e.root, rel)
		existed, err := e.store.FileIDByPath(rel)
		if err != nil {
			counters.Errors = append(counters.Errors, err)
			continue
		}

		entries, err := e.indexFile(ctx, abs)
		if err != nil {
			if indexerr.Is(err, indexerr.UnsupportedLanguage) || indexerr.Is(err, indexerr.ParseFailure) {
				counters.FilesSkipped++
			} else {
				counters.Errors = append(counters.Errors, err)
			}
			continue
		}
		changedEntries[rel] = entries
		if existed != "" {
			counters.FilesUpdated++
		} else {
			counters.FilesAdded++
		}
		if (i+1)%ProgressEvery == 0 {
			log.Printf("refreshed %d/%d changed files", i+1, len(adds))
		}
	}

	if counters.Mutations() > 0 {
		e.rebuildSymbolIndex(changedEntries)
	}
	counters.durationMs = time.Since(started).Milliseconds()
	return counters, nil
}

// rebuildSymbolIndex merges freshly-extracted entries for changed files
// into a full snapshot (symindex.Load replaces wholesale, so a partial
// refresh must still supply every file's entries, not just the changed
// ones).
func (e *Engine) rebuildSymbolIndex(changed map[string][]symindex.Entry) {
	paths, err := e.astDocs.ListAll()
	if err != nil {
		log.Printf("rebuild symbol index: list ast docs: %v", err)
		return
	}

	var all []symindex.Entry
	for _, path := range paths {
		if fresh, ok := changed[path]; ok {
			all = append(all, fresh...)
			continue
		}
		doc, err := e.astDocs.Read(path)
		if err != nil {
			continue
		}
		for _, symbols := range doc.Symbols {
			for _, s := range symbols {
				all = append(all, symindex.Entry{Name: s.Name, Kind: s.Kind, FilePath: doc.FilePath, Span: s.Span})
			}
		}
	}
	e.symbols.Load(all)
}

func (e *Engine) walk() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(e.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel := e.relPath(path)
		if e.ignore != nil && e.ignore.IsIgnored(rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

func (e *Engine) relPath(abs string) string {
	rel, err := filepath.Rel(e.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

func fileMTimeMs(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, indexerr.Wrap(indexerr.StoreIOError, fmt.Sprintf("stat %s", path), err)
	}
	return info.ModTime().UnixMilli(), nil
}
