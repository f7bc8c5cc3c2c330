// Package cli implements the code-index command-line surface: init, index,
// refresh, doctor, hooks, uninstall, search, and watch, wiring together the
// Persistent Store, AST Persistence, Symbol Index, Hybrid Index, Ranker,
// Incremental Indexer, Diff Source, and Ignore Filter (spec §6/§7).
package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mvp-joe/project-cortex/internal/astdoc"
	"github.com/mvp-joe/project-cortex/internal/config"
	"github.com/mvp-joe/project-cortex/internal/embedding"
	"github.com/mvp-joe/project-cortex/internal/hybridindex"
	"github.com/mvp-joe/project-cortex/internal/ignore"
	"github.com/mvp-joe/project-cortex/internal/incremental"
	"github.com/mvp-joe/project-cortex/internal/indexerr"
	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/ranker"
	"github.com/mvp-joe/project-cortex/internal/store"
	"github.com/mvp-joe/project-cortex/internal/symindex"
	"github.com/mvp-joe/project-cortex/internal/vcsdiff"
)

// StateDirName is the on-disk state directory, created inside the project root,
// holding the database, AST documents, and call graph snapshot.
const StateDirName = ignore.StateDirName

// components bundles the opened state needed by every subcommand. Close
// must be called once the command finishes.
type components struct {
	root    string
	cfg     *config.Config
	store   *store.Store
	astDocs *astdoc.Store
	symbols *symindex.Index
	hybrid  *hybridindex.Index
	engine  *incremental.Engine
	ranker  *ranker.Ranker
	vcs     *vcsdiff.Adapter
	graphDir string
}

func openComponents(ctx context.Context, root string) (*components, error) {
	cfg, err := config.NewLoader(root).Load()
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(root, StateDirName)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "create state directory", err)
	}

	st, err := store.Open(filepath.Join(stateDir, "index.db"), cfg.Embedding.Dimensions)
	if err != nil {
		return nil, err
	}

	astDocs, err := astdoc.Open(filepath.Join(stateDir, "ast"))
	if err != nil {
		st.Close()
		return nil, err
	}

	symbols, err := symindex.New()
	if err != nil {
		st.Close()
		return nil, err
	}
	if err := loadSymbolsFromAstDocs(astDocs, symbols); err != nil {
		symbols.Close()
		st.Close()
		return nil, err
	}

	provider, err := embedding.NewProvider(ctx, embedding.Config{Profile: cfg.Embedding.Provider})
	if err != nil {
		symbols.Close()
		st.Close()
		return nil, err
	}

	hybrid, err := hybridindex.Open(st, hybridindex.NewFTSBackend(st), provider)
	if err != nil {
		symbols.Close()
		st.Close()
		return nil, err
	}

	ignoreFilter, err := ignore.Load(root)
	if err != nil {
		symbols.Close()
		st.Close()
		return nil, err
	}

	engine := incremental.New(root, ignoreFilter, st, astDocs, symbols, hybrid)

	lexical := func(ctx context.Context, query string, limit int) ([]model.RankingCandidate, error) {
		return hybrid.LexicalSearch(query, limit)
	}
	vector := func(ctx context.Context, query string, limit int) ([]model.RankingCandidate, error) {
		return hybrid.VectorSearch(ctx, query, limit)
	}
	rnk := ranker.New(rankerConfigFrom(cfg.Ranking), lexical, vector)

	return &components{
		root:     root,
		cfg:      cfg,
		store:    st,
		astDocs:  astDocs,
		symbols:  symbols,
		hybrid:   hybrid,
		engine:   engine,
		ranker:   rnk,
		vcs:      vcsdiff.New(root),
		graphDir: filepath.Join(stateDir, "graph"),
	}, nil
}

// loadSymbolsFromAstDocs rebuilds the Symbol Index from the AST Persistence
// snapshot on disk, since symindex.Index itself holds state only in memory
// and every CLI invocation starts a fresh process.
func loadSymbolsFromAstDocs(astDocs *astdoc.Store, symbols *symindex.Index) error {
	paths, err := astDocs.ListAll()
	if err != nil {
		return err
	}

	var entries []symindex.Entry
	for _, path := range paths {
		doc, err := astDocs.Read(path)
		if err != nil {
			continue
		}
		for _, syms := range doc.Symbols {
			for _, s := range syms {
				entries = append(entries, symindex.Entry{Name: s.Name, Kind: s.Kind, FilePath: doc.FilePath, Span: s.Span})
			}
		}
	}
	symbols.Load(entries)
	return nil
}

// rankerConfigFrom maps the loaded ranking config section onto ranker.Config,
// carrying over the SLA/early-termination knobs ranker.DefaultConfig sets
// that have no corresponding config-file entry.
func rankerConfigFrom(cfg config.RankingConfig) ranker.Config {
	rc := ranker.DefaultConfig()
	rc.Alpha = cfg.Fusion.Alpha
	rc.Beta = cfg.Fusion.Beta
	rc.K = cfg.Fusion.K
	rc.PerFileCap = cfg.Diversification.PerFileCap
	rc.Epsilon = cfg.TieBreakers.Epsilon
	rc.KindPriority = cfg.TieBreakers.KindPriority
	rc.PathPriority = cfg.TieBreakers.PathPriority
	return rc
}

func (c *components) Close() {
	c.symbols.Close()
	c.store.Close()
}
