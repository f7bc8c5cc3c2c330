// Package chunker promotes entity-extractor output into self-contained,
// hashable code chunks: one per top-level function, per method, and per
// top-level async/generator function; a single "module" chunk for files
// with no callable symbols (spec §4.E, §9 Open Question — enforced
// uniformly here rather than left to callers).
package chunker

import (
	"strings"

	"github.com/mvp-joe/project-cortex/internal/extract"
	"github.com/mvp-joe/project-cortex/internal/hashutil"
	"github.com/mvp-joe/project-cortex/internal/model"
)

// largeChunkLines is the threshold past which a chunk is still emitted but
// flagged with a warning (spec §4.E).
const largeChunkLines = 5000

// Warning is a non-fatal note produced while chunking (e.g. an oversized
// chunk). Chunking never drops a chunk because of a warning.
type Warning struct {
	ChunkName string
	Message   string
}

// Chunk runs the chunker over one file's extraction document and source,
// returning the file's chunks plus any warnings.
func Chunk(doc *extract.Document, source []byte, modulePath string) ([]model.Chunk, []Warning) {
	var chunks []model.Chunk
	var warnings []Warning

	callables := callableSymbols(doc.Symbols)
	if len(callables) == 0 {
		chunk, warn := buildModuleChunk(doc, source, modulePath)
		chunks = append(chunks, chunk)
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		return chunks, warnings
	}

	for _, sym := range callables {
		chunk, warn := buildCallableChunk(doc, sym, source, modulePath)
		chunks = append(chunks, chunk)
		if warn != nil {
			warnings = append(warnings, *warn)
		}
	}

	return chunks, warnings
}

func callableSymbols(symbols []model.Symbol) []model.Symbol {
	var out []model.Symbol
	for _, s := range symbols {
		switch s.Kind {
		case model.KindFunction, model.KindMethod:
			out = append(out, s)
		}
	}
	return out
}

func buildCallableChunk(doc *extract.Document, sym model.Symbol, source []byte, modulePath string) (model.Chunk, *Warning) {
	span := sym.Span
	raw := sliceSpan(source, span)
	normalized := hashutil.Normalize(raw)

	kind := chunkKindFor(sym)
	ctx := buildContext(doc, sym, modulePath)

	c := model.Chunk{
		ChunkHash:         hashutil.HashParts(sym.Documentation, sym.Signature, raw),
		FilePath:          doc.FilePath,
		Kind:              kind,
		Name:              sym.Name,
		Content:           raw,
		NormalizedContent: normalized,
		Span:              span,
		LineCount:         span.LineCount(),
		CharCount:         len([]rune(raw)),
		Language:          string(doc.Language),
		Context:           ctx,
		Documentation:     sym.Documentation,
		Signature:         sym.Signature,
	}

	return c, warnIfLarge(c)
}

func buildModuleChunk(doc *extract.Document, source []byte, modulePath string) (model.Chunk, *Warning) {
	raw := string(source)
	normalized := hashutil.Normalize(raw)
	lineCount := strings.Count(raw, "\n") + 1

	c := model.Chunk{
		ChunkHash:         hashutil.HashParts("", "", raw),
		FilePath:          doc.FilePath,
		Kind:              model.ChunkModule,
		Name:              moduleChunkName(doc.FilePath),
		Content:           raw,
		NormalizedContent: normalized,
		Span: model.Span{
			StartLine: 1, EndLine: lineCount,
			StartByte: 0, EndByte: len(source),
		},
		LineCount: lineCount,
		CharCount: len([]rune(raw)),
		Language:  string(doc.Language),
		Context: model.ChunkContext{
			ModulePath: modulePath,
			IsTopLevel: true,
		},
	}

	return c, warnIfLarge(c)
}

func warnIfLarge(c model.Chunk) *Warning {
	if c.LineCount > largeChunkLines {
		return &Warning{ChunkName: c.Name, Message: "chunk exceeds 5000 lines"}
	}
	return nil
}

func chunkKindFor(sym model.Symbol) model.ChunkKind {
	isMethod := sym.Kind == model.KindMethod
	switch {
	case isMethod && sym.Name == "constructor":
		return model.ChunkConstructor
	case isMethod && sym.Metadata.Async:
		return model.ChunkAsyncMethod
	case isMethod:
		return model.ChunkMethod
	case sym.Metadata.Async:
		return model.ChunkAsyncFunction
	default:
		return model.ChunkFunction
	}
}

func buildContext(doc *extract.Document, sym model.Symbol, modulePath string) model.ChunkContext {
	ctx := model.ChunkContext{
		ModulePath: modulePath,
		IsTopLevel: len(sym.ParentChain) == 0,
	}

	if len(sym.ParentChain) > 0 {
		ctx.ClassName = sym.ParentChain[len(sym.ParentChain)-1]
		ctx.ClassInheritance = classInheritance(doc, ctx.ClassName)
	}
	if sym.Kind == model.KindMethod {
		ctx.MethodSignature = sym.Signature
	}

	return ctx
}

// classInheritance looks up the enclosing class symbol's signature and
// returns its heritage clause tokens (extends/implements), if any.
func classInheritance(doc *extract.Document, className string) []string {
	for _, s := range doc.Symbols {
		if s.Kind == model.KindClass && s.Name == className {
			return parseHeritage(s.Signature)
		}
	}
	return nil
}

func parseHeritage(signature string) []string {
	idx := strings.IndexAny(signature, "{")
	head := signature
	if idx >= 0 {
		head = signature[:idx]
	}
	var out []string
	for _, kw := range []string{"extends", "implements"} {
		if i := strings.Index(head, kw); i >= 0 {
			rest := head[i+len(kw):]
			for _, name := range strings.Split(rest, ",") {
				name = strings.TrimSpace(name)
				if name != "" {
					out = append(out, name)
				}
			}
		}
	}
	return out
}

func sliceSpan(source []byte, span model.Span) string {
	if span.StartByte < 0 || span.EndByte > len(source) || span.EndByte < span.StartByte {
		return ""
	}
	return string(source[span.StartByte:span.EndByte])
}

// moduleChunkName derives a readable name for a callable-less file's single
// module chunk from its path, e.g. "constants.ts" -> "constants".
func moduleChunkName(filePath string) string {
	base := filePath
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	if base == "" {
		return "module"
	}
	return base
}
