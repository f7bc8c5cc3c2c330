// Package langdetect maps file paths to language tags and loads the
// tree-sitter grammar registered for that tag, memoized for the life of the
// process (spec §4.B).
package langdetect

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
)

// Tag is a language identifier such as "typescript" or "python".
type Tag string

const (
	TypeScript Tag = "typescript"
	TSX        Tag = "tsx"
	JavaScript Tag = "javascript"
	Python     Tag = "python"
	Go         Tag = "go"
	Rust       Tag = "rust"
	Java       Tag = "java"
	C          Tag = "c"
	Cpp        Tag = "cpp"
	CSharp     Tag = "csharp"
	Ruby       Tag = "ruby"
	PHP        Tag = "php"
	Swift      Tag = "swift"
	Kotlin     Tag = "kotlin"
	Scala      Tag = "scala"
	HTML       Tag = "html"
	CSS        Tag = "css"
	JSON       Tag = "json"
	YAML       Tag = "yaml"
	Markdown   Tag = "markdown"
	Dockerfile Tag = "dockerfile"
	Makefile   Tag = "makefile"
	Unknown    Tag = ""
)

// extensionTable maps file extensions to language tags. Classification-only
// tags (no grammar) are still listed so Detect never returns Unknown for a
// recognized extension.
var extensionTable = map[string]Tag{
	".ts":  TypeScript,
	".tsx": TSX,
	".js":  JavaScript,
	".jsx": JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".py":  Python,

	".go":    Go,
	".rs":    Rust,
	".java":  Java,
	".c":     C,
	".h":     C,
	".cpp":   Cpp,
	".cc":    Cpp,
	".hpp":   Cpp,
	".cs":    CSharp,
	".rb":    Ruby,
	".php":   PHP,
	".swift": Swift,
	".kt":    Kotlin,
	".scala": Scala,
	".html":  HTML,
	".htm":   HTML,
	".css":   CSS,
	".json":  JSON,
	".yaml":  YAML,
	".yml":   YAML,
	".md":    Markdown,
}

var filenameTable = map[string]Tag{
	"Dockerfile": Dockerfile,
	"Makefile":   Makefile,
}

// Detect maps a file path to a language tag based on its extension (or, for
// extensionless well-known files, its base name). Returns Unknown when no
// entry matches.
func Detect(path string) Tag {
	base := filepath.Base(path)
	if tag, ok := filenameTable[base]; ok {
		return tag
	}
	ext := strings.ToLower(filepath.Ext(path))
	if tag, ok := extensionTable[ext]; ok {
		return tag
	}
	return Unknown
}

// Grammar is a loaded, memoized tree-sitter language binding.
type Grammar struct {
	Tag      Tag
	Language *sitter.Language
}

var (
	registryMu sync.Mutex
	registry   = map[Tag]func() *sitter.Language{}
	cache      = map[Tag]*Grammar{}
)

// register associates a tag with a grammar constructor. Called from the
// per-language init() functions in this package.
func register(tag Tag, ctor func() *sitter.Language) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag] = ctor
}

// Load returns the memoized grammar for tag, building it on first use.
// Returns an UnsupportedLanguage error for tags with no registered grammar
// (either a classification-only tag, or an unrecognized one).
func Load(tag Tag) (*Grammar, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if g, ok := cache[tag]; ok {
		return g, nil
	}
	ctor, ok := registry[tag]
	if !ok {
		return nil, indexerr.New(indexerr.UnsupportedLanguage, "no grammar registered for language "+string(tag))
	}
	g := &Grammar{Tag: tag, Language: ctor()}
	cache[tag] = g
	return g, nil
}

// HasGrammar reports whether tag has a loadable grammar without loading it.
func HasGrammar(tag Tag) bool {
	registryMu.Lock()
	defer registryMu.Unlock()
	_, ok := registry[tag]
	return ok
}
