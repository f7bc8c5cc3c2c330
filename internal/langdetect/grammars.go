package langdetect

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Grammars are registered here, process-wide, so the first Load call for a
// given tag pays the parse-table construction cost once.
func init() {
	register(TypeScript, func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) })
	register(TSX, func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTSX()) })
	register(JavaScript, func() *sitter.Language { return sitter.NewLanguage(javascript.Language()) })
	register(Python, func() *sitter.Language { return sitter.NewLanguage(python.Language()) })
	register(Rust, func() *sitter.Language { return sitter.NewLanguage(rust.Language()) })
	register(Java, func() *sitter.Language { return sitter.NewLanguage(java.Language()) })
	register(C, func() *sitter.Language { return sitter.NewLanguage(c.Language()) })
	register(PHP, func() *sitter.Language { return sitter.NewLanguage(php.LanguagePHP()) })
	register(Ruby, func() *sitter.Language { return sitter.NewLanguage(ruby.Language()) })
	// Cpp, CSharp, Swift, Kotlin, Scala, HTML, CSS, JSON, YAML, Markdown,
	// Dockerfile, Makefile are classification-only per spec §4.B: Detect
	// resolves them to a tag, but Load reports UnsupportedLanguage since no
	// grammar is registered.
}
