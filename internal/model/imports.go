package model

// ImportKind enumerates the shapes an import statement can take.
type ImportKind string

const (
	ImportDefault    ImportKind = "default"
	ImportNamed      ImportKind = "named"
	ImportNamespace  ImportKind = "namespace"
	ImportSideEffect ImportKind = "side-effect"
	ImportRequire    ImportKind = "require"
)

// ExportKind enumerates the shapes an export statement can take.
type ExportKind string

const (
	ExportDeclaration ExportKind = "declaration"
	ExportNamed       ExportKind = "named"
	ExportDefault     ExportKind = "default"
	ExportNamespace   ExportKind = "namespace"
)

// ImportSpecifier binds an imported name to its local binding.
type ImportSpecifier struct {
	Imported string `json:"imported,omitempty"`
	Local    string `json:"local"`
}

// Import is a single import statement.
type Import struct {
	Kind        ImportKind        `json:"kind"`
	Source      *string           `json:"source"`
	Specifiers  []ImportSpecifier `json:"specifiers"`
	Span        Span              `json:"span"`
}

// ExportSpecifier binds a local name to its exported name.
type ExportSpecifier struct {
	Local    string `json:"local"`
	Exported string `json:"exported,omitempty"`
}

// Export is a single export statement.
type Export struct {
	Kind       ExportKind        `json:"kind"`
	Source     *string           `json:"source"`
	Specifiers []ExportSpecifier `json:"specifiers"`
	Span       Span              `json:"span"`
}
