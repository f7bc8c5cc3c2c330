package extract

import (
	"testing"

	"github.com/mvp-joe/project-cortex/internal/langdetect"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

func extractPy(t *testing.T, src string) *Document {
	t.Helper()
	tree, err := synparse.Parse(langdetect.Python, []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer tree.Close()
	return Extract(tree, "math_ops.py", langdetect.Python)
}

func TestPythonFunctionAndClassSymbols(t *testing.T) {
	src := `class Calculator:
    """Performs arithmetic."""

    def add(self, a, b):
        """Return a + b."""
        return a + b


def standalone():
    pass
`
	doc := extractPy(t, src)

	names := map[string]bool{}
	for _, s := range doc.Symbols {
		names[s.Name] = true
	}
	for _, want := range []string{"Calculator", "add", "standalone"} {
		if !names[want] {
			t.Errorf("expected symbol %q, got %v", want, names)
		}
	}
}

func TestPythonMethodGetsParentChain(t *testing.T) {
	src := `class Widget:
    def render(self):
        pass
`
	doc := extractPy(t, src)
	for _, s := range doc.Symbols {
		if s.Name == "render" {
			if len(s.ParentChain) != 1 || s.ParentChain[0] != "Widget" {
				t.Errorf("render parent chain = %v, want [Widget]", s.ParentChain)
			}
			return
		}
	}
	t.Fatalf("render method not found")
}

func TestPythonDocstringAssociation(t *testing.T) {
	src := `def greet(name):
    """Say hello to name."""
    return "hi " + name
`
	doc := extractPy(t, src)
	for _, s := range doc.Symbols {
		if s.Name == "greet" && s.Documentation == "" {
			t.Errorf("expected greet() to have a docstring-derived documentation")
		}
	}
}
