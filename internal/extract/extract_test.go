package extract

import (
	"testing"

	"github.com/mvp-joe/project-cortex/internal/langdetect"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

const threeFunctionsTS = `export function add(a: number, b: number): number {
	return a + b;
}

export function multiply(a: number, b: number): number {
	return a * b;
}

export function subtract(a: number, b: number): number {
	return a - b;
}
`

func extractTS(t *testing.T, src string) *Document {
	t.Helper()
	tree, err := synparse.Parse(langdetect.TypeScript, []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer tree.Close()
	return Extract(tree, "math.ts", langdetect.TypeScript)
}

func symbolHash(t *testing.T, doc *Document, name string) string {
	t.Helper()
	for _, s := range doc.Symbols {
		if s.Name == name {
			return s.Hash
		}
	}
	t.Fatalf("symbol %q not found", name)
	return ""
}

func TestHashStabilityAcrossParses(t *testing.T) {
	doc1 := extractTS(t, threeFunctionsTS)
	doc2 := extractTS(t, threeFunctionsTS)

	for _, name := range []string{"add", "multiply", "subtract"} {
		if symbolHash(t, doc1, name) != symbolHash(t, doc2, name) {
			t.Errorf("%s hash differs across identical parses", name)
		}
	}
}

func TestSelectiveBodyChangeOnlyAffectsEditedSymbol(t *testing.T) {
	before := extractTS(t, threeFunctionsTS)

	after := threeFunctionsTS
	after = replaceOnce(after, "return a * b;", "return a * b * 2;")
	doc := extractTS(t, after)

	if symbolHash(t, before, "add") != symbolHash(t, doc, "add") {
		t.Errorf("add hash should be unchanged")
	}
	if symbolHash(t, before, "subtract") != symbolHash(t, doc, "subtract") {
		t.Errorf("subtract hash should be unchanged")
	}
	if symbolHash(t, before, "multiply") == symbolHash(t, doc, "multiply") {
		t.Errorf("multiply hash should change")
	}
}

func TestWhitespaceAndCommentStyleReformatLeavesHashesUnchanged(t *testing.T) {
	before := extractTS(t, threeFunctionsTS)

	reformatted := `export function add(a: number, b: number): number { return a+b; }
export function multiply(a: number,b: number): number {
  return a*b;
}
export function   subtract(a: number, b: number): number {return a - b;}
`
	after := extractTS(t, reformatted)

	for _, name := range []string{"add", "multiply", "subtract"} {
		if symbolHash(t, before, name) != symbolHash(t, after, name) {
			t.Errorf("%s hash should be unchanged by whitespace reformat", name)
		}
	}
}

func TestSyntaxErrorAtFirstTokenEmitsZeroSymbolsNotCrash(t *testing.T) {
	tree, err := synparse.Parse(langdetect.TypeScript, []byte("@@@not valid ts@@@"))
	if err != nil {
		t.Fatalf("Parse() should not hard-fail: %v", err)
	}
	defer tree.Close()

	doc := Extract(tree, "broken.ts", langdetect.TypeScript)
	if len(doc.Symbols) != 0 {
		t.Errorf("expected zero symbols from unparseable input, got %d", len(doc.Symbols))
	}
}

func TestEmptyAndWhitespaceOnlyFiles(t *testing.T) {
	for _, src := range []string{"", "   \n\t\n  "} {
		doc := extractTS(t, src)
		if len(doc.Symbols) != 0 {
			t.Errorf("expected zero symbols for %q, got %d", src, len(doc.Symbols))
		}
	}
}

func TestJSDocAssociation(t *testing.T) {
	src := `/**
 * Adds two numbers.
 * @param a first number
 * @param b second number
 * @returns the sum
 */
export function add(a: number, b: number): number {
	return a + b;
}
`
	doc := extractTS(t, src)
	var add *string
	for _, s := range doc.Symbols {
		if s.Name == "add" {
			doc := s.Documentation
			add = &doc
		}
	}
	if add == nil || *add == "" {
		t.Fatalf("expected add() to have documentation associated")
	}
}

func TestMalformedJSDocDoesNotCrash(t *testing.T) {
	src := `/**
 * @param
 */
export function weird() {}
`
	doc := extractTS(t, src)
	if len(doc.Symbols) != 1 {
		t.Fatalf("expected exactly one symbol, got %d", len(doc.Symbols))
	}
}

func replaceOnce(s, old, new string) string {
	for i := 0; i+len(old) <= len(s); i++ {
		if s[i:i+len(old)] == old {
			return s[:i] + new + s[i+len(old):]
		}
	}
	return s
}
