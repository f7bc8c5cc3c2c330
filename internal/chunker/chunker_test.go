package chunker

import (
	"testing"

	"github.com/mvp-joe/project-cortex/internal/extract"
	"github.com/mvp-joe/project-cortex/internal/langdetect"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

const twoFunctionsTS = `export function add(a: number, b: number): number {
	return a + b;
}

export function multiply(a: number, b: number): number {
	return a * b;
}
`

func chunkSource(t *testing.T, src, path string) ([]byte, *extract.Document) {
	t.Helper()
	tree, err := synparse.Parse(langdetect.TypeScript, []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer tree.Close()
	return []byte(src), extract.Extract(tree, path, langdetect.TypeScript)
}

func TestChunkOnePerFunction(t *testing.T) {
	source, doc := chunkSource(t, twoFunctionsTS, "src/math.ts")
	chunks, _ := Chunk(doc, source, "src/math")

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if !c.SelfContained() {
			t.Errorf("chunk %q should be self-contained", c.Name)
		}
		if len(c.ChunkHash) != 64 {
			t.Errorf("chunk %q hash should be 64-hex, got %d chars", c.Name, len(c.ChunkHash))
		}
	}
}

func TestModuleChunkForCallableLessFile(t *testing.T) {
	source, doc := chunkSource(t, "export const PI = 3.14159;\n", "src/constants.ts")
	chunks, _ := Chunk(doc, source, "src/constants")

	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 module chunk, got %d", len(chunks))
	}
	if chunks[0].Kind != "module" {
		t.Errorf("expected module chunk kind, got %q", chunks[0].Kind)
	}
}

func TestChunkHashRoundTripAcrossWhitespaceReformat(t *testing.T) {
	sourceA, docA := chunkSource(t, twoFunctionsTS, "src/math.ts")
	chunksA, _ := Chunk(docA, sourceA, "src/math")

	reformatted := `export function add(a: number, b: number): number { return a+b; }
export function multiply(a: number,b: number): number {
  return a*b;
}
`
	sourceB, docB := chunkSource(t, reformatted, "src/math.ts")
	chunksB, _ := Chunk(docB, sourceB, "src/math")

	hashesA := map[string]string{}
	for _, c := range chunksA {
		hashesA[c.Name] = c.ChunkHash
	}
	for _, c := range chunksB {
		if hashesA[c.Name] != c.ChunkHash {
			t.Errorf("chunk %q hash changed across whitespace reformat", c.Name)
		}
	}
}

func TestSelfContainmentRate(t *testing.T) {
	source, doc := chunkSource(t, twoFunctionsTS, "src/math.ts")
	chunks, _ := Chunk(doc, source, "src/math")

	if rate := SelfContainmentRate(chunks); rate < 0.95 {
		t.Errorf("self-containment rate = %f, want >= 0.95", rate)
	}
}
