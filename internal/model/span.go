// Package model defines the data types shared across the parser, chunker,
// store, and ranker packages: spans, symbols, chunks, imports/exports, call
// sites, comments, embedding vectors, and ranking candidates.
package model

// Span locates a syntactic entity in its source file. Lines are 1-indexed,
// columns are 0-indexed, and the byte range is half-open [StartByte, EndByte).
type Span struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
	StartByte   int `json:"startByte"`
	EndByte     int `json:"endByte"`
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	if s.EndByte < s.StartByte {
		return 0
	}
	return s.EndByte - s.StartByte
}

// LineCount returns the number of source lines the span covers (inclusive).
func (s Span) LineCount() int {
	if s.EndLine < s.StartLine {
		return 0
	}
	return s.EndLine - s.StartLine + 1
}
