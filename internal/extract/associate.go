package extract

import (
	"strings"

	"github.com/mvp-joe/project-cortex/internal/model"
)

// associateComments links each comment to the symbol it immediately
// precedes — only whitespace between the comment's end and the symbol's
// first token — or, for docstring-kind comments the per-language extractor
// has already tagged with AssociatedSymbol (the docstring of that symbol's
// body), confirms the link. On association the symbol's Documentation
// field is set from the comment's text, preferring a parsed
// Documentation.Description when present (spec §4.D).
func associateComments(doc *Document, source []byte) {
	byName := make(map[string]int, len(doc.Symbols))
	for si := range doc.Symbols {
		byName[doc.Symbols[si].QualifiedName()] = si
	}

	for ci := range doc.Comments {
		c := &doc.Comments[ci]

		if c.AssociatedSymbol != "" {
			if si, ok := byName[c.AssociatedSymbol]; ok {
				setDocumentation(&doc.Symbols[si], c)
			}
			continue
		}

		best := -1
		bestGap := -1
		for si := range doc.Symbols {
			s := &doc.Symbols[si]
			if s.Span.StartByte < c.Span.EndByte {
				continue
			}
			between := ""
			if c.Span.EndByte <= s.Span.StartByte && s.Span.StartByte <= len(source) {
				between = string(source[c.Span.EndByte:s.Span.StartByte])
			}
			if strings.TrimSpace(between) != "" {
				continue // a token sits between the comment and this symbol
			}
			gap := s.Span.StartByte - c.Span.EndByte
			if bestGap == -1 || gap < bestGap {
				bestGap = gap
				best = si
			}
		}
		if best >= 0 {
			s := &doc.Symbols[best]
			c.AssociatedSymbol = s.QualifiedName()
			setDocumentation(s, c)
		}
	}
}

func setDocumentation(s *model.Symbol, c *model.Comment) {
	if c.Documentation != nil && c.Documentation.Description != "" {
		s.Documentation = c.Documentation.Description
	} else {
		s.Documentation = c.Text
	}
}
