package extract

import (
	"strings"

	"github.com/mvp-joe/project-cortex/internal/hashutil"
	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

// applyHashes computes each symbol's 16-hex semantic hash over its span
// bytes, stripping the leading doc comment for functions/methods (so a
// docstring/JSDoc edit alone doesn't move the symbol hash — only the
// chunk hash, which folds documentation back in, reacts to that) and using
// the full span text for every other kind (spec §4.D).
func applyHashes(doc *Document, tree *synparse.Tree) {
	for i := range doc.Symbols {
		s := &doc.Symbols[i]
		span := s.Span
		if span.StartByte < 0 || span.EndByte > len(tree.Source) || span.EndByte < span.StartByte {
			continue
		}
		text := string(tree.Source[span.StartByte:span.EndByte])

		switch s.Kind {
		case model.KindFunction, model.KindMethod:
			text = stripLeadingDocComment(text, s.Documentation)
		}

		s.Hash = hashutil.SemanticHash(text)
	}
}

// stripLeadingDocComment removes a leading documentation comment from text
// so that editing only the doc comment leaves the function/method's
// semantic hash unchanged (spec §8 whitespace/comment invariance).
func stripLeadingDocComment(text, documentation string) string {
	if documentation == "" {
		return text
	}
	idx := strings.Index(text, documentation)
	if idx < 0 {
		return text
	}
	// Drop everything up to and including the first line after the doc
	// comment's last occurrence of it in the leading region.
	rest := text[idx+len(documentation):]
	if nl := strings.IndexAny(rest, "\n"); nl >= 0 {
		return strings.TrimLeft(rest[nl+1:], " \t\r\n")
	}
	return strings.TrimLeft(rest, " \t\r\n")
}
