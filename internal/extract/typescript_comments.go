package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

func (tsExtractor) ExtractComments(tree *synparse.Tree, filePath string) ([]model.Comment, []error) {
	src := tree.Source
	var comments []model.Comment

	walk(tree.Root(), func(n *sitter.Node) bool {
		if n.Kind() != "comment" {
			return true
		}
		text := nodeText(n, src)
		c := model.Comment{Text: text, Span: nodeSpan(n)}
		switch {
		case strings.HasPrefix(text, "/**"):
			c.Kind = model.CommentJSDoc
			doc := parseJSDoc(text)
			c.Documentation = &doc
		case strings.HasPrefix(text, "/*"):
			c.Kind = model.CommentBlock
		default:
			c.Kind = model.CommentLine
		}
		comments = append(comments, c)
		return true
	})

	return comments, nil
}

// parseJSDoc parses the body of a /** ... */ comment into its structured
// form. Malformed or partial JSDoc degrades gracefully: whatever tags parse
// are kept, and description falls back to whatever free text precedes the
// first tag (spec §8 boundary behavior: malformed JSDoc).
func parseJSDoc(raw string) model.Documentation {
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "/**"), "*/")
	lines := strings.Split(body, "\n")

	var descLines []string
	doc := model.Documentation{Tags: map[string]string{}}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "@") {
			if doc.Returns == "" && len(doc.Params) == 0 {
				descLines = append(descLines, line)
			}
			continue
		}
		parseJSDocTag(&doc, line)
	}

	doc.Description = strings.Join(descLines, " ")
	return doc
}

func parseJSDocTag(doc *model.Documentation, line string) {
	fields := strings.SplitN(line[1:], " ", 2)
	tag := fields[0]
	rest := ""
	if len(fields) > 1 {
		rest = strings.TrimSpace(fields[1])
	}

	switch tag {
	case "param":
		name, desc := splitJSDocNameDesc(rest)
		doc.Params = append(doc.Params, model.DocParam{Name: name, Description: desc})
	case "returns", "return":
		doc.Returns = rest
	case "throws", "exception":
		doc.Throws = append(doc.Throws, rest)
	case "example":
		doc.Examples = append(doc.Examples, rest)
	default:
		doc.Tags[tag] = rest
	}
}

// splitJSDocNameDesc splits "{Type} name description" or "name description"
// into the parameter name and its trailing description.
func splitJSDocNameDesc(rest string) (name, description string) {
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "{") {
		if end := strings.Index(rest, "}"); end >= 0 {
			rest = strings.TrimSpace(rest[end+1:])
		}
	}
	parts := strings.SplitN(rest, " ", 2)
	name = parts[0]
	name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
	if eq := strings.Index(name, "="); eq >= 0 {
		name = name[:eq]
	}
	if len(parts) > 1 {
		description = strings.TrimSpace(strings.TrimPrefix(parts[1], "-"))
		description = strings.TrimSpace(description)
	}
	return name, description
}
