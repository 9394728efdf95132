package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// extractMarkdown walks the goldmark AST and collects the text segments,
// dropping the markup so headings and emphasis don't leak into chunks.
func extractMarkdown(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: markdown is not valid utf-8", ErrExtraction)
	}

	root := goldmark.New().Parser().Parse(gmtext.NewReader(content))
	var text strings.Builder
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && text.Len() > 0 {
				text.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			text.Write(t.Segment.Value(content))
			if t.SoftLineBreak() || t.HardLineBreak() {
				text.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: markdown: %v", ErrExtraction, err)
	}
	return text.String(), nil
}
