package sidebar

import (
	"bytes"
	"errors"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var errMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// splitFrontMatter separates `---` delimited YAML front matter from the body.
// Documents without front matter return a nil map and the full input.
func splitFrontMatter(content []byte) (map[string]any, []byte, error) {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, nil
	}

	rest := content[len(open):]
	var raw, body []byte
	if bytes.HasPrefix(rest, open) {
		body = rest[len(open):]
	} else {
		closeSeq := []byte(nl + "---" + nl)
		idx := bytes.Index(rest, closeSeq)
		if idx < 0 {
			return nil, nil, errMissingClosingDelimiter
		}
		raw = rest[:idx+len(nl)]
		body = rest[idx+len(closeSeq):]
	}

	fields := map[string]any{}
	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &fields); err != nil {
			return nil, nil, err
		}
	}
	return fields, body, nil
}

// documentTitle returns the front matter title or the first level-1
// heading of a markdown document, or "" when neither exists.
func documentTitle(content []byte) string {
	fields, body, err := splitFrontMatter(content)
	if err != nil {
		// Unterminated front matter: treat the whole file as body.
		body = content
	}
	if t, ok := fields["title"].(string); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return firstHeading(body)
}

func firstHeading(body []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok && h.Level == 1 {
			title = strings.TrimSpace(plainText(h, body))
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

// plainText concatenates the text segments below n, dropping inline markup.
func plainText(n gmast.Node, src []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}
