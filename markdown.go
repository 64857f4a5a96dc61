// Markdown ingestion for the pack builder.
//
// Notes are usually authored as markdown files. Rather than storing raw
// markup, the builder flattens each document to plain text with blank
// lines between blocks, which is what the device renderer expects and
// what gives the splitter its paragraph boundaries. The title comes from
// the document itself when it has one: first level-1 heading, else first
// level-2 heading, else the filename.
package ntx

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// NoteFromMarkdown turns one markdown document into a builder input.
// filename is used as the title fallback when the document has no
// level-1 or level-2 heading.
func NoteFromMarkdown(content []byte, filename string) NoteSource {
	if len(content) == 0 {
		return NoteSource{Title: titleFromFilename(filename)}
	}

	doc := markdown.Parser().Parse(gmtext.NewReader(content))

	titleNode := findHeading(doc, 1)
	if titleNode == nil {
		titleNode = findHeading(doc, 2)
	}

	title := ""
	if titleNode != nil {
		title = blockText(titleNode, content)
	}
	if title == "" {
		title = titleFromFilename(filename)
	}

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n == titleNode {
			continue // the title is not repeated in the body
		}
		if text := blockText(n, content); text != "" {
			blocks = append(blocks, text)
		}
	}

	return NoteSource{Title: title, Text: strings.Join(blocks, "\n\n")}
}

// findHeading returns the document's first heading of the given level.
func findHeading(doc ast.Node, level int) ast.Node {
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == level {
			return n
		}
	}
	return nil
}

// blockText extracts the plain text of one block node, joining nested
// blocks (list items, blockquote paragraphs) with newlines.
func blockText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(content))
			}
			return ast.WalkSkipChildren, nil
		case *ast.ListItem, *ast.Paragraph:
			if node != n && b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// titleFromFilename derives a display title from a filename: extension
// dropped, words capitalised.
func titleFromFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
