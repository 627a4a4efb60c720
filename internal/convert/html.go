// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML extracts visible text from HTML documents. Parsing is tolerant:
// whatever text nodes survive the parse are returned, with markup,
// scripts, and styles stripped, intra-block whitespace collapsed, and
// block boundaries preserved as line breaks.
// Per prd002-text-extraction R4.1-R4.4.
type HTML struct{}

func (HTML) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parsing markup: %w", err)
	}

	return visibleText(doc), nil
}

// blockLevel lists elements whose boundaries become line breaks in the
// extracted text.
var blockLevel = map[atom.Atom]bool{
	atom.Article:    true,
	atom.Blockquote: true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Ol:         true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Table:      true,
	atom.Td:         true,
	atom.Th:         true,
	atom.Title:      true,
	atom.Tr:         true,
	atom.Ul:         true,
}

// visibleText flattens the DOM into plain text, skipping script, style,
// and noscript subtrees entirely (their character data is not document
// text).
func visibleText(root *html.Node) string {
	var (
		b    strings.Builder
		last byte
	)

	space := func() {
		if last != 0 && last != ' ' && last != '\n' {
			b.WriteByte(' ')
			last = ' '
		}
	}
	lineBreak := func() {
		if last != 0 && last != '\n' {
			b.WriteByte('\n')
			last = '\n'
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}

		if n.Type == html.TextNode {
			for i, word := range strings.Fields(n.Data) {
				if i == 0 {
					space()
				} else {
					b.WriteByte(' ')
				}
				b.WriteString(word)
				last = 'x'
			}
			return
		}

		block := n.Type == html.ElementNode && blockLevel[n.DataAtom]
		if block {
			lineBreak()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			lineBreak()
		}
	}
	walk(root)

	return strings.TrimRight(b.String(), " \n")
}
