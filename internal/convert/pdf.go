// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDF extracts text from PDF documents with pdfcpu. Pages are rendered in
// order and joined with single newlines; no page numbers are injected.
// Per prd002-text-extraction R2.1-R2.3.
type PDF struct{}

func (PDF) Extract(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}

	pages := make([]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		text, err := pageText(ctx, pageNr)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageNr, err)
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}

// pageText renders the text-showing operators of one page's content stream.
func pageText(ctx *model.Context, pageNr int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return "", fmt.Errorf("content stream: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("content stream: %w", err)
	}
	return contentText(data), nil
}

// literalRe matches PDF string literals: (text).
var literalRe = regexp.MustCompile(`\(([^)]*)\)`)

// contentText walks a content stream line by line and assembles the text
// painted by the Tj, TJ, and ' operators. Td/TD positioning becomes a
// space, T* a line break. Everything else is ignored.
func contentText(data []byte) string {
	var out pageBuilder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range literalRe.FindAllSubmatch(line, -1) {
				out.text(decodeLiteral(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			out.lineBreak()
			for _, m := range literalRe.FindAllSubmatch(line, -1) {
				out.text(decodeLiteral(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			out.space()
		case bytes.Equal(line, []byte("T*")):
			out.lineBreak()
		}
	}

	return out.String()
}

// pageBuilder accumulates page text, collapsing runs of spaces and blank
// lines as it goes.
type pageBuilder struct {
	b    strings.Builder
	last byte
}

func (p *pageBuilder) text(s string) {
	for _, r := range s {
		switch r {
		case '\n':
			p.lineBreak()
		case ' ', '\t', '\r':
			p.space()
		default:
			p.b.WriteRune(r)
			p.last = 'x'
		}
	}
}

func (p *pageBuilder) space() {
	if p.last != 0 && p.last != ' ' && p.last != '\n' {
		p.b.WriteByte(' ')
		p.last = ' '
	}
}

func (p *pageBuilder) lineBreak() {
	if p.last != 0 && p.last != '\n' {
		p.b.WriteByte('\n')
		p.last = '\n'
	}
}

func (p *pageBuilder) String() string {
	return strings.TrimRight(p.b.String(), " \n")
}

// decodeLiteral resolves the escape sequences of a PDF string literal.
func decodeLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			sb.WriteByte(c)
			continue
		}

		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		case '0', '1', '2', '3', '4', '5', '6', '7':
			val := int(raw[i] - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		default:
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}
