// Package javadoc reflows documentation comments.
//
// A comment is split into blocks: paragraphs, block tags (@param and
// friends), list items and preformatted regions. Paragraphs and tags are
// refilled to the available width; <pre> regions and multi-line {@code}
// spans are kept line for line.
package javadoc

import (
	"strings"
	"unicode"
)

// ContinuationIndent is the indent of the wrapped lines of a block tag or
// list item.
const ContinuationIndent = 4

type blockKind int

const (
	paragraph blockKind = iota
	tag
	listItem
	htmlLine // a block-level tag kept on its own line
	pre
)

type block struct {
	kind  blockKind
	words []string
	lines []string // pre only
}

// Format reflows the doc comment text for a comment starting at column with
// lines no wider than maxWidth. Text that is not a doc comment is returned
// unchanged.
func Format(text string, column, maxWidth int) string {
	if !strings.HasPrefix(text, "/**") || !strings.HasSuffix(text, "*/") || len(text) < len("/***/") {
		return text
	}
	blocks := parse(text[3 : len(text)-2])
	width := maxWidth - column - len(" * ")
	lines := render(blocks, width)
	if len(lines) == 0 {
		return "/** */"
	}
	if len(lines) == 1 && len(blocks) == 1 && blocks[0].kind == paragraph {
		one := "/** " + lines[0] + " */"
		if column+len(one) <= maxWidth {
			return one
		}
	}
	var sb strings.Builder
	sb.WriteString("/**\n")
	for _, l := range lines {
		if l == "" {
			sb.WriteString(" *\n")
			continue
		}
		sb.WriteString(" * ")
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString(" */")
	return sb.String()
}

// stripLine removes the leading whitespace and star of a comment line and
// one space after the star.
func stripLine(l string) string {
	l = strings.TrimLeft(l, " \t")
	if strings.HasPrefix(l, "*") {
		l = l[1:]
		if strings.HasPrefix(l, " ") {
			l = l[1:]
		}
	}
	return strings.TrimRight(l, " \t")
}

var blockTags = []string{
	"<ul", "</ul", "<ol", "</ol", "<table", "</table", "<tr", "</tr", "<h1", "<h2", "<h3",
	"<h4", "<h5", "<h6", "<blockquote", "</blockquote", "<dl", "</dl", "<dt", "<dd",
}

func isBlockHTML(l string) bool {
	lower := strings.ToLower(l)
	for _, t := range blockTags {
		if strings.HasPrefix(lower, t) {
			return true
		}
	}
	return false
}

func parse(body string) []*block {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	raw := strings.Split(body, "\n")

	var blocks []*block
	var cur *block
	flush := func() {
		if cur != nil && (len(cur.words) > 0 || len(cur.lines) > 0) {
			blocks = append(blocks, cur)
		}
		cur = nil
	}
	start := func(kind blockKind) {
		flush()
		cur = &block{kind: kind}
	}

	inPre := false
	codeDepth := 0
	for _, r := range raw {
		l := stripLine(r)
		if inPre || codeDepth > 0 {
			cur.lines = append(cur.lines, l)
			if inPre && strings.Contains(strings.ToLower(l), "</pre>") {
				inPre = false
			}
			if codeDepth > 0 {
				codeDepth += braceDelta(l)
			}
			if !inPre && codeDepth <= 0 {
				codeDepth = 0
				flush()
			}
			continue
		}
		trimmed := strings.TrimSpace(l)
		lower := strings.ToLower(trimmed)
		switch {
		case trimmed == "":
			flush()
			continue
		case strings.HasPrefix(lower, "<pre"):
			start(pre)
			cur.lines = append(cur.lines, trimmed)
			if !strings.Contains(lower, "</pre>") {
				inPre = true
			} else {
				flush()
			}
			continue
		case strings.HasPrefix(trimmed, "{@code") && braceDelta(trimmed) > 0:
			start(pre)
			cur.lines = append(cur.lines, trimmed)
			codeDepth = braceDelta(trimmed)
			continue
		case strings.HasPrefix(trimmed, "@"):
			start(tag)
		case strings.HasPrefix(lower, "<li"):
			start(listItem)
		case strings.HasPrefix(lower, "<p>") || lower == "<p>":
			start(paragraph)
		case isBlockHTML(trimmed):
			start(htmlLine)
			cur.words = words(trimmed)
			flush()
			continue
		case cur == nil:
			start(paragraph)
		}
		cur.words = append(cur.words, words(trimmed)...)
	}
	flush()
	return blocks
}

func braceDelta(l string) int {
	return strings.Count(l, "{") - strings.Count(l, "}")
}

// words splits s on whitespace, keeping inline tags and HTML tags whole.
func words(s string) []string {
	var out []string
	var w strings.Builder
	depth := 0
	inAngle := false
	for i, r := range s {
		switch {
		case r == '{' && strings.HasPrefix(s[i:], "{@"):
			depth++
		case r == '{' && depth > 0:
			depth++
		case r == '}' && depth > 0:
			depth--
		case r == '<' && depth == 0:
			inAngle = true
		case r == '>' && inAngle:
			inAngle = false
		case unicode.IsSpace(r) && depth == 0 && !inAngle:
			if w.Len() > 0 {
				out = append(out, w.String())
				w.Reset()
			}
			continue
		}
		w.WriteRune(r)
	}
	if w.Len() > 0 {
		out = append(out, w.String())
	}
	return out
}

func render(blocks []*block, width int) []string {
	var lines []string
	sawTag := false
	for i, b := range blocks {
		if i > 0 {
			prev := blocks[i-1]
			switch {
			case b.kind == tag && !sawTag:
				lines = append(lines, "")
			case b.kind == tag, b.kind == listItem, b.kind == htmlLine, prev.kind == htmlLine,
				prev.kind == listItem && b.kind != paragraph:
			default:
				lines = append(lines, "")
			}
		}
		switch b.kind {
		case pre:
			lines = append(lines, b.lines...)
		case tag:
			sawTag = true
			lines = append(lines, fill(b.words, width, ContinuationIndent)...)
		case listItem:
			lines = append(lines, fill(b.words, width, ContinuationIndent)...)
		default:
			lines = append(lines, fill(b.words, width, 0)...)
		}
	}
	return lines
}

// fill packs words into lines of at most width columns; lines after the
// first are indented by hang.
func fill(words []string, width, hang int) []string {
	var lines []string
	var line strings.Builder
	for _, w := range words {
		switch {
		case line.Len() == 0:
			if len(lines) > 0 {
				line.WriteString(strings.Repeat(" ", hang))
			}
			line.WriteString(w)
		case line.Len()+1+len(w) > width:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(strings.Repeat(" ", hang))
			line.WriteString(w)
		default:
			line.WriteByte(' ')
			line.WriteString(w)
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
