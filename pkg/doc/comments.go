package doc

import (
	"regexp"
	"strings"
)

var (
	// lineCommentMissingSpace matches "//foo" but not the IDE markers that
	// must stay attached to the slashes.
	lineCommentMissingSpace = regexp.MustCompile(`^(//+)([^\s/])`)
	ideMarker               = regexp.MustCompile(`^//+(noinspection|\$NON-NLS-\d+\$)`)

	parameterComment = regexp.MustCompile(`^/\*\s*(\w+)\s*=\s*\*/$`)
)

// RewriteComment returns comment text laid out to start at column. Line
// comments gain a space after the slashes and wrap at maxWidth; doc
// comments go through formatJavadoc when it is set; javadoc-shaped block
// comments are re-aligned on their stars and other block comments move as
// a unit.
func RewriteComment(text string, maxWidth, column int, formatJavadoc func(string, int) string) string {
	if strings.HasPrefix(text, "/**") && text != "/**/" && formatJavadoc != nil {
		text = formatJavadoc(text, column)
	}
	lines := splitLines(text)
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\f")
	}
	if strings.HasPrefix(text, "//") {
		return indentLineComments(lines, maxWidth, column)
	}
	if m := parameterComment.FindStringSubmatch(text); m != nil {
		return "/* " + m[1] + "= */"
	}
	if javadocShaped(lines) {
		return indentJavadoc(lines, column)
	}
	return preserveIndentation(lines, column)
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

func indentLineComments(lines []string, maxWidth, column int) string {
	lines = wrapLineComments(lines, maxWidth, column)
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(lines[0]))
	pad := strings.Repeat(" ", column)
	for _, l := range lines[1:] {
		sb.WriteString("\n")
		sb.WriteString(pad)
		sb.WriteString(strings.TrimSpace(l))
	}
	return sb.String()
}

func wrapLineComments(lines []string, maxWidth, column int) []string {
	var out []string
	for _, line := range lines {
		if m := lineCommentMissingSpace.FindStringSubmatchIndex(line); m != nil && !ideMarker.MatchString(line) {
			n := m[3]
			line = line[:n] + " " + line[n:]
		}
		if strings.HasPrefix(line, "// MOE:") {
			out = append(out, line)
			continue
		}
		for len(line)+column > maxWidth {
			idx := maxWidth - column
			for idx >= 2 && !isSpace(line[idx]) {
				idx--
			}
			if idx <= 2 {
				break
			}
			out = append(out, line[:idx])
			line = "//" + line[idx:]
		}
		out = append(out, line)
	}
	return out
}

func javadocShaped(lines []string) bool {
	first := strings.TrimSpace(lines[0])
	if strings.HasPrefix(first, "/**") {
		return true
	}
	if !strings.HasPrefix(first, "/*") {
		return false
	}
	for _, l := range lines[1:] {
		if !strings.HasPrefix(strings.TrimSpace(l), "*") {
			return false
		}
	}
	return true
}

// indentJavadoc re-aligns continuation lines one column right of the
// opening slash, adding the star where it is missing.
func indentJavadoc(lines []string, column int) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(lines[0]))
	pad := strings.Repeat(" ", column+1)
	for _, l := range lines[1:] {
		sb.WriteString("\n")
		sb.WriteString(pad)
		l = strings.TrimSpace(l)
		if !strings.HasPrefix(l, "*") {
			sb.WriteString("* ")
		}
		sb.WriteString(l)
	}
	return sb.String()
}

// preserveIndentation shifts a block comment to column keeping the
// relative indentation of its continuation lines.
func preserveIndentation(lines []string, column int) string {
	start := -1
	for _, l := range lines[1:] {
		if c := strings.IndexFunc(l, func(r rune) bool { return r != ' ' && r != '\t' }); c >= 0 {
			if start < 0 || c < start {
				start = c
			}
		}
	}
	var sb strings.Builder
	sb.WriteString(lines[0])
	pad := strings.Repeat(" ", column)
	for _, l := range lines[1:] {
		sb.WriteString("\n")
		sb.WriteString(pad)
		if start >= 0 && len(l) >= start {
			sb.WriteString(l[start:])
		} else {
			sb.WriteString(l)
		}
	}
	return sb.String()
}
