package token

// Position represents a location in the source code.
type Position struct {
	Line   int // 1-based line number
	Column int // 0-based column, in bytes from the start of the line
	Offset int // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// IsValid returns true if both start and end positions are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// LineIndex maps byte offsets to line/column positions.
type LineIndex struct {
	starts []int
}

// NewLineIndex builds a LineIndex for src.
func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts}
}

// Position returns the position of offset.
func (li *LineIndex) Position(offset int) Position {
	lo, hi := 0, len(li.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return Position{Line: lo + 1, Column: offset - li.starts[lo], Offset: offset}
}

// LineStart returns the offset of the first byte of the 1-based line.
func (li *LineIndex) LineStart(line int) int {
	if line < 1 {
		return 0
	}
	if line > len(li.starts) {
		return li.starts[len(li.starts)-1]
	}
	return li.starts[line-1]
}

// LineCount returns the number of lines.
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}
