package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentStore(t *testing.T) {
	s := NewDocumentStore()
	s.Open("file:///b/B.java", "class B {}", 1)
	s.Open("file:///a/A.java", "class A {}", 1)
	assert.Equal(t, []string{"file:///a/A.java", "file:///b/B.java"}, s.List())

	before := s.Get("file:///a/A.java")
	s.Update("file:///a/A.java", "class A {\n}\n", 2)
	after := s.Get("file:///a/A.java")
	assert.Equal(t, "class A {}", before.Content, "snapshots are not mutated")
	assert.Equal(t, 2, after.Version)
	assert.Equal(t, []int{0, 10, 12}, after.Lines)

	s.Update("file:///missing.java", "x", 1)
	assert.Nil(t, s.Get("file:///missing.java"))

	s.Close("file:///a/A.java")
	assert.Nil(t, s.Get("file:///a/A.java"))
	assert.Len(t, s.List(), 1)
}

func TestDocument_Positions(t *testing.T) {
	doc := newDocument("file:///A.java", "class A {\n  int x;\n}", 1)

	tests := []struct {
		name   string
		pos    Position
		offset int
	}{
		{"start", Position{0, 0}, 0},
		{"second line", Position{1, 2}, 12},
		{"last line", Position{2, 1}, 20},
		{"past end of line clamps to content", Position{2, 9}, 20},
		{"past last line", Position{7, 0}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.offset, doc.PositionToOffset(tt.pos))
		})
	}

	assert.Equal(t, Position{Line: 1, Character: 2}, doc.OffsetToPosition(12))
	assert.Equal(t, Position{Line: 1, Character: 0}, doc.OffsetToPosition(10))
	assert.Equal(t, Position{Line: 0, Character: 0}, doc.OffsetToPosition(-4))
	assert.Equal(t, Range{End: Position{Line: 2, Character: 1}}, doc.FullRange())

	var nilDoc *Document
	assert.Equal(t, 0, nilDoc.PositionToOffset(Position{Line: 1}))
	assert.Equal(t, Position{}, nilDoc.OffsetToPosition(3))
}

func TestDocument_LineSpan(t *testing.T) {
	doc := newDocument("file:///A.java", "a\nb\nc\nd\n", 1)

	tests := []struct {
		name        string
		r           Range
		first, last int
	}{
		{"single line", Range{Start: Position{1, 0}, End: Position{1, 1}}, 2, 2},
		{"several lines", Range{Start: Position{0, 1}, End: Position{2, 1}}, 1, 3},
		{"end at start of line excludes it", Range{Start: Position{1, 0}, End: Position{3, 0}}, 2, 3},
		{"empty range at line start", Range{Start: Position{2, 0}, End: Position{2, 0}}, 3, 3},
		{"clamped to document", Range{Start: Position{3, 0}, End: Position{9, 4}}, 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := doc.LineSpan(tt.r)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}

func TestURIConversion(t *testing.T) {
	assert.Equal(t, "/src/A.java", URIToPath("file:///src/A.java"))
	assert.Equal(t, "/src/A.java", URIToPath("/src/A.java"))
	assert.Equal(t, "file:///src/A.java", PathToURI("/src/A.java"))
	assert.Equal(t, "file:///src/A.java", PathToURI("file:///src/A.java"))
}
