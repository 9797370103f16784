package lsp

import (
	"sort"
	"strings"
	"sync"
)

// Document is an open Java source in the editor.
type Document struct {
	URI     string // file:///path/to/Foo.java
	Content string
	Version int
	Lines   []int // byte offsets of line starts
}

// DocumentStore holds the open documents.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: make(map[string]*Document)}
}

// Open adds a document, replacing any previous one with the same URI.
func (s *DocumentStore) Open(uri, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[uri] = newDocument(uri, content, version)
}

// Close forgets a document.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, uri)
}

// Get returns a snapshot of the document, or nil when it is not open.
// Documents are replaced rather than mutated, so the snapshot is safe to
// read while edits arrive.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents[uri]
}

// Update replaces the content of an open document. Updates for unknown
// URIs are dropped.
func (s *DocumentStore) Update(uri, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[uri]; ok {
		s.documents[uri] = newDocument(uri, content, version)
	}
}

// List returns the URIs of all open documents, sorted.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

func newDocument(uri, content string, version int) *Document {
	return &Document{URI: uri, Content: content, Version: version, Lines: computeLineOffsets(content)}
}

func computeLineOffsets(content string) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// PositionToOffset converts a position to a byte offset, clamped to the
// document.
func (d *Document) PositionToOffset(pos Position) int {
	if d == nil || len(d.Lines) == 0 {
		return 0
	}
	line := int(pos.Line)
	if line >= len(d.Lines) {
		return len(d.Content)
	}
	offset := d.Lines[line] + int(pos.Character)
	if offset > len(d.Content) {
		return len(d.Content)
	}
	return offset
}

// OffsetToPosition converts a byte offset to a position.
func (d *Document) OffsetToPosition(offset int) Position {
	if d == nil || len(d.Lines) == 0 {
		return Position{}
	}
	offset = max(0, min(offset, len(d.Content)))
	line := sort.Search(len(d.Lines), func(i int) bool { return d.Lines[i] > offset }) - 1
	return Position{Line: uint32(line), Character: uint32(offset - d.Lines[line])} //nolint:gosec // G115: bounded by document size
}

// FullRange covers the whole document.
func (d *Document) FullRange() Range {
	return Range{Start: Position{}, End: d.OffsetToPosition(len(d.Content))}
}

// LineSpan converts a range to the 1-based inclusive span of lines it
// touches. A range ending at the start of a line does not include that
// line.
func (d *Document) LineSpan(r Range) (first, last int) {
	first, last = int(r.Start.Line)+1, int(r.End.Line)+1
	if r.End.Character == 0 && r.End.Line > r.Start.Line {
		last--
	}
	if n := len(d.Lines); last > n {
		last = n
	}
	if first > last {
		first = last
	}
	return first, last
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

// PathToURI converts a file system path to a file:// URI.
func PathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}
