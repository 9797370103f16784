package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/leapstack-labs/leapfmt/internal/engine"
	"github.com/leapstack-labs/leapfmt/internal/testutil"
	"github.com/leapstack-labs/leapfmt/pkg/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uri       = "file:///src/A.java"
	messy     = "class A{void f(){int x=1;}}"
	formatted = "class A {\n  void f() {\n    int x = 1;\n  }\n}\n"
)

// session builds the client side of a conversation.
type session struct {
	t   *testing.T
	buf bytes.Buffer
	id  int
}

func (s *session) send(method string, params any, request bool) {
	s.t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "method": method}
	if params != nil {
		msg["params"] = params
	}
	if request {
		s.id++
		msg["id"] = s.id
	}
	body, err := json.Marshal(msg)
	require.NoError(s.t, err)
	fmt.Fprintf(&s.buf, "Content-Length: %d\r\n\r\n%s", len(body), body)
}

func (s *session) request(method string, params any) { s.send(method, params, true) }
func (s *session) notify(method string, params any)  { s.send(method, params, false) }

func newSession(t *testing.T) *session {
	s := &session{t: t}
	s.request("initialize", map[string]any{"processId": 1, "rootUri": "file:///src"})
	s.notify("initialized", map[string]any{})
	return s
}

func (s *session) close() {
	s.request("shutdown", nil)
	s.notify("exit", nil)
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	opts, err := style.Lookup(string(style.Google))
	require.NoError(t, err)
	e, err := engine.New(engine.Config{Style: opts, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	return e
}

// run drives a server over the session and returns what it wrote.
func run(t *testing.T, s *session, f Formatter) ([]*JSONRPCMessage, error) {
	t.Helper()
	var out bytes.Buffer
	srv := NewServerWithLogger(&s.buf, &out, f, testutil.NewTestLogger(t))
	srv.SetVersion("test")
	err := srv.Run(context.Background())

	reader := &Server{reader: bufio.NewReader(&out)}
	var msgs []*JSONRPCMessage
	for {
		msg, rerr := reader.readMessage()
		if errors.Is(rerr, io.EOF) {
			break
		}
		require.NoError(t, rerr)
		msgs = append(msgs, msg)
	}
	return msgs, err
}

func responseTo(t *testing.T, msgs []*JSONRPCMessage, id int) *JSONRPCMessage {
	t.Helper()
	want := json.RawMessage(fmt.Sprint(id))
	for _, m := range msgs {
		if m.ID != nil && bytes.Equal(*m.ID, want) {
			return m
		}
	}
	require.Failf(t, "no response", "id %d", id)
	return nil
}

func diagnostics(t *testing.T, msgs []*JSONRPCMessage) []PublishDiagnosticsParams {
	t.Helper()
	var out []PublishDiagnosticsParams
	for _, m := range msgs {
		if m.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var p PublishDiagnosticsParams
		require.NoError(t, json.Unmarshal(m.Params, &p))
		out = append(out, p)
	}
	return out
}

func openParams(text string) map[string]any {
	return map[string]any{"textDocument": map[string]any{
		"uri": uri, "languageId": "java", "version": 1, "text": text,
	}}
}

func TestServer_Initialize(t *testing.T) {
	s := newSession(t)
	s.close()
	msgs, err := run(t, s, newEngine(t))
	require.NoError(t, err)

	var result InitializeResult
	require.NoError(t, json.Unmarshal(responseTo(t, msgs, 1).Result, &result))
	assert.True(t, result.Capabilities.DocumentFormattingProvider)
	assert.True(t, result.Capabilities.DocumentRangeFormattingProvider)
	assert.Equal(t, TextDocumentSyncKindFull, result.Capabilities.TextDocumentSync.Change)
	assert.Equal(t, "leapfmt", result.ServerInfo.Name)
	assert.Equal(t, "test", result.ServerInfo.Version)
}

func TestServer_Formatting(t *testing.T) {
	s := newSession(t)
	s.notify("textDocument/didOpen", openParams(messy))
	s.request("textDocument/formatting", map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"options":      map[string]any{"tabSize": 4, "insertSpaces": true},
	})
	s.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": 2},
		"contentChanges": []map[string]any{{"text": formatted}},
	})
	s.request("textDocument/formatting", map[string]any{"textDocument": map[string]any{"uri": uri}})
	s.close()

	msgs, err := run(t, s, newEngine(t))
	require.NoError(t, err)

	var edits []TextEdit
	require.NoError(t, json.Unmarshal(responseTo(t, msgs, 2).Result, &edits))
	require.Len(t, edits, 1)
	assert.Equal(t, formatted, edits[0].NewText)
	assert.Equal(t, Range{End: Position{Line: 0, Character: uint32(len(messy))}}, edits[0].Range)

	// Already formatted: no edits, and an empty array rather than null.
	assert.JSONEq(t, `[]`, string(responseTo(t, msgs, 3).Result))

	for _, d := range diagnostics(t, msgs) {
		assert.Empty(t, d.Diagnostics)
	}
}

func TestServer_RangeFormatting(t *testing.T) {
	s := newSession(t)
	s.notify("textDocument/didOpen", openParams("class A {\nint   x;\nint   y;\n}\n"))
	s.request("textDocument/rangeFormatting", map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"range": Range{
			Start: Position{Line: 2, Character: 0},
			End:   Position{Line: 3, Character: 0},
		},
	})
	s.close()

	msgs, err := run(t, s, newEngine(t))
	require.NoError(t, err)

	var edits []TextEdit
	require.NoError(t, json.Unmarshal(responseTo(t, msgs, 2).Result, &edits))
	require.Len(t, edits, 1)
	assert.Equal(t, "class A {\nint   x;\n  int y;\n}\n", edits[0].NewText)
}

func TestServer_Diagnostics(t *testing.T) {
	s := newSession(t)
	s.notify("textDocument/didOpen", openParams("class Bad { void f( }"))
	s.request("textDocument/formatting", map[string]any{"textDocument": map[string]any{"uri": uri}})
	s.notify("textDocument/didClose", map[string]any{"textDocument": map[string]any{"uri": uri}})
	s.close()

	msgs, err := run(t, s, newEngine(t))
	require.NoError(t, err)

	resp := responseTo(t, msgs, 2)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeRequestFailed, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "parse error")

	published := diagnostics(t, msgs)
	require.Len(t, published, 3)
	require.Len(t, published[0].Diagnostics, 1)
	d := published[0].Diagnostics[0]
	assert.Equal(t, CodeParseError, d.Code)
	assert.Equal(t, DiagnosticSeverityError, d.Severity)
	assert.Equal(t, diagnosticSource, d.Source)
	assert.Zero(t, d.Range.Start.Line)
	assert.Empty(t, published[2].Diagnostics, "closing clears diagnostics")
}

func TestServer_Errors(t *testing.T) {
	s := newSession(t)
	s.request("textDocument/formatting", map[string]any{"textDocument": map[string]any{"uri": "file:///none.java"}})
	s.request("textDocument/hover", map[string]any{})
	s.request("shutdown", nil)
	s.request("textDocument/formatting", map[string]any{"textDocument": map[string]any{"uri": uri}})
	s.notify("exit", nil)

	msgs, err := run(t, s, newEngine(t))
	require.NoError(t, err)
	assert.Equal(t, codeInvalidParams, responseTo(t, msgs, 2).Error.Code)
	assert.Equal(t, codeMethodNotFound, responseTo(t, msgs, 3).Error.Code)
	assert.Nil(t, responseTo(t, msgs, 4).Error)
	assert.Equal(t, codeInvalidRequest, responseTo(t, msgs, 5).Error.Code)
}

func TestServer_ExitWithoutShutdown(t *testing.T) {
	s := newSession(t)
	s.notify("exit", nil)
	_, err := run(t, s, newEngine(t))
	assert.ErrorIs(t, err, ErrExitWithoutShutdown)
}

func TestServer_EOF(t *testing.T) {
	s := newSession(t)
	_, err := run(t, s, newEngine(t))
	assert.NoError(t, err)
}

func TestDiagnosticsFor(t *testing.T) {
	doc := newDocument(uri, "class A {\n  int x\n}\n", 1)

	assert.Empty(t, diagnosticsFor(doc, nil))

	other := diagnosticsFor(doc, errors.New("boom"))
	require.Len(t, other, 1)
	assert.Equal(t, CodeFormatError, other[0].Code)
	assert.Equal(t, Range{}, other[0].Range)

	r := pointRange(doc, 2, 7)
	assert.Equal(t, Range{Start: Position{Line: 1, Character: 7}, End: Position{Line: 1, Character: 7}}, r,
		"a point at a line end stays empty")
	r = pointRange(doc, 2, 2)
	assert.Equal(t, Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 1, Character: 3}}, r)
}
