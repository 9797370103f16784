package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapfmt/pkg/format"
)

// JSON-RPC error codes.
const (
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeRequestFailed  = -32803
)

// ErrExitWithoutShutdown is returned by Run when the client sends exit
// before shutdown.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// Formatter formats a whole source, or only the given lines when lines is
// not empty. The boolean reports a cache hit.
type Formatter interface {
	Format(ctx context.Context, src string, lines []format.LineRange) (string, bool, error)
}

// Server implements the Language Server Protocol for Java formatting.
type Server struct {
	documents *DocumentStore
	formatter Formatter
	version   string

	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex

	logger *slog.Logger

	initialized bool
	shutdown    bool
	exited      bool
}

// NewServer creates a new LSP server instance.
func NewServer(reader io.Reader, writer io.Writer, f Formatter) *Server {
	return NewServerWithLogger(reader, writer, f, nil)
}

// NewServerWithLogger creates a new LSP server instance with a custom logger.
func NewServerWithLogger(reader io.Reader, writer io.Writer, f Formatter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Server{
		documents: NewDocumentStore(),
		formatter: f,
		reader:    bufio.NewReader(reader),
		writer:    writer,
		logger:    logger,
	}
}

// SetVersion sets the version reported in the initialize response.
func (s *Server) SetVersion(v string) { s.version = v }

// Run processes JSON-RPC messages until the client sends exit, the input
// ends or ctx is cancelled. Stdio gives no way to interrupt a blocked read,
// so cancellation is noticed between messages.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("leapfmt LSP server starting")

	for !s.exited {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("client disconnected")
				return nil
			}
			s.logger.Error("error reading message", "error", err)
			continue
		}
		if err := s.handleMessage(ctx, msg); err != nil {
			s.logger.Error("error handling message", "method", msg.Method, "error", err)
		}
	}
	if !s.shutdown {
		return ErrExitWithoutShutdown
	}
	return nil
}

// JSONRPCMessage represents a JSON-RPC 2.0 message.
type JSONRPCMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *JSONRPCError    `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC error.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// readMessage reads one Content-Length framed message.
func (s *Server) readMessage() (*JSONRPCMessage, error) {
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			contentLength, err = strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
		}
	}
	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}
	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}
	return &msg, nil
}

func (s *Server) sendResponse(id *json.RawMessage, result any, err *JSONRPCError) {
	msg := JSONRPCMessage{JSONRPC: "2.0", ID: id}
	if err != nil {
		msg.Error = err
	} else {
		resultBytes, _ := json.Marshal(result)
		msg.Result = resultBytes
	}
	s.writeMessage(&msg)
}

func (s *Server) sendNotification(method string, params any) {
	msg := JSONRPCMessage{JSONRPC: "2.0", Method: method}
	if params != nil {
		paramsBytes, _ := json.Marshal(params)
		msg.Params = paramsBytes
	}
	s.writeMessage(&msg)
}

func (s *Server) writeMessage(msg *JSONRPCMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("error marshaling message", "error", err)
		return
	}
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	_, _ = s.writer.Write([]byte(header))
	_, _ = s.writer.Write(body)
}

func (s *Server) handleMessage(ctx context.Context, msg *JSONRPCMessage) error {
	s.logger.Debug("received", "method", msg.Method)

	if s.shutdown && msg.Method != "exit" {
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidRequest, Message: "server is shutting down"})
		}
		return nil
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		s.initialized = true
		s.logger.Info("server initialized")
		return nil
	case "shutdown":
		s.shutdown = true
		s.sendResponse(msg.ID, nil, nil)
		s.logger.Info("server shutdown")
		return nil
	case "exit":
		s.exited = true
		s.logger.Info("server exit")
		return nil
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, msg)
	case "textDocument/didSave":
		return s.handleDidSave(ctx, msg)
	case "textDocument/formatting":
		return s.handleFormatting(ctx, msg)
	case "textDocument/rangeFormatting":
		return s.handleRangeFormatting(ctx, msg)
	default:
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    codeMethodNotFound,
				Message: "Method not found: " + msg.Method,
			})
		}
		return nil
	}
}

// --- Lifecycle handlers ---

func (s *Server) handleInitialize(msg *JSONRPCMessage) error {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}
	s.logger.Info("project root", "path", URIToPath(params.RootURI))

	s.sendResponse(msg.ID, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
				Save:      &SaveOptions{IncludeText: true},
			},
			DocumentFormattingProvider:      true,
			DocumentRangeFormattingProvider: true,
		},
		ServerInfo: &ServerInfo{Name: "leapfmt", Version: s.version},
	}, nil)
	return nil
}

// --- Document handlers ---

func (s *Server) handleDidOpen(ctx context.Context, msg *JSONRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.documents.Open(params.TextDocument.URI, params.TextDocument.Text, params.TextDocument.Version)
	s.logger.Debug("opened", "uri", params.TextDocument.URI)
	s.publishDiagnostics(ctx, params.TextDocument.URI)
	return nil
}

func (s *Server) handleDidClose(msg *JSONRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.documents.Close(params.TextDocument.URI)
	s.logger.Debug("closed", "uri", params.TextDocument.URI)
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []Diagnostic{},
	})
	return nil
}

func (s *Server) handleDidChange(ctx context.Context, msg *JSONRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	// Full sync: the last change holds the whole text.
	if n := len(params.ContentChanges); n > 0 {
		s.documents.Update(params.TextDocument.URI, params.ContentChanges[n-1].Text, params.TextDocument.Version)
	}
	s.publishDiagnostics(ctx, params.TextDocument.URI)
	return nil
}

func (s *Server) handleDidSave(ctx context.Context, msg *JSONRPCMessage) error {
	var params DidSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if params.Text != "" {
		if doc := s.documents.Get(uri); doc != nil {
			s.documents.Update(uri, params.Text, doc.Version)
		}
	}
	s.logger.Debug("saved", "path", URIToPath(uri))
	s.publishDiagnostics(ctx, uri)
	return nil
}

// --- Formatting handlers ---

func (s *Server) handleFormatting(ctx context.Context, msg *JSONRPCMessage) error {
	var params DocumentFormattingParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}
	return s.respondWithEdits(ctx, msg.ID, params.TextDocument.URI, nil)
}

func (s *Server) handleRangeFormatting(ctx context.Context, msg *JSONRPCMessage) error {
	var params DocumentRangeFormattingParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return s.respondWithEdits(ctx, msg.ID, params.TextDocument.URI, nil)
	}
	first, last := doc.LineSpan(params.Range)
	return s.respondWithEdits(ctx, msg.ID, params.TextDocument.URI, []format.LineRange{{First: first, Last: last}})
}

// respondWithEdits formats the document and answers with a single edit
// replacing it, or no edits when the text is already formatted.
func (s *Server) respondWithEdits(ctx context.Context, id *json.RawMessage, uri string, lines []format.LineRange) error {
	doc := s.documents.Get(uri)
	if doc == nil {
		s.sendResponse(id, nil, &JSONRPCError{Code: codeInvalidParams, Message: "document not open: " + uri})
		return nil
	}

	out, _, err := s.formatter.Format(ctx, doc.Content, lines)
	if err != nil {
		s.publish(doc, err)
		s.sendResponse(id, nil, &JSONRPCError{Code: codeRequestFailed, Message: err.Error()})
		return nil
	}
	edits := []TextEdit{}
	if out != doc.Content {
		edits = append(edits, TextEdit{Range: doc.FullRange(), NewText: out})
	}
	s.sendResponse(id, edits, nil)
	return nil
}

// publishDiagnostics formats the document and reports why it cannot be
// formatted, or clears earlier reports.
func (s *Server) publishDiagnostics(ctx context.Context, uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}
	_, _, err := s.formatter.Format(ctx, doc.Content, nil)
	s.publish(doc, err)
}

func (s *Server) publish(doc *Document, err error) {
	version := doc.Version
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     &version,
		Diagnostics: diagnosticsFor(doc, err),
	})
}
