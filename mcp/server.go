package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"

	"gorm.io/gorm"

	"github.com/termfx/hlebhint/db"
	"github.com/termfx/hlebhint/internal/analysis"
	"github.com/termfx/hlebhint/models"
)

// StdioServer handles MCP communication over stdio
type StdioServer struct {
	config Config
	db     *gorm.DB

	reader *bufio.Reader
	writer *bufio.Writer
	wmu    sync.Mutex

	router   *Router
	analyzer *analysis.Analyzer
	logger   *slog.Logger

	// Tool registry
	tools map[string]ToolHandler
	mu    sync.RWMutex

	// Session tracking
	session *models.Session

	// Debug logging
	debugLog func(format string, args ...any)
}

// ToolHandler represents a function that handles a tool call
type ToolHandler func(ctx context.Context, params json.RawMessage) (any, error)

// NewStdioServer creates a new MCP server around analyzer
func NewStdioServer(config Config, analyzer *analysis.Analyzer) (*StdioServer, error) {
	if analyzer == nil {
		return nil, errors.New("mcp: analyzer is required")
	}
	if config.Input == nil {
		config.Input = os.Stdin
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	server := &StdioServer{
		config:   config,
		reader:   bufio.NewReader(config.Input),
		writer:   bufio.NewWriter(config.Output),
		router:   NewRouter(),
		analyzer: analyzer,
		logger:   logger,
		tools:    make(map[string]ToolHandler),
	}

	// Set debug logger
	if config.Debug {
		server.debugLog = func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "component", "mcp")
		}
	} else {
		server.debugLog = func(format string, args ...any) {}
	}

	// Initialize database if URL provided
	if config.DatabaseURL != "" {
		database, err := db.Connect(config.DatabaseURL, config.Debug, config.LibsqlAuthToken)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		server.db = database

		session, err := db.NewSession(database, nil)
		if err != nil {
			server.debugLog("Failed to create session: %v", err)
		} else {
			server.session = session
			server.debugLog("Session created: %s", session.ID)
		}
	}

	server.registerMethods()
	server.registerBuiltinTools()

	return server, nil
}

func (s *StdioServer) registerMethods() {
	s.router.Register("initialize", s.handleInitialize)
	s.router.Register("initialized", s.handleInitialized)
	s.router.Register("notifications/initialized", s.handleInitialized)
	s.router.Register("ping", s.handlePing)
	s.router.Register("tools/list", s.handleListTools)
	s.router.Register("tools/call", s.handleCallTool)
	s.router.Register("prompts/list", func(_ context.Context, req Request) Response {
		return SuccessResponse(req.ID, map[string]any{"prompts": []any{}})
	})
	s.router.Register("resources/list", func(_ context.Context, req Request) Response {
		return SuccessResponse(req.ID, map[string]any{"resources": []any{}})
	})
}

// Start processes JSON-RPC requests until EOF or ctx is cancelled
func (s *StdioServer) Start(ctx context.Context) error {
	sessionID := ""
	if s.session != nil {
		sessionID = s.session.ID
	}
	s.debugLog("MCP server started, session: %s", sessionID)

	decoder := json.NewDecoder(s.reader)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		err := decoder.Decode(&req)

		if err == io.EOF {
			s.debugLog("EOF received, shutting down gracefully")
			return nil
		}

		if err != nil {
			if err == io.ErrUnexpectedEOF {
				s.debugLog("Unexpected EOF, shutting down")
				return nil
			}

			errMsg := "Parse error"
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			switch {
			case errors.As(err, &syntaxErr):
				errMsg = fmt.Sprintf("JSON syntax error at position %d: %v", syntaxErr.Offset, err)
			case errors.As(err, &typeErr):
				errMsg = fmt.Sprintf("JSON type error: expected %s for field %s", typeErr.Type, typeErr.Field)
			default:
				errMsg = fmt.Sprintf("JSON decode error: %v", err)
			}

			// Send parse error but continue running
			s.debugLog("%s", errMsg)
			s.sendResponse(ErrorResponse(nil, ParseError, errMsg))

			// Skip the rest of the broken line and start a fresh decoder
			s.reader = bufio.NewReader(io.MultiReader(decoder.Buffered(), s.reader))
			if _, err := s.reader.ReadString('\n'); err != nil {
				return nil
			}
			decoder = json.NewDecoder(s.reader)
			continue
		}

		s.debugLog("Received: %s", truncate(fmt.Sprintf("%v", req), 200))

		response := s.handleRequest(ctx, req)

		// Don't send response for notifications (no ID)
		if !req.IsNotification() {
			s.sendResponse(response)
		}
	}
}

// handleRequest routes requests and contains handler panics
func (s *StdioServer) handleRequest(ctx context.Context, req Request) (resp Response) {
	s.debugLog("Handling method: %s", req.Method)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("HLEB2_PLUGIN exception",
				"method", req.Method,
				"error", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			resp = ErrorResponse(req.ID, InternalError, "Internal error")
		}
	}()
	return s.router.Dispatch(ctx, req)
}

// sendResponse writes a response line to the output
func (s *StdioServer) sendResponse(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.debugLog("Failed to marshal response: %v", err)
		return
	}

	s.debugLog("Sending: %s", truncate(string(data), 200))

	s.wmu.Lock()
	defer s.wmu.Unlock()
	fmt.Fprintf(s.writer, "%s\n", data)
	s.writer.Flush()
}

// RegisterTool adds a custom tool handler
func (s *StdioServer) RegisterTool(name string, handler ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[name] = handler
}

// Close ends the session and releases the database
func (s *StdioServer) Close() error {
	if s.db == nil {
		return nil
	}
	if s.session != nil {
		if err := db.EndSession(s.db, s.session.ID); err != nil {
			s.debugLog("Failed to end session: %v", err)
		}
	}
	return db.Close(s.db)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
