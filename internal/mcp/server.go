package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/pplx-mcp/pplx-mcp/internal/ratelimit"
	"github.com/pplx-mcp/pplx-mcp/internal/upstream"
	"github.com/pplx-mcp/pplx-mcp/internal/usage"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "pplx-mcp"
	ServerVersion   = "0.2.0"
)

// Completer is the upstream surface the tool handlers consume.
type Completer interface {
	Chat(ctx context.Context, q upstream.Query) (string, error)
}

// Server dispatches newline-delimited JSON-RPC messages from the input
// stream to tool handlers and writes responses back. Tool calls run on
// their own goroutines, so responses may leave in completion order
// rather than arrival order; clients correlate by id.
type Server struct {
	framer   *Framer
	writer   io.Writer
	writeMu  sync.Mutex
	registry *Registry
	limiter  *ratelimit.Limiter
	upstream Completer
	ledger   *usage.Store
	log      *slog.Logger
	wg       sync.WaitGroup
}

// Options carries the collaborators the server dispatches to. Ledger
// and Logger are optional.
type Options struct {
	Upstream Completer
	Limiter  *ratelimit.Limiter
	Ledger   *usage.Store
	Logger   *slog.Logger
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		// Diagnostics must stay off stdout, the protocol stream.
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	s := &Server{
		framer:   NewFramer(os.Stdin),
		writer:   os.Stdout,
		registry: NewRegistry(),
		limiter:  opts.Limiter,
		upstream: opts.Upstream,
		ledger:   opts.Ledger,
		log:      logger,
	}
	s.registerTools()
	return s
}

// Run reads lines until the input stream closes, then waits for
// in-flight tool calls to finish. In-flight upstream calls are not
// cancelled on shutdown.
func (s *Server) Run() error {
	for {
		line, err := s.framer.Next()
		if err != nil {
			s.wg.Wait()
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}
		s.handleLine(line)
	}
}

func (s *Server) handleLine(line []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		// No reliable id to correlate an error response to.
		s.log.Warn("dropping unparseable input line", "error", err)
		return
	}

	defer s.recoverPanic(req.ID)

	if req.ID == nil || req.Method == "" {
		s.sendError(req.ID, CodeInvalidRequest, "Invalid request", "id and method are required")
		return
	}

	switch req.Method {
	case "initialize":
		s.handleInitialize(&req)
	case "ping":
		s.sendResult(req.ID, map[string]interface{}{})
	case "tools/list":
		s.handleListTools(&req)
	case "tools/call":
		s.handleCallTool(&req)
	default:
		s.sendError(req.ID, CodeMethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) {
	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
		Capabilities: ServerCapabilities{
			Tools: &ToolsCapability{ListChanged: true},
		},
	}
	s.sendResult(req.ID, result)
}

func (s *Server) handleListTools(req *JSONRPCRequest) {
	s.sendResult(req.ID, ListToolsResult{Tools: s.registry.List()})
}

func (s *Server) handleCallTool(req *JSONRPCRequest) {
	paramsBytes, err := json.Marshal(req.Params)
	if err != nil {
		s.sendError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		return
	}

	var params CallToolParams
	if err := json.Unmarshal(paramsBytes, &params); err != nil {
		s.sendError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		return
	}

	if params.Name == "" || params.Arguments == nil {
		s.sendError(req.ID, CodeInvalidParams, "Invalid params", "name and arguments are required")
		return
	}

	tool, ok := s.registry.Lookup(params.Name)
	if !ok {
		s.sendError(req.ID, CodeMethodNotFound, fmt.Sprintf("Unknown tool: %s", params.Name), nil)
		return
	}

	args, err := tool.ValidateArgs(params.Arguments)
	if err != nil {
		s.sendToolError(req.ID, err.Error())
		return
	}

	// A slow upstream call must not hold up later lines; the response
	// goes out whenever this call completes.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.recoverPanic(req.ID)

		text, err := tool.Handler(context.Background(), args)
		if err != nil {
			s.sendToolError(req.ID, err.Error())
			return
		}
		s.sendResult(req.ID, CallToolResult{
			Content: []ContentBlock{
				{Type: "text", Text: text},
			},
		})
	}()
}

func (s *Server) recoverPanic(id interface{}) {
	if r := recover(); r != nil {
		s.log.Error("panic while handling request", "id", id, "panic", r)
		s.sendError(id, CodeInternalError, "Internal error", fmt.Sprint(r))
	}
}

func (s *Server) sendResult(id interface{}, result interface{}) {
	s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) sendError(id interface{}, code int, message string, data interface{}) {
	s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

func (s *Server) sendToolError(id interface{}, message string) {
	s.sendResult(id, CallToolResult{
		Content: []ContentBlock{
			{Type: "text", Text: message},
		},
		IsError: true,
	})
}

func (s *Server) send(response JSONRPCResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		s.log.Error("failed to marshal response", "error", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	fmt.Fprintf(s.writer, "%s\n", data)
}
