package mcp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"shinkuro/internal/logging"
	"shinkuro/internal/prompts"
	"shinkuro/internal/variables"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	MethodInitialize              = "initialize"
	MethodNotificationInitialized = "notifications/initialized"
	MethodPromptsList             = "prompts/list"
	MethodPromptsGet              = "prompts/get"
	MethodShutdown                = "shutdown"
)

// supportedProtocolVersions are the versions echoed back when a client asks
// for them. Anything else is answered with the newest.
var supportedProtocolVersions = []string{
	mcp.LATEST_PROTOCOL_VERSION,
	"2025-03-26",
	"2024-11-05",
}

// Server answers protocol requests from one client against a fixed catalog.
type Server struct {
	catalog *prompts.Catalog
	info    mcp.Implementation
	session *Session
	logger  *logging.AppLogger
}

// NewServer creates a server for catalog. info is reported to the client
// during initialize.
func NewServer(catalog *prompts.Catalog, info mcp.Implementation, logger *logging.AppLogger) *Server {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Server{
		catalog: catalog,
		info:    info,
		session: NewSession(logger),
		logger:  logger,
	}
}

// Session exposes the session state, mainly for tests.
func (s *Server) Session() *Session {
	return s.session
}

// Serve reads newline delimited messages from r and writes responses to w
// until end of input or a shutdown request. It returns nil on a clean end
// and the I/O error otherwise.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	s.logger.Info("MCP server listening on stdio", "prompts", s.catalog.Len())

	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)

	for s.session.State() != StateTerminated {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			if out := s.HandleMessage(line); out != nil {
				if err := writeLine(writer, out); err != nil {
					return fmt.Errorf("failed to write response: %w", err)
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				s.logger.Info("End of input, shutting down")
				s.terminate()
				return nil
			}
			return fmt.Errorf("failed to read request: %w", readErr)
		}
	}

	s.logger.Info("Session terminated")
	return nil
}

func writeLine(w *bufio.Writer, msg []byte) error {
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

func (s *Server) terminate() {
	if s.session.State() != StateTerminated {
		_ = s.session.Transition(StateTerminated)
	}
}

// HandleMessage processes one line and returns the encoded response, or nil
// when nothing must be written.
func (s *Server) HandleMessage(line []byte) []byte {
	start := time.Now()

	msg, err := decodeMessage(line)
	if err != nil {
		var derr *decodeError
		if errors.As(err, &derr) {
			s.logger.Warn("Rejected message", "code", derr.code, "error", derr.msg)
			return s.encode(errorMessage(derr.id, derr.code, derr.msg))
		}
		return nil
	}

	if msg.isNotification() {
		s.handleNotification(msg)
		return nil
	}

	defer s.logger.LogPerformance(msg.method, start)
	return s.encode(s.handleRequest(msg))
}

func (s *Server) encode(v any) []byte {
	out, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode response", "error", err)
		return nil
	}
	return out
}

func (s *Server) handleNotification(msg incoming) {
	switch msg.method {
	case MethodNotificationInitialized:
		if s.session.State() != StateAwaitingInitialized {
			s.logger.Warn("Ignoring initialized notification", "state", s.session.State().String())
			return
		}
		_ = s.session.Transition(StateReady)
	default:
		s.logger.Debug("Ignoring notification", "method", msg.method)
	}
}

func (s *Server) handleRequest(msg incoming) any {
	s.logger.Debug("Handling request", "method", msg.method, "state", s.session.State().String())

	switch msg.method {
	case MethodInitialize:
		return s.handleInitialize(msg)
	case MethodPromptsList, MethodPromptsGet, MethodShutdown:
	default:
		return errorMessage(msg.id, mcp.METHOD_NOT_FOUND, fmt.Sprintf("method not found: %s", msg.method))
	}

	if s.session.State() != StateReady {
		return errorMessage(msg.id, mcp.INVALID_REQUEST, "server not initialized")
	}

	switch msg.method {
	case MethodPromptsList:
		return resultMessage(msg.id, s.listPrompts())
	case MethodPromptsGet:
		return s.handleGetPrompt(msg)
	default:
		_ = s.session.Transition(StateTerminated)
		return resultMessage(msg.id, struct{}{})
	}
}

type promptsCapability struct {
	ListChanged bool `json:"listChanged"`
}

type serverCapabilities struct {
	Prompts promptsCapability `json:"prompts"`
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      mcp.Implementation `json:"serverInfo"`
}

func (s *Server) handleInitialize(msg incoming) any {
	if s.session.State() != StateUninitialized {
		return errorMessage(msg.id, mcp.INVALID_REQUEST, "server already initialized")
	}

	var params mcp.InitializeParams
	if msg.params != nil {
		if err := json.Unmarshal(msg.params, &params); err != nil {
			return errorMessage(msg.id, mcp.INVALID_PARAMS, "invalid initialize params: "+err.Error())
		}
	}

	version := mcp.LATEST_PROTOCOL_VERSION
	if slices.Contains(supportedProtocolVersions, params.ProtocolVersion) {
		version = params.ProtocolVersion
	}

	if err := s.session.Transition(StateAwaitingInitialized); err != nil {
		return errorMessage(msg.id, mcp.INTERNAL_ERROR, err.Error())
	}

	s.logger.Info("Client initialized",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"protocol", version)

	return resultMessage(msg.id, initializeResult{
		ProtocolVersion: version,
		Capabilities:    serverCapabilities{Prompts: promptsCapability{}},
		ServerInfo:      s.info,
	})
}

// argumentDescriptor always carries "required", unlike mcp.PromptArgument
// which omits false.
type argumentDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

type promptDescriptor struct {
	Name        string               `json:"name"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	Arguments   []argumentDescriptor `json:"arguments"`
}

type listPromptsResult struct {
	Prompts []promptDescriptor `json:"prompts"`
}

func (s *Server) listPrompts() listPromptsResult {
	list := s.catalog.List()
	out := listPromptsResult{Prompts: make([]promptDescriptor, 0, len(list))}

	for _, p := range list {
		d := promptDescriptor{
			Name:        p.Name,
			Title:       p.Title,
			Description: p.Description,
			Arguments:   make([]argumentDescriptor, 0, len(p.Arguments)),
		}
		for _, a := range p.Arguments {
			d.Arguments = append(d.Arguments, argumentDescriptor{
				Name:        a.Name,
				Description: a.Description,
				Required:    a.Required,
			})
		}
		out.Prompts = append(out.Prompts, d)
	}
	return out
}

func (s *Server) handleGetPrompt(msg incoming) any {
	if msg.params == nil {
		return errorMessage(msg.id, mcp.INVALID_PARAMS, "missing name parameter")
	}

	var params mcp.GetPromptParams
	if err := json.Unmarshal(msg.params, &params); err != nil {
		return errorMessage(msg.id, mcp.INVALID_PARAMS, "invalid params: "+err.Error())
	}
	if params.Name == "" {
		return errorMessage(msg.id, mcp.INVALID_PARAMS, "missing name parameter")
	}

	p, text, err := s.catalog.Render(params.Name, params.Arguments)
	if err != nil {
		var missing *variables.MissingArgumentError
		switch {
		case errors.Is(err, prompts.ErrPromptNotFound):
			return errorMessage(msg.id, mcp.INVALID_PARAMS, fmt.Sprintf("prompt not found: %s", params.Name))
		case errors.As(err, &missing):
			return errorMessage(msg.id, mcp.INVALID_PARAMS, missing.Error())
		default:
			s.logger.Error("Failed to render prompt", "name", params.Name, "error", err)
			return errorMessage(msg.id, mcp.INTERNAL_ERROR, err.Error())
		}
	}

	s.logger.Debug("Prompt rendered", "name", p.Name, "path", p.Path, "bytes", len(text))
	return resultMessage(msg.id, mcp.NewGetPromptResult(p.Description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	}))
}
