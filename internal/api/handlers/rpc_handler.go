package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

// JSON-RPC 2.0 error codes
const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcInternalError  = -32603
)

const (
	rpcProtocolVersion = "2024-11-05"
	rpcServerName      = "blood-donor-india"
	rpcServerVersion   = "1.0.0"
)

// RPCRequest is an incoming JSON-RPC call
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// RPCError is the error member of a JSON-RPC response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCResponse is an outgoing JSON-RPC response. ID echoes the request id
// and is null when the request had none.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// ToolContent is one block of a tool result
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// RPCHandler serves the JSON-RPC tool endpoint
type RPCHandler struct {
	tools *ToolExecutor
}

// NewRPCHandler creates a new JSON-RPC handler
func NewRPCHandler(tools *ToolExecutor) *RPCHandler {
	return &RPCHandler{tools: tools}
}

// Options handles OPTIONS /mcp
func (h *RPCHandler) Options(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Handle handles POST /mcp
func (h *RPCHandler) Handle(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())

	var req RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, nil, http.StatusBadRequest, rpcParseError, "Parse error")
		return
	}
	if req.JSONRPC != "2.0" {
		h.fail(w, req.ID, http.StatusBadRequest, rpcInvalidRequest, "Invalid Request - missing jsonrpc 2.0")
		return
	}
	if req.Method == "" {
		h.fail(w, req.ID, http.StatusBadRequest, rpcInvalidRequest, "Invalid Request - missing method")
		return
	}

	logger.Debug().Str("method", req.Method).Msg("JSON-RPC request")

	switch req.Method {
	case "initialize":
		h.succeed(w, req.ID, map[string]interface{}{
			"protocolVersion": rpcProtocolVersion,
			"capabilities": map[string]interface{}{
				"experimental": map[string]interface{}{},
				"tools":        map[string]bool{"listChanged": false},
			},
			"serverInfo": map[string]string{
				"name":    rpcServerName,
				"version": rpcServerVersion,
			},
		})
	case "notifications/initialized":
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
	case "tools/list":
		h.succeed(w, req.ID, map[string]interface{}{"tools": h.tools.Tools()})
	case "tools/call":
		h.callTool(w, r, req)
	default:
		logger.Warn().Str("method", req.Method).Msg("Unknown JSON-RPC method")
		h.fail(w, req.ID, http.StatusNotFound, rpcMethodNotFound, "Method not found: "+req.Method)
	}
}

func (h *RPCHandler) callTool(w http.ResponseWriter, r *http.Request, req RPCRequest) {
	var params toolCallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			h.fail(w, req.ID, http.StatusBadRequest, rpcInvalidParams, "Invalid params: "+err.Error())
			return
		}
	}
	if params.Name == "" {
		h.fail(w, req.ID, http.StatusBadRequest, rpcInvalidParams, "Invalid params - missing tool name")
		return
	}

	ctx, span := observability.StartSpan(r.Context(), "RPCHandler.callTool")
	defer span.End()
	span.SetAttributes(attribute.String("tool.name", params.Name))

	text, err := h.tools.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, ErrUnknownTool) {
			h.fail(w, req.ID, http.StatusBadRequest, rpcInvalidParams, "Unknown tool: "+params.Name)
			return
		}
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Error().Err(err).Str("tool", params.Name).Msg("Tool execution failed")
		h.fail(w, req.ID, http.StatusInternalServerError, rpcInternalError, "Tool execution error")
		return
	}

	h.succeed(w, req.ID, map[string]interface{}{
		"content": []ToolContent{{Type: "text", Text: text}},
	})
}

func (h *RPCHandler) succeed(w http.ResponseWriter, id json.RawMessage, result interface{}) {
	respondWithJSON(w, http.StatusOK, RPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (h *RPCHandler) fail(w http.ResponseWriter, id json.RawMessage, status, code int, message string) {
	respondWithJSON(w, status, RPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	})
}
