package donorapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
)

const rpcPath = "/mcp"

// RPCError is a JSON-RPC error returned by the tool endpoint.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ServerInfo is the result of the initialize handshake.
type ServerInfo struct {
	ProtocolVersion string `json:"protocolVersion"`
	ServerInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
}

// ToolInfo describes one tool offered by the server.
type ToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Initialize performs the JSON-RPC handshake.
func (c *Client) Initialize(ctx context.Context, clientName, clientVersion string) (*ServerInfo, error) {
	params := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo":      map[string]string{"name": clientName, "version": clientVersion},
	}

	var info ServerInfo
	if err := c.call(ctx, "initialize", params, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListTools returns the tool catalogue.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	var out struct {
		Tools []ToolInfo `json:"tools"`
	}
	if err := c.call(ctx, "tools/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Tools, nil
}

// CallTool runs a tool and returns its text content.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	var out struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	params := map[string]interface{}{"name": name, "arguments": args}
	if err := c.call(ctx, "tools/call", params, &out); err != nil {
		return "", err
	}

	texts := make([]string, 0, len(out.Content))
	for _, block := range out.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, "\n"), nil
}

func (c *Client) call(ctx context.Context, method string, params, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(rpcRequest{JSONRPC: "2.0", ID: c.rpcID.Add(1), Method: method, Params: params}).
		Post(rpcPath)
	if err != nil {
		return apperrors.NewExternalError("rpc request failed", err)
	}

	var reply rpcResponse
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return apperrors.NewExternalError(fmt.Sprintf("rpc endpoint returned status %d", resp.StatusCode()), err)
	}
	if reply.Error != nil {
		return reply.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(reply.Result, out); err != nil {
		return apperrors.NewExternalError("malformed rpc result", err)
	}
	return nil
}
