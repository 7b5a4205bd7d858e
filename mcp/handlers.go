package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/termfx/hlebhint/db"
)

// ServerName and ServerVersion are announced on initialize
const (
	ServerName    = "hlebhint"
	ServerVersion = "0.3.0"
)

// handleListTools returns available tools to the client
func (s *StdioServer) handleListTools(_ context.Context, req Request) Response {
	return SuccessResponse(req.ID, map[string]any{
		"tools": GetToolDefinitions(),
	})
}

// handleCallTool executes a specific tool
func (s *StdioServer) handleCallTool(ctx context.Context, req Request) Response {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		return ErrorResponse(req.ID, InvalidParams, "Invalid params structure")
	}

	s.debugLog("Calling tool: %s", params.Name)

	s.mu.RLock()
	handler, exists := s.tools[params.Name]
	s.mu.RUnlock()

	if !exists {
		return ErrorResponse(req.ID, MethodNotFound,
			fmt.Sprintf("Tool not found: %s", params.Name))
	}

	result, err := handler(ctx, params.Arguments)
	if err != nil {
		mcpErr := FromError(err)
		s.debugLog("Tool %s failed: %v", params.Name, mcpErr)
		return ErrorResponseWithData(req.ID, mcpErr.Code, mcpErr.Message, mcpErr.Data)
	}

	return SuccessResponse(req.ID, result)
}

// handleInitialize handles the MCP initialization handshake
func (s *StdioServer) handleInitialize(_ context.Context, req Request) Response {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo"`
	}

	if req.Params != nil {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return ErrorResponse(req.ID, InvalidParams, "Invalid initialize parameters")
		}
		s.debugLog("Client: %s v%s, Protocol: %s",
			params.ClientInfo.Name,
			params.ClientInfo.Version,
			params.ProtocolVersion)

		if s.db != nil && s.session != nil {
			if err := db.UpdateClientInfo(s.db, s.session.ID, params.ClientInfo); err != nil {
				s.debugLog("Failed to store client info: %v", err)
			}
		}
	}

	return SuccessResponse(req.ID, map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{
				"listChanged": false,
			},
		},
		"serverInfo": map[string]any{
			"name":    ServerName,
			"version": ServerVersion,
		},
	})
}

// handleInitialized confirms initialization complete
func (s *StdioServer) handleInitialized(_ context.Context, req Request) Response {
	s.debugLog("Initialization complete")
	if req.IsNotification() {
		return Response{}
	}
	return SuccessResponse(req.ID, map[string]any{})
}

// handlePing responds to keepalive pings
func (s *StdioServer) handlePing(_ context.Context, req Request) Response {
	return SuccessResponse(req.ID, map[string]any{})
}
