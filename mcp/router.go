package mcp

import (
	"context"
	"fmt"
	"sync"
)

// RequestHandler processes a request and returns its response
type RequestHandler func(ctx context.Context, req Request) Response

// Router maps method names to handlers and checks the protocol version
// before dispatch.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]RequestHandler
}

// NewRouter creates an empty router instance.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]RequestHandler)}
}

// Register associates a handler with a method name. Existing registrations
// are replaced.
func (r *Router) Register(method string, handler RequestHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[method] = handler
}

// Methods returns the number of registered methods
func (r *Router) Methods() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Dispatch routes req to its handler. Version and lookup failures become
// JSON-RPC error responses.
func (r *Router) Dispatch(ctx context.Context, req Request) Response {
	if err := ensureVersion(req.JSONRPC); err != nil {
		return ErrorResponse(req.ID, InvalidRequest, err.Error())
	}

	r.mu.RLock()
	handler, ok := r.handlers[req.Method]
	r.mu.RUnlock()
	if !ok {
		return ErrorResponse(req.ID, MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}

	resp := handler(ctx, req)
	if resp.JSONRPC == "" {
		resp.JSONRPC = JSONRPCVersion
	}
	return resp
}
