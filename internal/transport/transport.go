// Package transport bridges orchestrator tool handlers onto an MCP
// server, converting every failure (bad arguments, handler error, or
// marshal error) into an MCP tool-result error rather than letting it
// propagate out of the handler.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Endpoint is a decoded tool call: req is the tool's typed request value
// (or nil for tools with no arguments).
type Endpoint func(ctx context.Context, req any) (any, error)

// DecodeResult holds a decoded request plus an optional context
// enrichment applied before the endpoint runs.
type DecodeResult struct {
	Request   any
	EnrichCtx func(context.Context) context.Context
}

// Decoder extracts a typed request from raw MCP call arguments.
type Decoder func(req *mcp.CallToolRequest) (*DecodeResult, error)

// InputSchema builds a JSON Schema object for a tool's arguments.
func InputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// DecodeJSON builds a Decoder that unmarshals arguments into a fresh *T.
func DecodeJSON[T any]() Decoder {
	return func(req *mcp.CallToolRequest) (*DecodeResult, error) {
		var v T
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &v); err != nil {
				return nil, err
			}
		}
		return &DecodeResult{Request: &v}, nil
	}
}

// NoArgs is a Decoder for tools that take no arguments.
func NoArgs(req *mcp.CallToolRequest) (*DecodeResult, error) {
	return &DecodeResult{Request: nil}, nil
}

// TextEndpoint is a decoded tool call whose result is already rendered
// text, used by handlers that humanize their own failures instead of
// returning a Go error (the orchestrator's dispatch contract).
type TextEndpoint func(ctx context.Context, req any) (string, error)

// RegisterTextTool registers endpoint as tool on srv, passing its
// returned string straight through as the tool result's text content
// instead of JSON-encoding it. Like RegisterTool, decode failures and
// endpoint errors become MCP tool-result errors rather than propagating.
func RegisterTextTool(srv *mcp.Server, tool *mcp.Tool, endpoint TextEndpoint, decode Decoder) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		decoded, err := decode(req)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("invalid arguments: %w", err))
			return &res, nil
		}
		if decoded.EnrichCtx != nil {
			ctx = decoded.EnrichCtx(ctx)
		}

		text, err := endpoint(ctx, decoded.Request)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	})
}

// RegisterTool registers endpoint as tool on srv. decode failures,
// endpoint errors, and marshal failures all become MCP tool-result
// errors; none of them are returned as a Go error from the handler
// itself, so a malformed call never propagates into the transport.
func RegisterTool(srv *mcp.Server, tool *mcp.Tool, endpoint Endpoint, decode Decoder) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		decoded, err := decode(req)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("invalid arguments: %w", err))
			return &res, nil
		}
		if decoded.EnrichCtx != nil {
			ctx = decoded.EnrichCtx(ctx)
		}

		resp, err := endpoint(ctx, decoded.Request)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal response: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}
