package transport

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testImpl = &mcp.Implementation{Name: "transport-test", Version: "0.1.0"}

type echoReq struct {
	Message string `json:"message"`
}

func newTestSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testImpl, nil)

	RegisterTool(srv, &mcp.Tool{
		Name:        "echo",
		Description: "echoes the given message",
		InputSchema: InputSchema(map[string]any{
			"message": map[string]any{"type": "string"},
		}, []string{"message"}),
	}, func(ctx context.Context, req any) (any, error) {
		r := req.(*echoReq)
		return map[string]string{"echoed": r.Message}, nil
	}, DecodeJSON[echoReq]())

	RegisterTool(srv, &mcp.Tool{
		Name:        "always_fails",
		Description: "always returns an error",
		InputSchema: InputSchema(map[string]any{}, nil),
	}, func(ctx context.Context, req any) (any, error) {
		return nil, errors.New("upstream exploded")
	}, NoArgs)

	RegisterTextTool(srv, &mcp.Tool{
		Name:        "echo_text",
		Description: "echoes the given message as plain text",
		InputSchema: InputSchema(map[string]any{
			"message": map[string]any{"type": "string"},
		}, []string{"message"}),
	}, func(ctx context.Context, req any) (string, error) {
		r := req.(*echoReq)
		return "echoed: " + r.Message, nil
	}, DecodeJSON[echoReq]())

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func TestRegisterToolRoundTripsSuccess(t *testing.T) {
	session := newTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"message": "hello"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("unexpected tool error: %v", err)
	}

	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	var resp struct {
		Echoed string `json:"echoed"`
	}
	if err := json.Unmarshal([]byte(tc.Text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Echoed != "hello" {
		t.Fatalf("expected echoed %q, got %q", "hello", resp.Echoed)
	}
}

func TestRegisterToolConvertsInvalidArgumentsToToolError(t *testing.T) {
	session := newTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "echo",
		Arguments: json.RawMessage(`{"message": 123}`),
	})
	if err != nil {
		t.Fatalf("CallTool transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error for malformed arguments, got nil")
	}
}

func TestRegisterTextToolReturnsPlainText(t *testing.T) {
	session := newTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "echo_text",
		Arguments: map[string]any{"message": "hello"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("unexpected tool error: %v", err)
	}

	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	if tc.Text != "echoed: hello" {
		t.Fatalf("expected plain-text passthrough, got %q", tc.Text)
	}
}

func TestRegisterToolConvertsEndpointErrorToToolError(t *testing.T) {
	session := newTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "always_fails",
		Arguments: map[string]any{},
	})
	if err != nil {
		t.Fatalf("CallTool transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error from a failing endpoint, got nil")
	}
}
