package resources

import (
	"context"
	"testing"
)

func TestRegisterAndResolveExtractsVariables(t *testing.T) {
	r := New()
	var gotVars map[string]string
	err := r.Register("package://{registry}/{name}", "package", "package metadata", func(ctx context.Context, vars map[string]string) (any, error) {
		gotVars = vars
		return map[string]string{"name": vars["name"]}, nil
	})
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	value, err := r.Resolve(context.Background(), "package://npm/lodash")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if gotVars["registry"] != "npm" || gotVars["name"] != "lodash" {
		t.Fatalf("unexpected vars: %+v", gotVars)
	}
	m, ok := value.(map[string]string)
	if !ok || m["name"] != "lodash" {
		t.Fatalf("unexpected resolved value: %+v", value)
	}
}

func TestResolveFirstMatchingTemplateWins(t *testing.T) {
	r := New()
	_ = r.Register("status://{service}", "status", "service status", func(ctx context.Context, vars map[string]string) (any, error) {
		return "first", nil
	})
	_ = r.Register("status://{service}/{extra}", "status-extra", "service status with extra", func(ctx context.Context, vars map[string]string) (any, error) {
		return "second", nil
	})

	value, err := r.Resolve(context.Background(), "status://stripe")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if value != "first" {
		t.Fatalf("expected first matching template to win, got %v", value)
	}
}

func TestResolveNoMatchReturnsError(t *testing.T) {
	r := New()
	_ = r.Register("github://{owner}/{repo}", "github", "repo info", func(ctx context.Context, vars map[string]string) (any, error) {
		return "unused", nil
	})

	_, err := r.Resolve(context.Background(), "package://npm/lodash")
	if err == nil {
		t.Fatal("expected error for unmatched uri, got nil")
	}
}

func TestRegisterRejectsInvalidTemplate(t *testing.T) {
	r := New()
	err := r.Register("package://{unterminated", "package", "package metadata", func(ctx context.Context, vars map[string]string) (any, error) {
		return nil, nil
	})
	if err == nil {
		t.Fatal("expected error for invalid uri template, got nil")
	}
}
