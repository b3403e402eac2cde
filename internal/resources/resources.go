// Package resources exposes read-only URI-templated views over the
// orchestrator's clients (package metadata, repo info, service status,
// changelogs) as MCP resources.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

// Handler resolves a matched URI template's variables into a JSON-able value.
type Handler func(ctx context.Context, vars map[string]string) (any, error)

type entry struct {
	raw     string
	tmpl    *uritemplate.Template
	name    string
	desc    string
	handler Handler
}

// Registry holds the set of registered URI-templated resources.
type Registry struct {
	entries []entry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register adds a resource under uriTemplate (an RFC 6570 template such as
// "package://{registry}/{name}"), calling handler with the matched
// variables whenever a client reads a matching URI.
func (r *Registry) Register(uriTemplate, name, description string, handler Handler) error {
	tmpl, err := uritemplate.New(uriTemplate)
	if err != nil {
		return fmt.Errorf("parse uri template %q: %w", uriTemplate, err)
	}
	r.entries = append(r.entries, entry{raw: uriTemplate, tmpl: tmpl, name: name, desc: description, handler: handler})
	return nil
}

// Resolve matches uri against every registered template in registration
// order and invokes the first match's handler.
func (r *Registry) Resolve(ctx context.Context, uri string) (any, error) {
	for _, e := range r.entries {
		match := e.tmpl.Match(uri)
		if match == nil {
			continue
		}
		vars := make(map[string]string, len(match))
		for name, value := range match {
			vars[name] = value.String()
		}
		return e.handler(ctx, vars)
	}
	return nil, fmt.Errorf("no registered resource matches uri %q", uri)
}

// RegisterMCP exposes every registered resource as an MCP resource
// template, rendering its handler's return value as JSON text.
func (r *Registry) RegisterMCP(srv *mcp.Server) {
	for _, e := range r.entries {
		e := e
		srv.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: e.raw,
			Name:        e.name,
			Description: e.desc,
			MIMEType:    "application/json",
		}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			value, err := r.Resolve(ctx, req.Params.URI)
			if err != nil {
				return nil, err
			}
			data, err := json.MarshalIndent(value, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("marshal resource: %w", err)
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
				},
			}, nil
		})
	}
}
