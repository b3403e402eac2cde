// Package prompts exposes a small set of static, parameterized prompt
// templates. Prompts perform no upstream calls; they only render
// role-tagged message text for the calling client to send onward.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Message is one role-tagged prompt message.
type Message struct {
	Role string
	Text string
}

// Template is a named, parameterized prompt.
type Template struct {
	Name        string
	Description string
	Arguments   []string
	Render      func(args map[string]string) []Message
}

// Registry holds the static set of prompt templates.
type Registry struct {
	templates []Template
}

// New builds the standard prompt registry.
func New() *Registry {
	return &Registry{templates: []Template{
		researchPackageTemplate(),
		debugErrorTemplate(),
		compareTechnologiesTemplate(),
		evaluateRepositoryTemplate(),
		checkServiceHealthTemplate(),
	}}
}

func researchPackageTemplate() Template {
	return Template{
		Name:        "research_package",
		Description: "Research a package: its registry metadata, repository health, and recent changelog.",
		Arguments:   []string{"package_name", "registry"},
		Render: func(args map[string]string) []Message {
			name := args["package_name"]
			registry := valueOrAny(args["registry"])
			return []Message{
				{Role: "user", Text: fmt.Sprintf(
					"Research the %s package %q. Look up its registry metadata, find its source repository and check its health (stars, recent activity, open issues), and summarize its recent changelog, noting any breaking changes.",
					registry, name)},
			}
		},
	}
}

func debugErrorTemplate() Template {
	return Template{
		Name:        "debug_error",
		Description: "Translate a raw error message into search-ready context and likely fixes.",
		Arguments:   []string{"error_message", "framework"},
		Render: func(args map[string]string) []Message {
			msg := args["error_message"]
			framework := args["framework"]
			text := fmt.Sprintf("Here is an error I am seeing:\n\n%s\n\nIdentify the language, error type, and key terms, then find likely solutions.", msg)
			if framework != "" {
				text += fmt.Sprintf(" The project uses %s.", framework)
			}
			return []Message{{Role: "user", Text: text}}
		},
	}
}

func compareTechnologiesTemplate() Template {
	return Template{
		Name:        "compare_technologies",
		Description: "Compare 2-5 technologies across the aspects that matter for their category.",
		Arguments:   []string{"technologies"},
		Render: func(args map[string]string) []Message {
			techs := args["technologies"]
			return []Message{{Role: "user", Text: fmt.Sprintf(
				"Compare the following technologies: %s. Cover performance, ecosystem maturity, and any category-specific considerations, and recommend which to use for a typical production project.",
				techs)}}
		},
	}
}

func evaluateRepositoryTemplate() Template {
	return Template{
		Name:        "evaluate_repository",
		Description: "Assess a repository's health and maintenance status before adopting it.",
		Arguments:   []string{"repository"},
		Render: func(args map[string]string) []Message {
			repo := args["repository"]
			return []Message{{Role: "user", Text: fmt.Sprintf(
				"Evaluate the repository %q for adoption. Check its stars, recent commit activity, open issue and PR counts, and license, and flag anything that suggests it is unmaintained.",
				repo)}}
		},
	}
}

func checkServiceHealthTemplate() Template {
	return Template{
		Name:        "check_service_health",
		Description: "Check whether a third-party service is currently experiencing an outage.",
		Arguments:   []string{"service"},
		Render: func(args map[string]string) []Message {
			service := args["service"]
			return []Message{{Role: "user", Text: fmt.Sprintf(
				"Check the current operational status of %s. Report whether it is healthy, degraded, or down, and summarize any active incidents.",
				service)}}
		},
	}
}

func valueOrAny(v string) string {
	if strings.TrimSpace(v) == "" {
		return "the"
	}
	return v
}

// Render looks up a template by name and renders it with args, returning
// false if no such template is registered.
func (r *Registry) Render(name string, args map[string]string) ([]Message, bool) {
	for _, t := range r.templates {
		if t.Name == name {
			return t.Render(args), true
		}
	}
	return nil, false
}

// RegisterMCP exposes every template as an MCP prompt.
func (r *Registry) RegisterMCP(srv *mcp.Server) {
	for _, t := range r.templates {
		t := t
		mcpArgs := make([]*mcp.PromptArgument, 0, len(t.Arguments))
		for _, a := range t.Arguments {
			mcpArgs = append(mcpArgs, &mcp.PromptArgument{Name: a})
		}

		srv.AddPrompt(&mcp.Prompt{
			Name:        t.Name,
			Description: t.Description,
			Arguments:   mcpArgs,
		}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			messages, ok := r.Render(t.Name, req.Params.Arguments)
			if !ok {
				return nil, fmt.Errorf("unknown prompt %q", t.Name)
			}
			result := &mcp.GetPromptResult{Description: t.Description}
			for _, m := range messages {
				result.Messages = append(result.Messages, &mcp.PromptMessage{
					Role:    mcp.Role(m.Role),
					Content: &mcp.TextContent{Text: m.Text},
				})
			}
			return result, nil
		})
	}
}
