package statusclient

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/textutil"
)

// parseStatusHTML best-effort parses a status page's rendered HTML,
// looking for common phrasings and class-name conventions ("incident",
// "component", "status") used across Statuspage/Instatus-style pages.
func parseStatusHTML(body string) model.ServiceStatus {
	status := model.ServiceStatus{Status: model.HealthUnknown, CurrentIncidents: []model.ServiceIncident{}}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return status
	}

	lower := strings.ToLower(body)
	status.Status = classifyStatusKeywords(lower)

	var incidents []string
	var components []model.ServiceComponent
	walkStatusNodes(doc, &incidents, &components)

	for i, title := range incidents {
		if i >= 3 {
			break
		}
		status.CurrentIncidents = append(status.CurrentIncidents, model.ServiceIncident{Title: textutil.Sanitize(title)})
	}
	for i, comp := range components {
		if i >= 10 {
			break
		}
		status.Components = append(status.Components, comp)
	}
	return status
}

func classifyStatusKeywords(lower string) model.ServiceHealth {
	switch {
	case strings.Contains(lower, "all systems operational"), strings.Contains(lower, "all systems normal"),
		strings.Contains(lower, "no active incidents"), strings.Contains(lower, "no incidents"):
		return model.HealthOperational
	case strings.Contains(lower, "investigating"), strings.Contains(lower, "identified"):
		return model.HealthDegradedPerf
	case strings.Contains(lower, "outage"), strings.Contains(lower, "down"):
		return model.HealthPartialOutage
	case strings.Contains(lower, "maintenance"):
		return model.HealthUnderMaintenance
	default:
		return model.HealthUnknown
	}
}

func normalizeStatusText(text string) model.ServiceHealth {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "operational", "normal", "ok", "all systems", "up"):
		return model.HealthOperational
	case containsAny(lower, "degraded", "slow", "performance"):
		return model.HealthDegradedPerf
	case containsAny(lower, "partial", "some", "limited"):
		return model.HealthPartialOutage
	case containsAny(lower, "major", "down", "outage", "offline"):
		return model.HealthMajorOutage
	case strings.Contains(lower, "maintenance"):
		return model.HealthUnderMaintenance
	default:
		return model.HealthUnknown
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// walkStatusNodes collects candidate incident titles and component
// name/status pairs by scanning element class attributes for
// "incident"/"component" tokens.
func walkStatusNodes(n *html.Node, incidents *[]string, components *[]model.ServiceComponent) {
	if n.Type == html.ElementNode {
		class := attrValue(n, "class")
		switch {
		case strings.Contains(strings.ToLower(class), "incident"):
			if title := firstHeadingText(n); title != "" {
				*incidents = append(*incidents, title)
			}
		case strings.Contains(strings.ToLower(class), "component"):
			name, statusText := componentNameAndStatus(n)
			if name != "" && statusText != "" {
				*components = append(*components, model.ServiceComponent{
					Name:   textutil.Sanitize(name),
					Status: normalizeStatusText(statusText),
				})
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkStatusNodes(c, incidents, components)
	}
}

func firstHeadingText(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			tag := strings.ToLower(c.Data)
			class := strings.ToLower(attrValue(c, "class"))
			if (tag == "h3" || tag == "h4" || tag == "span") &&
				(strings.Contains(class, "title") || strings.Contains(class, "name")) {
				return textContent(c)
			}
		}
		if t := firstHeadingText(c); t != "" {
			return t
		}
	}
	return ""
}

func componentNameAndStatus(n *html.Node) (name, statusText string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			tag := strings.ToLower(c.Data)
			class := strings.ToLower(attrValue(c, "class"))
			if tag == "span" || tag == "div" {
				switch {
				case strings.Contains(class, "name") && name == "":
					name = textContent(c)
				case strings.Contains(class, "status") && statusText == "":
					statusText = textContent(c)
				}
			}
		}
	}
	return name, statusText
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
