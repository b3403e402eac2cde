// Package extractor pulls structured data (tables, lists, field selectors,
// JSON-LD) out of an already-fetched HTML document.
package extractor

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/textutil"
)

// Selector is a minimal CSS-selector subset: an optional tag name followed
// by any number of ".class" and "#id" qualifiers, e.g. "div.price", "#sku".
type Selector string

// Extract runs the requested mode over body and returns its result. For
// model.KindFields, selectors supplies the field-name to selector map.
func Extract(body string, kind model.ExtractionKind, maxItems int, selectors map[string]string) (model.ExtractionResult, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return model.ExtractionResult{}, err
	}
	if maxItems <= 0 {
		maxItems = 10
	}

	switch kind {
	case model.KindTable:
		return model.ExtractionResult{Kind: kind, Tables: extractTables(doc, maxItems)}, nil
	case model.KindList:
		return model.ExtractionResult{Kind: kind, Lists: extractLists(doc, maxItems)}, nil
	case model.KindFields:
		return model.ExtractionResult{Kind: kind, Fields: extractFields(doc, selectors)}, nil
	case model.KindJSONLD:
		return model.ExtractionResult{Kind: kind, JSONLD: extractJSONLD(doc)}, nil
	case model.KindAuto:
		result := model.ExtractionResult{Kind: kind}
		result.JSONLD = extractJSONLD(doc)
		result.Tables = extractTables(doc, 3)
		result.Lists = extractLists(doc, 3)
		return result, nil
	default:
		return model.ExtractionResult{}, &UnsupportedModeError{Kind: kind}
	}
}

// UnsupportedModeError reports an extraction kind Extract does not know.
type UnsupportedModeError struct {
	Kind model.ExtractionKind
}

func (e *UnsupportedModeError) Error() string {
	return "extractor: unsupported extraction mode " + string(e.Kind)
}

func extractTables(doc *html.Node, maxItems int) []model.TableData {
	var tables []model.TableData
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(tables) >= maxItems {
			return
		}
		if n.Type == html.ElementNode && n.Data == "table" {
			if t, ok := extractOneTable(n); ok {
				tables = append(tables, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables
}

func extractOneTable(table *html.Node) (model.TableData, bool) {
	var caption string
	var headers []string
	var rows []map[string]string

	var findCaption func(*html.Node)
	findCaption = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "caption" {
			caption = textContent(n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findCaption(c)
		}
	}
	findCaption(table)

	var theadRow *html.Node
	var bodyRows []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "thead":
				if r := firstChildElement(n, "tr"); r != nil {
					theadRow = r
				}
				return
			case "tr":
				bodyRows = append(bodyRows, n)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(table)

	headerRow := theadRow
	if headerRow == nil && len(bodyRows) > 0 && rowHasThCells(bodyRows[0]) {
		headerRow = bodyRows[0]
		bodyRows = bodyRows[1:]
	}
	if headerRow != nil {
		headers = cellTexts(headerRow)
	}
	if len(headers) == 0 {
		return model.TableData{}, false
	}

	for _, r := range bodyRows {
		cells := cellTexts(r)
		if len(cells) != len(headers) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			row[h] = textutil.Sanitize(cells[i])
		}
		rows = append(rows, row)
	}

	for i, h := range headers {
		headers[i] = textutil.Sanitize(h)
	}

	return model.TableData{Caption: textutil.Sanitize(caption), Headers: headers, Rows: rows}, true
}

func rowHasThCells(row *html.Node) bool {
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "th" {
			return true
		}
	}
	return false
}

func cellTexts(row *html.Node) []string {
	var cells []string
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "th" || c.Data == "td") {
			cells = append(cells, textContent(c))
		}
	}
	return cells
}

func firstChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := firstChildElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func extractLists(doc *html.Node, maxItems int) []model.ListData {
	var lists []model.ListData
	var lastHeading string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(lists) >= maxItems {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				lastHeading = textContent(n)
			case "ul", "ol":
				lists = append(lists, model.ListData{
					Title:  textutil.Sanitize(lastHeading),
					Items:  directChildItems(n, "li"),
					Nested: hasNestedList(n),
				})
				return
			case "dl":
				lists = append(lists, model.ListData{
					Title: textutil.Sanitize(lastHeading),
					Items: dlPairs(n),
				})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return lists
}

func directChildItems(n *html.Node, tag string) []string {
	var items []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			items = append(items, textutil.Sanitize(textContent(c)))
		}
	}
	return items
}

func hasNestedList(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			return true
		}
		if hasNestedList(c) {
			return true
		}
	}
	return false
}

func dlPairs(n *html.Node) []string {
	var items []string
	var pendingDT string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "dt":
			pendingDT = textContent(c)
		case "dd":
			items = append(items, textutil.Sanitize(pendingDT+": "+textContent(c)))
			pendingDT = ""
		}
	}
	return items
}

func extractFields(doc *html.Node, selectors map[string]string) map[string]any {
	fields := make(map[string]any, len(selectors))
	for field, sel := range selectors {
		matches := selectAll(doc, parseSelector(sel))
		switch len(matches) {
		case 0:
			continue
		case 1:
			fields[field] = textutil.Sanitize(textContent(matches[0]))
		default:
			texts := make([]string, len(matches))
			for i, m := range matches {
				texts[i] = textutil.Sanitize(textContent(m))
			}
			fields[field] = texts
		}
	}
	return fields
}

type parsedSelector struct {
	tag     string
	classes []string
	id      string
}

func parseSelector(sel string) parsedSelector {
	var ps parsedSelector
	var current strings.Builder
	flush := func(prefix byte) {
		if current.Len() == 0 {
			return
		}
		switch prefix {
		case '.':
			ps.classes = append(ps.classes, current.String())
		case '#':
			ps.id = current.String()
		default:
			ps.tag = current.String()
		}
		current.Reset()
	}

	prefix := byte(0)
	for i := 0; i < len(sel); i++ {
		ch := sel[i]
		if ch == '.' || ch == '#' {
			flush(prefix)
			prefix = ch
			continue
		}
		current.WriteByte(ch)
	}
	flush(prefix)
	return ps
}

func selectAll(doc *html.Node, sel parsedSelector) []*html.Node {
	var matches []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && nodeMatches(n, sel) {
			matches = append(matches, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return matches
}

func nodeMatches(n *html.Node, sel parsedSelector) bool {
	if sel.tag != "" && n.Data != sel.tag {
		return false
	}
	if sel.id != "" && attrValue(n, "id") != sel.id {
		return false
	}
	if len(sel.classes) > 0 {
		nodeClasses := strings.Fields(attrValue(n, "class"))
		for _, want := range sel.classes {
			if !containsString(nodeClasses, want) {
				return false
			}
		}
	}
	return sel.tag != "" || sel.id != "" || len(sel.classes) > 0
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func extractJSONLD(doc *html.Node) []any {
	var result []any
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && attrValue(n, "type") == "application/ld+json" {
			var parsed any
			if err := json.Unmarshal([]byte(textContent(n)), &parsed); err == nil {
				result = append(result, parsed)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return result
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
