// Package errorparser turns a raw error message into a structured
// ParsedError (language, framework, error type, key terms) and a ranked
// set of search-engine hits likely to explain it.
package errorparser

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/searchclient"
)

// languagePattern pairs a language with the regexes that identify it.
type languagePattern struct {
	lang     model.Language
	patterns []*regexp.Regexp
}

// Language detection is ordered: JS/TS patterns are checked before Python
// ones, since a bare "File ..." fragment is ambiguous between the two.
var languagePatterns = []languagePattern{
	{model.LangTypeScript, compileAll(`\.tsx?\b`, `TS\d{4}`, `Type '.*' is not assignable`)},
	{model.LangJavaScript, compileAll(`\.jsx?\b`, `ReferenceError`, `TypeError`, `at Object\.<anonymous>`, `node_modules`)},
	{model.LangPython, compileAll(`Traceback \(most recent call last\)`, `File "[^"]+", line \d+`, `\.py\b`)},
	{model.LangRust, compileAll(`error\[E\d{4}\]`, `-->.*\.rs:\d+`, `thread '.*' panicked`)},
	{model.LangJava, compileAll(`Exception in thread`, `\.java:\d+`, `at [\w.]+\(\w+\.java:\d+\)`)},
	{model.LangGo, compileAll(`\.go:\d+`, `panic:`, `goroutine \d+ \[`)},
}

type frameworkPattern struct {
	framework model.Framework
	patterns  []*regexp.Regexp
}

var frameworkPatterns = []frameworkPattern{
	{model.FrameworkReact, compileAll(`\bReact\b`, `useState|useEffect|useContext`, `react-dom`)},
	{model.FrameworkVue, compileAll(`\bVue\b`, `vue-router`, `v-model|v-if|v-for`)},
	{model.FrameworkAngular, compileAll(`\bAngular\b`, `NgModule`, `@angular/`)},
	{model.FrameworkDjango, compileAll(`\bDjango\b`, `django\.`, `WSGIRequest`)},
	{model.FrameworkFlask, compileAll(`\bFlask\b`, `flask\.`, `werkzeug`)},
	{model.FrameworkFastAPI, compileAll(`\bFastAPI\b`, `fastapi\.`, `pydantic`)},
	{model.FrameworkExpress, compileAll(`\bExpress\b`, `express\(\)`, `app\.listen`)},
	{model.FrameworkNext, compileAll(`\bNext\.js\b`, `next/router`, `getServerSideProps`)},
}

type errorTypeRule struct {
	name    string
	pattern *regexp.Regexp
}

// webErrorRules is the language-agnostic first pass.
var webErrorRules = []errorTypeRule{
	{"CORS Error", regexp.MustCompile(`(?i)CORS policy|Access-Control-Allow-Origin|No.*Access-Control`)},
	{"Fetch Error", regexp.MustCompile(`(?i)fetch.*failed|Failed to fetch|NetworkError`)},
	{"Cannot read property", regexp.MustCompile(`(?i)Cannot read propert(?:y|ies) ['"](.+?)['"] of`)},
}

// languageErrorRules is the second pass, keyed by detected language.
var languageErrorRules = map[model.Language][]errorTypeRule{
	model.LangRust: {
		{"E0382", regexp.MustCompile(`E0382`)},
		{"E0502", regexp.MustCompile(`E0502`)},
		{"E0308", regexp.MustCompile(`E0308`)},
	},
	model.LangPython: {
		{"KeyError", regexp.MustCompile(`KeyError`)},
		{"ValueError", regexp.MustCompile(`ValueError`)},
		{"TypeError", regexp.MustCompile(`TypeError`)},
		{"AttributeError", regexp.MustCompile(`AttributeError`)},
		{"ImportError", regexp.MustCompile(`ImportError|ModuleNotFoundError`)},
	},
	model.LangJavaScript: {
		{"ReferenceError", regexp.MustCompile(`ReferenceError`)},
		{"TypeError", regexp.MustCompile(`TypeError`)},
		{"SyntaxError", regexp.MustCompile(`SyntaxError`)},
	},
	model.LangTypeScript: {
		{"Type Error", regexp.MustCompile(`TS\d{4}|is not assignable to type`)},
	},
	model.LangGo: {
		{"nil pointer dereference", regexp.MustCompile(`nil pointer dereference`)},
		{"index out of range", regexp.MustCompile(`index out of range`)},
	},
	model.LangJava: {
		{"NullPointerException", regexp.MustCompile(`NullPointerException`)},
		{"ClassCastException", regexp.MustCompile(`ClassCastException`)},
	},
}

// importantTermsWhitelist is always harvested when present, regardless of
// whether it also matches an identifier pattern.
var importantTermsWhitelist = []string{
	"CORS", "cors", "fetch", "async", "await", "Promise", "undefined", "null",
	"map", "filter", "reduce", "Access-Control-Allow-Origin", "XMLHttpRequest",
	"module", "import", "export", "require",
}

var quotedSubstringPattern = regexp.MustCompile(`'([^']+)'|"([^"]+)"`)
var identifierPattern = regexp.MustCompile(`\b([a-z][a-zA-Z0-9]*[A-Z][a-zA-Z0-9]*|[a-zA-Z][a-zA-Z0-9]*_[a-zA-Z0-9_]+)\b`)

var excludedHosts = map[string]bool{
	"hub.docker.com": true,
	"crates.io":      true,
	"npmjs.com":      true,
	"pypi.org":       true,
	"pkg.go.dev":     true,
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// DetectLanguage applies the ordered language patterns to text.
func DetectLanguage(text string) model.Language {
	for _, lp := range languagePatterns {
		for _, re := range lp.patterns {
			if re.MatchString(text) {
				return lp.lang
			}
		}
	}
	return model.LangUnknown
}

// DetectFramework scans text for framework-signature tokens.
func DetectFramework(text string) model.Framework {
	for _, fp := range frameworkPatterns {
		for _, re := range fp.patterns {
			if re.MatchString(text) {
				return fp.framework
			}
		}
	}
	return model.FrameworkNone
}

// ExtractErrorType runs the two-pass classification: the language-agnostic
// web-error table first, then the detected language's own table.
func ExtractErrorType(text string, lang model.Language) string {
	for _, rule := range webErrorRules {
		if rule.pattern.MatchString(text) {
			return rule.name
		}
	}
	for _, rule := range languageErrorRules[lang] {
		if rule.pattern.MatchString(text) {
			return rule.name
		}
	}
	return "Unknown Error"
}

// ExtractKeyTerms yields an ordered, duplicate-free set of terms following
// the whitelist → quoted → identifier priority, with errorType removed.
func ExtractKeyTerms(text, errorType string) []string {
	seen := map[string]bool{}
	var terms []string
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" || term == errorType || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	for _, w := range importantTermsWhitelist {
		if strings.Contains(text, w) {
			add(w)
		}
	}
	for _, m := range quotedSubstringPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			add(m[1])
		} else if m[2] != "" {
			add(m[2])
		}
	}
	for _, m := range identifierPattern.FindAllString(text, -1) {
		if len([]rune(m)) >= 3 {
			add(m)
		}
	}
	return terms
}

// ParseError runs the full detect → classify → extract pipeline.
func ParseError(errorMessage string, language model.Language, framework model.Framework) model.ParsedError {
	lang := language
	if lang == "" {
		lang = DetectLanguage(errorMessage)
	}
	fw := framework
	if fw == "" {
		fw = DetectFramework(errorMessage)
	}
	errType := ExtractErrorType(errorMessage, lang)
	keyTerms := ExtractKeyTerms(errorMessage, errType)

	return model.ParsedError{
		Language:  lang,
		Framework: fw,
		ErrorType: errType,
		Message:   errorMessage,
		KeyTerms:  keyTerms,
	}
}

// BuildSearchQuery composes the stackoverflow-targeted query string,
// omitting empty fields.
func BuildSearchQuery(parsed model.ParsedError) string {
	parts := make([]string, 0, 4)
	if parsed.Language != "" && parsed.Language != model.LangUnknown {
		parts = append(parts, string(parsed.Language))
	}
	if parsed.Framework != "" {
		parts = append(parts, string(parsed.Framework))
	}
	if parsed.ErrorType != "" && parsed.ErrorType != "Unknown Error" {
		parts = append(parts, parsed.ErrorType)
	}
	if len(parsed.KeyTerms) > 0 {
		parts = append(parts, strings.Join(parsed.KeyTerms, " "))
	}
	parts = append(parts, "site:stackoverflow.com")
	return strings.Join(parts, " ")
}

// Searcher is the subset of searchclient.Client used to find solutions.
type Searcher interface {
	Search(ctx context.Context, p searchclient.Params) ([]model.SearchHit, error)
}

// FindSolutions parses errorMessage and returns up to maxResults ranked
// search hits, requesting 2x the count upstream to survive filtering.
func FindSolutions(ctx context.Context, searcher Searcher, errorMessage string, language model.Language, framework model.Framework, maxResults int) (model.ParsedError, []model.SearchHit, error) {
	parsed := ParseError(errorMessage, language, framework)
	query := BuildSearchQuery(parsed)

	if maxResults <= 0 {
		maxResults = 5
	}
	hits, err := searcher.Search(ctx, searchclient.Params{Query: query, Category: "it", MaxResults: maxResults * 2})
	if err != nil {
		return parsed, nil, fmt.Errorf("search for solutions: %w", err)
	}

	filtered := FilterAndRank(hits, maxResults)
	return parsed, filtered, nil
}

// FilterAndRank excludes package-registry hosts and sorts so that
// stackoverflow.com hits precede all others, preserving within-group
// upstream order, then truncates to limit.
func FilterAndRank(hits []model.SearchHit, limit int) []model.SearchHit {
	kept := make([]model.SearchHit, 0, len(hits))
	for _, h := range hits {
		if excludedHosts[hostOf(h.URL)] {
			continue
		}
		kept = append(kept, h)
	}

	ranked := make([]model.SearchHit, 0, len(kept))
	var rest []model.SearchHit
	for _, h := range kept {
		if hostOf(h.URL) == "stackoverflow.com" {
			ranked = append(ranked, h)
		} else {
			rest = append(rest, h)
		}
	}
	ranked = append(ranked, rest...)

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func hostOf(rawURL string) string {
	rawURL = strings.TrimPrefix(rawURL, "https://")
	rawURL = strings.TrimPrefix(rawURL, "http://")
	rawURL = strings.TrimPrefix(rawURL, "www.")
	if i := strings.IndexByte(rawURL, '/'); i >= 0 {
		rawURL = rawURL[:i]
	}
	return rawURL
}
