package errorparser

import (
	"context"
	"errors"
	"testing"

	"github.com/hazyhaar/research-mcp/internal/model"
	"github.com/hazyhaar/research-mcp/internal/searchclient"
)

func TestDetectLanguagePrefersTypeScriptOverJavaScript(t *testing.T) {
	text := "app.tsx:12 TS2322: Type 'string' is not assignable to type 'number'"
	if got := DetectLanguage(text); got != model.LangTypeScript {
		t.Fatalf("DetectLanguage = %v, want typescript", got)
	}
}

func TestDetectLanguagePython(t *testing.T) {
	text := "Traceback (most recent call last):\n  File \"app.py\", line 10, in <module>\nKeyError: 'foo'"
	if got := DetectLanguage(text); got != model.LangPython {
		t.Fatalf("DetectLanguage = %v, want python", got)
	}
}

func TestDetectFramework(t *testing.T) {
	text := "FastAPI request validation error: pydantic.error_wrappers.ValidationError"
	if got := DetectFramework(text); got != model.FrameworkFastAPI {
		t.Fatalf("DetectFramework = %v, want fastapi", got)
	}
}

func TestExtractErrorTypeWebErrorTakesPriority(t *testing.T) {
	text := "Access to fetch at 'https://api.example.com' from origin 'https://app.example.com' has been blocked by CORS policy"
	if got := ExtractErrorType(text, model.LangJavaScript); got != "CORS Error" {
		t.Fatalf("ExtractErrorType = %q, want CORS Error", got)
	}
}

func TestExtractErrorTypeRustCode(t *testing.T) {
	text := "error[E0382]: use of moved value: `data`"
	if got := ExtractErrorType(text, model.LangRust); got != "E0382" {
		t.Fatalf("ExtractErrorType = %q, want E0382", got)
	}
}

func TestExtractErrorTypeUnknown(t *testing.T) {
	if got := ExtractErrorType("something broke somewhere", model.LangUnknown); got != "Unknown Error" {
		t.Fatalf("ExtractErrorType = %q, want Unknown Error", got)
	}
}

func TestExtractKeyTermsWhitelistAndIdentifiers(t *testing.T) {
	text := "Cannot read property 'userName' of undefined at fetchUserData (app.js:42)"
	terms := ExtractKeyTerms(text, "Cannot read property")
	found := map[string]bool{}
	for _, term := range terms {
		found[term] = true
	}
	if !found["undefined"] {
		t.Errorf("expected whitelist term 'undefined' in %v", terms)
	}
	if !found["fetch"] {
		t.Errorf("expected whitelist term 'fetch' in %v", terms)
	}
	if !found["userName"] {
		t.Errorf("expected quoted substring 'userName' in %v", terms)
	}
	if !found["fetchUserData"] {
		t.Errorf("expected identifier 'fetchUserData' in %v", terms)
	}
}

func TestExtractKeyTermsExcludesErrorType(t *testing.T) {
	terms := ExtractKeyTerms("undefined is not a function", "undefined")
	for _, term := range terms {
		if term == "undefined" {
			t.Fatalf("errorType should be excluded from key terms, got %v", terms)
		}
	}
}

func TestBuildSearchQueryOmitsEmptyFields(t *testing.T) {
	parsed := model.ParsedError{
		Language:  model.LangUnknown,
		Framework: model.FrameworkNone,
		ErrorType: "Unknown Error",
		KeyTerms:  nil,
	}
	query := BuildSearchQuery(parsed)
	if query != "site:stackoverflow.com" {
		t.Fatalf("BuildSearchQuery = %q, want just the site filter", query)
	}
}

func TestBuildSearchQueryIncludesAllFields(t *testing.T) {
	parsed := model.ParsedError{
		Language:  model.LangPython,
		Framework: model.FrameworkDjango,
		ErrorType: "KeyError",
		KeyTerms:  []string{"settings"},
	}
	query := BuildSearchQuery(parsed)
	want := "python django KeyError settings site:stackoverflow.com"
	if query != want {
		t.Fatalf("BuildSearchQuery = %q, want %q", query, want)
	}
}

func TestFilterAndRankExcludesRegistryHostsAndPrefersStackOverflow(t *testing.T) {
	hits := []model.SearchHit{
		{Title: "npm page", URL: "https://npmjs.com/package/foo"},
		{Title: "blog", URL: "https://example.com/blog/foo-error"},
		{Title: "so answer", URL: "https://stackoverflow.com/questions/123"},
		{Title: "crates page", URL: "https://crates.io/crates/foo"},
	}
	ranked := FilterAndRank(hits, 5)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results after filtering, got %d: %+v", len(ranked), ranked)
	}
	if ranked[0].URL != "https://stackoverflow.com/questions/123" {
		t.Fatalf("expected stackoverflow result first, got %+v", ranked[0])
	}
}

func TestFilterAndRankTruncatesToLimit(t *testing.T) {
	hits := []model.SearchHit{
		{URL: "https://stackoverflow.com/q/1"},
		{URL: "https://stackoverflow.com/q/2"},
		{URL: "https://stackoverflow.com/q/3"},
	}
	ranked := FilterAndRank(hits, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(ranked))
	}
}

type stubSearcher struct {
	hits []model.SearchHit
	err  error
}

func (s stubSearcher) Search(ctx context.Context, p searchclient.Params) ([]model.SearchHit, error) {
	return s.hits, s.err
}

func TestFindSolutionsReturnsErrorOnSearchFailure(t *testing.T) {
	searcher := stubSearcher{err: errors.New("upstream down")}
	_, hits, err := FindSolutions(context.Background(), searcher, "TypeError: undefined is not a function", "", "", 5)
	if err == nil {
		t.Fatal("expected an error to be returned, not swallowed")
	}
	if hits != nil {
		t.Fatalf("expected nil hits on failure, got %+v", hits)
	}
}

func TestFindSolutionsRanksAndParses(t *testing.T) {
	searcher := stubSearcher{hits: []model.SearchHit{
		{URL: "https://npmjs.com/package/x"},
		{URL: "https://stackoverflow.com/questions/456"},
	}}
	parsed, hits, err := FindSolutions(context.Background(), searcher, "ReferenceError: x is not defined", "", "", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.ErrorType != "ReferenceError" {
		t.Fatalf("expected ReferenceError, got %q", parsed.ErrorType)
	}
	if len(hits) != 1 || hits[0].URL != "https://stackoverflow.com/questions/456" {
		t.Fatalf("expected only the stackoverflow hit, got %+v", hits)
	}
}
