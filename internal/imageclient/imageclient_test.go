package imageclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchNotConfigured(t *testing.T) {
	c := New("")
	_, err := c.Search(context.Background(), Params{Query: "cats"})
	if err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSearchReturnsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"hits": [
				{"tags": "cat, kitten, pet", "imageWidth": 1920, "imageHeight": 1080, "views": 100, "downloads": 10, "likes": 5,
				 "user": "alice", "previewURL": "https://x/p.jpg", "webformatURL": "https://x/w.jpg", "largeImageURL": "https://x/l.jpg"}
			]
		}`))
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	results, err := c.Search(context.Background(), Params{Query: "cat", MaxResults: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if len(results[0].Tags) != 3 {
		t.Fatalf("expected 3 tags, got %v", results[0].Tags)
	}
}
