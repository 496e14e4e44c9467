package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchSentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fng/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"value":"72","value_classification":"Greed","timestamp":"1760000000"}]}`))
	}))
	defer srv.Close()

	c := New("alternative_me", srv.URL, 2*time.Second)
	s, err := c.FetchSentiment(context.Background(), "btc")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if s.Score != 0.72 {
		t.Fatalf("score = %v, want 0.72", s.Score)
	}
	if s.Label != "Greed" || s.Symbol != "BTC" {
		t.Fatalf("sentiment = %+v", s)
	}
	if s.AsOf != time.Unix(1760000000, 0).UTC() {
		t.Fatalf("as_of = %v", s.AsOf)
	}
}

func TestFetchSentimentEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := New("alternative_me", srv.URL, 2*time.Second)
	if _, err := c.FetchSentiment(context.Background(), "BTC"); err == nil {
		t.Fatalf("expected error for empty response")
	}
}

func TestFetchSentimentBadValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"value":"not-a-number"}]}`))
	}))
	defer srv.Close()

	c := New("alternative_me", srv.URL, 2*time.Second)
	if _, err := c.FetchSentiment(context.Background(), "BTC"); err == nil {
		t.Fatalf("expected parse error")
	}
}
