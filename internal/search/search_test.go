package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func TestBrave_Summary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Subscription-Token"); got != "key" {
			t.Errorf("token header = %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "go proverbs" {
			t.Errorf("q = %q", got)
		}
		w.Write([]byte(`{"web":{"results":[
			{"title":"A","description":"first"},
			{"title":"B","description":"second"},
			{"title":"C","description":"third"},
			{"title":"D","description":"fourth"}
		]}}`))
	}))
	defer srv.Close()

	b := NewBrave("key")
	b.Endpoint = srv.URL
	got, err := b.Search(context.Background(), "go proverbs")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := "• A: first\n• B: second\n• C: third"
	if got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}

func TestBrave_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"web":{"results":[]}}`))
	}))
	defer srv.Close()

	b := NewBrave("key")
	b.Endpoint = srv.URL
	got, err := b.Search(context.Background(), "xyzzy")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != "No results found" {
		t.Errorf("summary = %q", got)
	}
}

func TestBrave_NoKey(t *testing.T) {
	b := NewBrave("")
	if _, err := b.Search(context.Background(), "anything"); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestSerper_Summary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "key" {
			t.Errorf("key header = %q", got)
		}
		w.Write([]byte(`{"shopping":[
			{"title":"Red Shoes","price":"$40","source":"ShoeMart"},
			{"title":"Blue Shoes","price":"","source":""},
			{"title":"Green Shoes","price":"$55","source":"Kicks"},
			{"title":"Extra","price":"$1","source":"X"}
		]}`))
	}))
	defer srv.Close()

	s := NewSerper("key")
	s.Endpoint = srv.URL
	got, err := s.Shop(context.Background(), "shoes", 10)
	if err != nil {
		t.Fatalf("Shop: %v", err)
	}
	want := `Found 4 products for "shoes". Top results: Red Shoes for $40 from ShoeMart. ` +
		`Blue Shoes for Price not available from Unknown seller. Green Shoes for $55 from Kicks`
	if got != want {
		t.Errorf("summary = %q\nwant %q", got, want)
	}
}

func TestSerper_CountCapped(t *testing.T) {
	var gotNum float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := jsonDecode(r, &body); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		gotNum = body["num"].(float64)
		w.Write([]byte(`{"shopping":[]}`))
	}))
	defer srv.Close()

	s := NewSerper("key")
	s.Endpoint = srv.URL
	got, err := s.Shop(context.Background(), "shoes", 100)
	if err != nil {
		t.Fatalf("Shop: %v", err)
	}
	if gotNum != 40 {
		t.Errorf("num = %v, want capped at 40", gotNum)
	}
	if got != `No products found for "shoes"` {
		t.Errorf("summary = %q", got)
	}
}

func TestTaskRunner_NotConfigured(t *testing.T) {
	runner, err := NewTaskRunner(context.Background(), "", "")
	if err != nil {
		t.Fatalf("NewTaskRunner: %v", err)
	}
	if runner.Available() {
		t.Fatal("runner without key reports available")
	}
	if _, err := runner.Run(context.Background(), "plan a trip"); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
}
