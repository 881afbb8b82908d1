package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agro-collector/entities"
)

func TestFetcherSendsConfiguredRequest(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		io.WriteString(w, `{"value":1}`)
	}))
	defer srv.Close()

	cfg := entities.ReadingConfig{"api_url": srv.URL + "/probe", "api_key": "secret", "api_method": "post"}
	body, err := NewFetcher(time.Second).Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != `{"value":1}` {
		t.Errorf("body: got %q", body)
	}
	if got.Method != http.MethodPost || got.URL.Path != "/probe" {
		t.Errorf("request: %s %s", got.Method, got.URL.Path)
	}
	if h := got.Header.Get("Authorization"); h != "Bearer secret" {
		t.Errorf("Authorization: got %q", h)
	}
	if h := got.Header.Get("Content-Type"); h != "application/json" {
		t.Errorf("Content-Type: got %q", h)
	}
	if h := got.Header.Get("User-Agent"); h != userAgent {
		t.Errorf("User-Agent: got %q", h)
	}
}

func TestFetcherOmitsAuthorizationWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method: got %s, want GET", r.Method)
		}
		if h := r.Header.Get("Authorization"); h != "" {
			t.Errorf("unexpected Authorization header %q", h)
		}
		io.WriteString(w, "1")
	}))
	defer srv.Close()

	if _, err := NewFetcher(time.Second).Fetch(context.Background(), entities.ReadingConfig{"api_url": srv.URL}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
}

func TestFetcherRejectsNon2xx(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusMovedPermanently} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			io.WriteString(w, `{"value":1}`)
		}))
		client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
		_, err := NewFetcherWithClient(client).Fetch(context.Background(), entities.ReadingConfig{"api_url": srv.URL})
		srv.Close()
		if err == nil || !strings.Contains(err.Error(), "unexpected status") {
			t.Errorf("status %d: got %v, want unexpected status error", status, err)
		}
	}
}

func TestFetcherTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewFetcher(50*time.Millisecond).Fetch(context.Background(), entities.ReadingConfig{"api_url": srv.URL})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
