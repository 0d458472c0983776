package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yarko-w/jw-daily-text/internal/fetch"
)

func TestURL_Defaults(t *testing.T) {
	c := &Client{}
	got := c.URL(time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC))
	want := "https://wol.jw.org/wol/dt/r1/lp-e/2026/1/5"
	if got != want {
		t.Fatalf("URL=%q, want %q", got, want)
	}
}

func TestURL_CustomBaseAndLanguage(t *testing.T) {
	c := &Client{BaseURL: "http://mirror.local/", Language: "/r4/lp-s/"}
	got := c.URL(time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC))
	if got != "http://mirror.local/wol/dt/r4/lp-s/2025/12/31" {
		t.Fatalf("URL=%q", got)
	}
}

func TestDailyText_FirstItemWithContent(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"title":"empty","content":"  "},{"title":"Monday, January 5","content":"<p>text</p>","url":"/en/wol/dt/r1/lp-e/2026/1/5"}]}`))
	}))
	defer srv.Close()

	c := &Client{HTTP: &fetch.Client{MaxAttempts: 1}, BaseURL: srv.URL}
	it, err := c.DailyText(context.Background(), time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyText: %v", err)
	}
	if it.Title != "Monday, January 5" || it.Content != "<p>text</p>" {
		t.Fatalf("unexpected item: %+v", it)
	}
	if path != "/wol/dt/r1/lp-e/2026/1/5" {
		t.Fatalf("requested path %q", path)
	}
}

func TestDailyText_NoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	c := &Client{HTTP: &fetch.Client{MaxAttempts: 1}, BaseURL: srv.URL}
	_, err := c.DailyText(context.Background(), time.Now())
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
}

func TestDailyText_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := &Client{HTTP: &fetch.Client{MaxAttempts: 1}, BaseURL: srv.URL}
	_, err := c.DailyText(context.Background(), time.Now())
	var se *fetch.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected wrapped StatusError 404, got %v", err)
	}
}

func TestDailyText_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":`))
	}))
	defer srv.Close()

	c := &Client{HTTP: &fetch.Client{MaxAttempts: 1}, BaseURL: srv.URL}
	if _, err := c.DailyText(context.Background(), time.Now()); err == nil || errors.Is(err, ErrNoItems) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
