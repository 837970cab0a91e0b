package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestGetDecodesEnvelopeData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/courses" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"data":{"courses":[{"id":1,"title":"Go"}]}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())

	var out struct {
		Courses []struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
		} `json:"courses"`
	}
	if err := c.Get(context.Background(), "/courses", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(out.Courses) != 1 || out.Courses[0].Title != "Go" {
		t.Errorf("decoded %+v", out)
	}
}

func TestNon2xxReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":"NOT_FOUND","message":"course not found"}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())

	err := c.Get(context.Background(), "/courses/99", nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", statusErr.StatusCode)
	}
	if statusErr.Code != "NOT_FOUND" {
		t.Errorf("code = %q", statusErr.Code)
	}
	if statusErr.Error() != "course not found" {
		t.Errorf("message = %q", statusErr.Error())
	}
}

func TestStatusErrorWithoutBodyFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())
	err := c.Get(context.Background(), "/health", nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Error() == "" {
		t.Error("error string should never be empty")
	}
}

func TestBearerTokenAttached(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"data":{}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())
	c.SetTokenSource(staticToken("abc123"))

	if err := c.Get(context.Background(), "/me", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "Bearer abc123" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestEmptyTokenMeansNoHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"data":{}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())
	c.SetTokenSource(staticToken(""))

	if err := c.Get(context.Background(), "/courses", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "" {
		t.Errorf("unexpected Authorization header %q", got)
	}
}
