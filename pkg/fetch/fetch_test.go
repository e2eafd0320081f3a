package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"irpfgen/pkg/httpclient"
)

func TestFetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "Java/11.0.22" {
			t.Errorf("User-Agent = %q, want Java/11.0.22", got)
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.Write([]byte("<hello/>"))
	}))
	defer srv.Close()

	header := http.Header{"User-Agent": []string{"Java/11.0.22"}}
	body, err := Fetch(context.Background(), httpclient.New(), srv.URL, header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Kind() != KindText {
		t.Errorf("Kind() = %v, want KindText", body.Kind())
	}
	if body.Text() != "<hello/>" {
		t.Errorf("Text() = %q, want <hello/>", body.Text())
	}
}

func TestFetchBinary(t *testing.T) {
	payload := []byte{0x50, 0x4b, 0x03, 0x04}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write(payload)
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), httpclient.New(), srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Kind() != KindBinary {
		t.Errorf("Kind() = %v, want KindBinary", body.Kind())
	}
	if body.Len() != len(payload) {
		t.Errorf("Len() = %d, want %d", body.Len(), len(payload))
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), httpclient.New(), srv.URL, nil)
	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fetchErr.URL != srv.URL {
		t.Errorf("URL = %q, want %q", fetchErr.URL, srv.URL)
	}
	if fetchErr.Status == "" {
		t.Error("expected a status in the error")
	}
}

func TestFetchDoesNotFollowRedirects(t *testing.T) {
	var followed bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/target" {
			followed = true
			w.Write([]byte("secret"))
			return
		}
		http.Redirect(w, r, "/target", http.StatusFound)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), httpclient.New(), srv.URL, nil)
	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error for redirect status, got %v", err)
	}
	if followed {
		t.Error("redirect target was fetched")
	}
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // make the endpoint unreachable

	_, err := Fetch(context.Background(), httpclient.New(), srv.URL, nil)
	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fetchErr.Err == nil {
		t.Error("expected a wrapped transport error")
	}
}
