package imagepkg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.calls++
	return t.next.RoundTrip(r)
}

func newCountingFetcher() (*Fetcher, *countingTransport) {
	tr := &countingTransport{next: http.DefaultTransport}
	client := &http.Client{Timeout: 5 * time.Second, Transport: tr}
	return NewFetcherWithClient(client, "No picture available"), tr
}

func TestFetchRejectsReferencesWithoutRequest(t *testing.T) {
	cases := []struct {
		link string
		want error
	}{
		{"", ErrNoReference},
		{"No picture available", ErrNoPicture},
		{"www.example.com/a.jpg", ErrInvalidReference},
		{"ftp://example.com/a.jpg", ErrInvalidReference},
		{"HTTP://example.com/a.jpg", ErrInvalidReference},
	}
	for _, tc := range cases {
		f, tr := newCountingFetcher()
		_, err := f.Fetch(context.Background(), tc.link)
		if !errors.Is(err, tc.want) {
			t.Errorf("Fetch(%q) error = %v, want %v", tc.link, err, tc.want)
		}
		var refErr *ReferenceError
		if !errors.As(err, &refErr) {
			t.Errorf("Fetch(%q) should return *ReferenceError", tc.link)
		}
		if tr.calls != 0 {
			t.Errorf("Fetch(%q) made %d requests, want none", tc.link, tr.calls)
		}
	}
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	f, tr := newCountingFetcher()
	res, err := f.Fetch(context.Background(), srv.URL+"/a.png")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(res.Data) != "png-bytes" || res.Extension != ".png" {
		t.Errorf("unexpected result: %+v", res)
	}
	if tr.calls != 1 {
		t.Errorf("expected exactly one request, got %d", tr.calls)
	}
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f, tr := newCountingFetcher()
	link := srv.URL + "/missing.jpg"
	_, err := f.Fetch(context.Background(), link)

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	want := "404 Client Error: Not Found for url: " + link
	if err.Error() != want {
		t.Errorf("error text = %q, want %q", err.Error(), want)
	}
	if tr.calls != 1 {
		t.Errorf("no retries expected, got %d requests", tr.calls)
	}
}

func TestFetchServerErrorText(t *testing.T) {
	err := &StatusError{StatusCode: 503, URL: "http://x/y"}
	if !strings.HasPrefix(err.Error(), "503 Server Error: Service Unavailable") {
		t.Errorf("unexpected text %q", err.Error())
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewFetcher(50*time.Millisecond, "No picture available")
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var refErr *ReferenceError
	if errors.As(err, &refErr) {
		t.Errorf("timeout must not look like a reference error: %v", err)
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":               ".jpeg",
		"image/png":                ".png",
		"image/webp":               ".webp",
		"IMAGE/PNG; charset=utf-8": ".png",
		"image/gif":                DefaultExtension,
		"text/html":                DefaultExtension,
		"":                         DefaultExtension,
	}
	for ct, want := range cases {
		if got := ExtensionFor(ct); got != want {
			t.Errorf("ExtensionFor(%q) = %q, want %q", ct, got, want)
		}
	}
}
