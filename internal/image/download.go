package imagepkg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/youruser/imagefetch/internal/metrics"
	"github.com/youruser/imagefetch/internal/util"
)

// DefaultExtension is used for raw downloads whose Content-Type is missing
// or not one of the known image types.
const DefaultExtension = ".jpeg"

var extensionByType = map[string]string{
	"image/jpeg": ".jpeg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ExtensionFor maps a declared Content-Type to the extension the raw bytes
// are stored under before conversion.
func ExtensionFor(contentType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if ext, ok := extensionByType[mediaType]; ok {
		return ext
	}
	return DefaultExtension
}

// ReferenceError marks a row whose image link is unusable. No request is
// made for such rows.
type ReferenceError struct {
	Reason string
}

func (e *ReferenceError) Error() string { return e.Reason }

var (
	ErrNoReference      = &ReferenceError{Reason: "Ingen bildlänk angiven"}
	ErrNoPicture        = &ReferenceError{Reason: "Ingen bild tillgänglig"}
	ErrInvalidReference = &ReferenceError{Reason: "Ogiltig URL"}
)

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	kind := "Client"
	if e.StatusCode >= 500 {
		kind = "Server"
	}
	return fmt.Sprintf("%d %s Error: %s for url: %s", e.StatusCode, kind, http.StatusText(e.StatusCode), e.URL)
}

// FetchResult holds a downloaded, not yet decoded, image.
type FetchResult struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Fetcher downloads images with a single bounded GET per link.
type Fetcher struct {
	client    *http.Client
	noPicture string
}

// NewFetcher returns a Fetcher whose requests give up after timeout.
// noPicture is the cell text meaning the row intentionally has no image.
func NewFetcher(timeout time.Duration, noPicture string) *Fetcher {
	return NewFetcherWithClient(util.NewClient(timeout), noPicture)
}

func NewFetcherWithClient(client *http.Client, noPicture string) *Fetcher {
	return &Fetcher{client: client, noPicture: noPicture}
}

// CheckReference validates link without touching the network. Absence is
// checked first, then the sentinel text, then the scheme.
func (f *Fetcher) CheckReference(link string) error {
	switch {
	case link == "":
		return ErrNoReference
	case link == f.noPicture:
		return ErrNoPicture
	case !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://"):
		return ErrInvalidReference
	}
	return nil
}

// Fetch downloads link. A *ReferenceError means the link was rejected
// before any request; other errors carry the transport or status failure.
func (f *Fetcher) Fetch(ctx context.Context, link string) (*FetchResult, error) {
	if err := f.CheckReference(link); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := f.get(ctx, link)
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.FetchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return res, err
}

func (f *Fetcher) get(ctx context.Context, link string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: link}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	metrics.DownloadedBytes.Add(float64(len(body)))

	contentType := resp.Header.Get("Content-Type")
	return &FetchResult{
		Data:        body,
		ContentType: contentType,
		Extension:   ExtensionFor(contentType),
	}, nil
}
