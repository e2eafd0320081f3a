// Package fetch performs single GET requests against the IRPF download
// host and hands back the raw body.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"irpfgen/pkg/logging"
)

// Kind discriminates how the response body should be interpreted,
// derived from the declared Content-Type.
type Kind int

const (
	KindBinary Kind = iota
	KindText
)

// Body is the result of a successful fetch.
type Body struct {
	kind Kind
	data []byte
}

func (b Body) Kind() Kind    { return b.kind }
func (b Body) Bytes() []byte { return b.data }
func (b Body) Text() string  { return string(b.data) }
func (b Body) Len() int      { return len(b.data) }

// Error reports a failed fetch: the URL plus either a non-2xx status or
// the underlying transport error.
type Error struct {
	URL    string
	Status string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %s", e.URL, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetch GETs url with the given extra headers and reads the whole body.
// Any transport failure or non-2xx status comes back as *Error; the
// client is expected to not follow redirects (see pkg/httpclient).
func Fetch(ctx context.Context, client *http.Client, url string, header http.Header) (Body, error) {
	logger := logging.GetLogger(ctx)
	logger.Debug("fetching remote url", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Body{}, &Error{URL: url, Err: err}
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return Body{}, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	logger.Debug("response headers", "url", url, "headers", fmt.Sprintf("%v", resp.Header))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Body{}, &Error{URL: url, Err: err}
	}

	logger.Debug("response body (truncated)", "url", url, "body", truncate(data, 300))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Body{}, &Error{URL: url, Status: resp.Status}
	}

	kind := KindBinary
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/") {
		kind = KindText
	}
	return Body{kind: kind, data: data}, nil
}

func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit])
}
