// Package httpclient builds the HTTP client shared by the index fetch and
// the archive downloads: a fixed 30s timeout, redirects never followed.
package httpclient

import (
	"net/http"
	"time"

	"irpfgen/pkg/logging"
)

// Timeout bounds every request end to end.
const Timeout = 30 * time.Second

// New returns the configured client. Redirect responses are returned
// as-is instead of being chased, so a non-2xx status always surfaces to
// the caller.
func New() *http.Client {
	return &http.Client{
		Timeout: Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Transport: &loggingTransport{base: http.DefaultTransport},
	}
}

type loggingTransport struct {
	base http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logging.GetLogger(req.Context()).Debug("http request", "url", req.URL.String())
	return t.base.RoundTrip(req)
}
