package integrations

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist upstream.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for upstream requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// BuildURL appends the query string encoded from params (a struct with
// `url` tags, see go-querystring) to base.
func BuildURL(base string, params any) (string, error) {
	if params == nil {
		return base, nil
	}
	v, err := query.Values(params)
	if err != nil {
		return "", err
	}
	q := v.Encode()
	if q == "" {
		return base, nil
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q, nil
}
