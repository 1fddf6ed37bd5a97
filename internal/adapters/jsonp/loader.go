package jsonp

import (
	"context"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// maxScriptBytes bounds how much of a response body is read.
const maxScriptBytes = 32 << 20

// Loader fetches the script body for a callback-wrapped URL.
type Loader interface {
	Load(ctx context.Context, url string) ([]byte, error)
}

// HTTPLoader loads scripts with a plain GET.
type HTTPLoader struct {
	client *http.Client
}

// NewHTTPLoader returns a loader using client, or http.DefaultClient when nil.
// Redirects are followed, which the spreadsheet web app relies on.
func NewHTTPLoader(client *http.Client) *HTTPLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPLoader{client: client}
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "build script request")
	}
	req.Header.Set("Accept", "application/javascript, */*;q=0.1")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "load script")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("unexpected script status", goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptBytes))
	if err != nil {
		return nil, goerr.Wrap(err, "read script body")
	}
	return body, nil
}
