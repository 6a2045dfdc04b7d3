package repository

import (
	"context"
	"io"
	"net/http"
)

// HTTPFetcher is the network side of a PDF download.
type HTTPFetcher interface {
	// Head returns the response headers of a HEAD request.
	Head(ctx context.Context, url string) (http.Header, error)
	// Get streams the body of a GET request into w and returns the bytes written.
	// A non-2xx status is an error.
	Get(ctx context.Context, url string, w io.Writer) (int64, error)
}
