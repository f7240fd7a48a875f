package httpclient

import (
	"context"
	"io"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// FilePart describes a single file field of a multipart/form-data upload.
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Reader      io.Reader
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	PostFile(ctx context.Context, url string, part FilePart, headers map[string]string) (Response, error)
}
