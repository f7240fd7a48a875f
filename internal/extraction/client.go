package extraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/erechnung-extract/pkg/httpclient"
)

const (
	HealthPath     = "/health"
	ExtractPath    = "/extract_xml"
	UploadField    = "file"
	PDFContentType = "application/pdf"
)

// Client talks to the extraction API. It keeps no per-call state.
type Client struct {
	http httpclient.Client
}

// NewClient builds a Client over the given transport, defaulting to resty without a timeout.
func NewClient(c httpclient.Client) *Client {
	if c == nil {
		c = httpclient.NewRestyClient(0)
	}
	return &Client{http: c}
}

// CheckHealth probes GET {baseURL}/health.
func (c *Client) CheckHealth(ctx context.Context, baseURL string) (APIResponse, error) {
	url := endpoint(baseURL, HealthPath)
	resp, err := c.http.Get(ctx, url, nil)
	if err != nil {
		return APIResponse{}, fmt.Errorf("get %s: %w", url, err)
	}
	return toAPIResponse(resp)
}

// ExtractXML uploads filePath to POST {baseURL}/extract_xml as the multipart
// field "file". A missing file is reported with the unwrapped *fs.PathError
// before any request is made.
func (c *Client) ExtractXML(ctx context.Context, baseURL, filePath string) (APIResponse, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return APIResponse{}, err
	}
	defer f.Close()

	url := endpoint(baseURL, ExtractPath)
	resp, err := c.http.PostFile(ctx, url, httpclient.FilePart{
		Field:       UploadField,
		FileName:    filepath.Base(filePath),
		ContentType: PDFContentType,
		Reader:      f,
	}, nil)
	if err != nil {
		return APIResponse{}, fmt.Errorf("post %s: %w", url, err)
	}
	return toAPIResponse(resp)
}

func toAPIResponse(resp httpclient.Response) (APIResponse, error) {
	body, err := decodeBody(resp.Header(), resp.Body())
	if err != nil {
		return APIResponse{}, fmt.Errorf("status %d: %w", resp.StatusCode(), err)
	}
	return APIResponse{StatusCode: resp.StatusCode(), Body: body}, nil
}

func endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}
