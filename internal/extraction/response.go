package extraction

import (
	"net/http"
	"strings"
)

// File status values reported by the extraction service.
const (
	FileStatusSuccess    = "Success"
	FileStatusNotFacturX = "XML is not Factur-x.xml"
)

// APIResponse is the outcome of a single call: status code plus decoded body.
type APIResponse struct {
	StatusCode int        `json:"status_code"`
	Body       ParsedBody `json:"response"`
}

// OK reports a 200 status.
func (r APIResponse) OK() bool { return r.StatusCode == http.StatusOK }

// ExtractionResult is the view of a successful extraction body.
type ExtractionResult struct {
	XMLContent    string
	XMLFilename   string
	FileStatus    string
	EmbeddedFiles []string
}

// ErrorDetail is the view of a structured failure body.
type ErrorDetail struct {
	FileStatus    string
	EmbeddedFiles []string
}

// Extraction returns the extraction view when the response is a 200 JSON
// object carrying a string xml_content. XMLFilename falls back to
// DefaultXMLFilename when absent, empty or not a string.
func (r APIResponse) Extraction() (ExtractionResult, bool) {
	if !r.OK() {
		return ExtractionResult{}, false
	}
	obj, ok := r.Body.Object()
	if !ok {
		return ExtractionResult{}, false
	}
	content, ok := obj["xml_content"].(string)
	if !ok {
		return ExtractionResult{}, false
	}

	name, _ := obj["xml_filename"].(string)
	if strings.TrimSpace(name) == "" {
		name = DefaultXMLFilename
	}
	status, _ := obj["file_status"].(string)
	embedded, _ := obj["embedded_files"].(string)

	return ExtractionResult{
		XMLContent:    content,
		XMLFilename:   name,
		FileStatus:    status,
		EmbeddedFiles: splitEmbeddedFiles(embedded),
	}, true
}

// ErrorDetail returns the failure view for non-200 JSON object bodies.
func (r APIResponse) ErrorDetail() (ErrorDetail, bool) {
	if r.OK() {
		return ErrorDetail{}, false
	}
	obj, ok := r.Body.Object()
	if !ok {
		return ErrorDetail{}, false
	}
	status, ok := obj["file_status"].(string)
	if !ok {
		return ErrorDetail{}, false
	}
	embedded, _ := obj["embedded_files"].(string)
	return ErrorDetail{FileStatus: status, EmbeddedFiles: splitEmbeddedFiles(embedded)}, true
}

// HasXMLContentKey reports a 200 JSON object that names xml_content, whatever its type.
func (r APIResponse) HasXMLContentKey() bool {
	if !r.OK() {
		return false
	}
	obj, ok := r.Body.Object()
	if !ok {
		return false
	}
	_, ok = obj["xml_content"]
	return ok
}

func splitEmbeddedFiles(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
