package publishers

import "time"

// EventXMLExtracted is emitted after extracted XML was written locally.
const EventXMLExtracted = "xml_extracted"

// Event represents the payload published downstream.
type Event struct {
	Type           string    `json:"type"`
	DocumentName   string    `json:"document_name"`
	DocumentSHA256 string    `json:"document_sha256"`
	StatusCode     int       `json:"status_code"`
	FileStatus     string    `json:"file_status,omitempty"`
	XMLFilename    string    `json:"xml_filename"`
	OutputPath     string    `json:"output_path"`
	ExtractedAt    time.Time `json:"extracted_at"`
}

// NewExtractedEvent constructs an xml_extracted Event stamped with the current time.
func NewExtractedEvent(documentName, documentSHA string, statusCode int, fileStatus, xmlFilename, outputPath string) Event {
	return Event{
		Type:           EventXMLExtracted,
		DocumentName:   documentName,
		DocumentSHA256: documentSHA,
		StatusCode:     statusCode,
		FileStatus:     fileStatus,
		XMLFilename:    xmlFilename,
		OutputPath:     outputPath,
		ExtractedAt:    time.Now().UTC(),
	}
}

// attributes are the non-empty message attributes attached by queue/topic sinks.
func (e Event) attributes() map[string]string {
	attrs := make(map[string]string, 2)
	if e.Type != "" {
		attrs["event_type"] = e.Type
	}
	if e.DocumentSHA256 != "" {
		attrs["document_sha256"] = e.DocumentSHA256
	}
	return attrs
}
