package extraction

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestPersistIfPresent(t *testing.T) {
	tests := []struct {
		name     string
		resp     APIResponse
		wantFile string
		wantBody string
	}{
		{
			name:     "named file",
			resp:     APIResponse{StatusCode: http.StatusOK, Body: JSONBody(map[string]any{"xml_content": "<a/>", "xml_filename": "out.xml"})},
			wantFile: "out.xml",
			wantBody: "<a/>",
		},
		{
			name:     "default file name",
			resp:     APIResponse{StatusCode: http.StatusOK, Body: JSONBody(map[string]any{"xml_content": "<a/>"})},
			wantFile: DefaultXMLFilename,
			wantBody: "<a/>",
		},
		{
			name:     "empty file name falls back",
			resp:     APIResponse{StatusCode: http.StatusOK, Body: JSONBody(map[string]any{"xml_content": "<b/>", "xml_filename": ""})},
			wantFile: DefaultXMLFilename,
			wantBody: "<b/>",
		},
		{
			name:     "path components stripped",
			resp:     APIResponse{StatusCode: http.StatusOK, Body: JSONBody(map[string]any{"xml_content": "<c/>", "xml_filename": "../../etc/x.xml"})},
			wantFile: "x.xml",
			wantBody: "<c/>",
		},
		{
			name:     "utf-8 content",
			resp:     APIResponse{StatusCode: http.StatusOK, Body: JSONBody(map[string]any{"xml_content": "<n>Größe €</n>"})},
			wantFile: DefaultXMLFilename,
			wantBody: "<n>Größe €</n>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path, ok, err := PersistIfPresent(tt.resp, dir)
			if err != nil {
				t.Fatalf("PersistIfPresent: %v", err)
			}
			if !ok {
				t.Fatalf("expected a file to be written")
			}
			if want := filepath.Join(dir, tt.wantFile); path != want {
				t.Fatalf("path = %q, want %q", path, want)
			}
			if got := readOutput(t, path); got != tt.wantBody {
				t.Fatalf("content = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestPersistIfPresentNothingToSave(t *testing.T) {
	tests := []struct {
		name string
		resp APIResponse
	}{
		{"missing xml_content", APIResponse{StatusCode: http.StatusOK, Body: JSONBody(map[string]any{"file_status": "Success"})}},
		{"non-200 status", APIResponse{StatusCode: http.StatusBadRequest, Body: JSONBody(map[string]any{"xml_content": "<a/>"})}},
		{"text body", APIResponse{StatusCode: http.StatusOK, Body: TextBody(`{"xml_content":"<a/>"}`)}},
		{"json array", APIResponse{StatusCode: http.StatusOK, Body: JSONBody([]any{"xml_content"})}},
		{"non-string content", APIResponse{StatusCode: http.StatusOK, Body: JSONBody(map[string]any{"xml_content": nil})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path, ok, err := PersistIfPresent(tt.resp, dir)
			if err != nil || ok || path != "" {
				t.Fatalf("expected nothing saved, got path=%q ok=%v err=%v", path, ok, err)
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatalf("ReadDir: %v", err)
			}
			if len(entries) != 0 {
				t.Fatalf("expected empty output dir, found %d entries", len(entries))
			}
		})
	}
}

func TestPersistIfPresentOverwrites(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "out.xml")
	if err := os.WriteFile(existing, []byte("<old>much longer previous content</old>"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	resp := APIResponse{StatusCode: http.StatusOK, Body: JSONBody(map[string]any{"xml_content": "<a/>", "xml_filename": "out.xml"})}
	if _, _, err := PersistIfPresent(resp, dir); err != nil {
		t.Fatalf("PersistIfPresent: %v", err)
	}
	if got := readOutput(t, existing); got != "<a/>" {
		t.Fatalf("content = %q", got)
	}
}

func TestPersistIfPresentCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	resp := APIResponse{StatusCode: http.StatusOK, Body: JSONBody(map[string]any{"xml_content": "<a/>"})}
	path, ok, err := PersistIfPresent(resp, dir)
	if err != nil || !ok {
		t.Fatalf("PersistIfPresent: ok=%v err=%v", ok, err)
	}
	if got := readOutput(t, path); got != "<a/>" {
		t.Fatalf("content = %q", got)
	}
}
