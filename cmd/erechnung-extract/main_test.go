package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/samvad-hq/erechnung-extract/internal/app"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandExtracts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(`{"status":"healthy"}`))
		case "/extract_xml":
			_, _ = w.Write([]byte(`{"xml_content":"<a/>","xml_filename":"out.xml"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	pdf := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	outDir := filepath.Join(dir, "xml")

	out, err := execute(t, "--api-url", srv.URL, "--output-dir", outDir, "--log-level", "error", pdf)
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "out.xml"))
	if err != nil || string(data) != "<a/>" {
		t.Fatalf("output = %q err=%v", data, err)
	}
	if !strings.Contains(out, "Checking API health...") {
		t.Fatalf("unexpected transcript:\n%s", out)
	}
}

func TestRootCommandUnhealthyExitCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := execute(t, "--api-url", srv.URL, "--log-level", "error")
	if !errors.Is(err, app.ErrUnhealthy) {
		t.Fatalf("expected ErrUnhealthy, got %v", err)
	}
	if app.ExitCode(err) != 1 {
		t.Fatalf("exit code = %d", app.ExitCode(err))
	}
}

func TestRootCommandIgnoresExtraArgs(t *testing.T) {
	var healthCalls, extractCalls atomic.Int32
	var uploaded atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			healthCalls.Add(1)
			_, _ = w.Write([]byte(`{"status":"healthy"}`))
		case "/extract_xml":
			extractCalls.Add(1)
			if _, hdr, err := r.FormFile("file"); err == nil {
				uploaded.Store(hdr.Filename)
			}
			_, _ = w.Write([]byte(`{"file_status":"Success"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	pdf := filepath.Join(dir, "first.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	out, err := execute(t, "--api-url", srv.URL, "--log-level", "error", pdf, filepath.Join(dir, "missing.pdf"))
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	if healthCalls.Load() != 1 || extractCalls.Load() != 1 {
		t.Fatalf("health=%d extract=%d", healthCalls.Load(), extractCalls.Load())
	}
	if got, _ := uploaded.Load().(string); got != "first.pdf" {
		t.Fatalf("uploaded %q, want first.pdf", got)
	}
}
