package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:8080" {
		t.Fatalf("api_url = %q", cfg.APIURL)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("expected no request timeout by default, got %v", cfg.RequestTimeout)
	}
	if cfg.StorageType != "none" {
		t.Fatalf("storage_type = %q", cfg.StorageType)
	}
	if cfg.HistoryTTL != 30*24*time.Hour {
		t.Fatalf("history ttl = %v", cfg.HistoryTTL)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("API_URL", "http://env.example:9000/")
	t.Setenv("OUTPUT_DIR", "/from/env")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--api-url", "http://flag.example:8081/", "--request-timeout", "7"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://flag.example:8081" {
		t.Fatalf("api_url = %q, want flag value without trailing slash", cfg.APIURL)
	}
	if cfg.OutputDir != "/from/env" {
		t.Fatalf("output_dir = %q", cfg.OutputDir)
	}
	if cfg.RequestTimeout != 7*time.Second {
		t.Fatalf("request timeout = %v", cfg.RequestTimeout)
	}
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "-1")
	if _, err := Load(nil); err == nil {
		t.Fatalf("expected error for negative request_timeout")
	}
}
