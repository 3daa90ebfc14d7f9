package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("# defaults only\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), *cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteThenLoadWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	want := Default()
	want.APIBaseURL = "https://tax.example.com"
	want.ActivityTimeout = 5 * time.Minute
	want.FlowsDir = "flows"
	want.ReturnYear = "2023"
	if err := Write(path, want); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("STEPFORM_LISTEN_ADDR", ":9090")
	t.Setenv("STEPFORM_LOG_FORMAT", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want.ListenAddr = ":9090"
	want.LogFormat = "json"
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"format":    "log_format: xml\n",
		"countdown": "countdown: 10ms\n",
		"timeout":   "activity_timeout: 0s\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := Load(path)
			if err == nil || !strings.HasPrefix(err.Error(), "config: ") {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatalf("expected error for a missing config file")
	}
}
