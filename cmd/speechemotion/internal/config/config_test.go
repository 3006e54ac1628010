package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haivivi/speechemotion/pkg/storage"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromMissingUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.yaml")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.Models.Source != SourceLocal || cfg.Models.Dir != "models" || cfg.Models.Extension != ".onnx" {
		t.Errorf("models = %+v", cfg.Models)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q", cfg.Log.Format)
	}
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `models:
  source: s3
  input_name: input_1
  intra_op_threads: 2
  serial_run: true
  s3:
    bucket: ml-artifacts
    prefix: emotion/v1
    region: eu-central-1
    endpoint: http://127.0.0.1:9000
    path_style: true
log:
  format: json
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	m := cfg.Models
	if m.Source != SourceS3 || m.InputName != "input_1" || m.IntraOpThreads != 2 || !m.SerialRun {
		t.Errorf("models = %+v", m)
	}
	// Unset keys keep their defaults.
	if m.Extension != ".onnx" || m.Dir != "models" {
		t.Errorf("defaults lost: %+v", m)
	}
	if m.S3.Bucket != "ml-artifacts" || m.S3.Prefix != "emotion/v1" || !m.S3.PathStyle {
		t.Errorf("s3 = %+v", m.S3)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log.format = %q", cfg.Log.Format)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad source", "models:\n  source: ftp\n", "models.source"},
		{"s3 without bucket", "models:\n  source: s3\n", "bucket"},
		{"bad log format", "log:\n  format: xml\n", "log.format"},
		{"negative threads", "models:\n  intra_op_threads: -1\n", "intra_op_threads"},
		{"not yaml", "models: [\n", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultPathEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(dirEnv, dir)
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "config.yaml") {
		t.Fatalf("path = %q", path)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != path {
		t.Fatalf("Load().Path = %q", cfg.Path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Path = filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg.Models.Source = SourceS3
	cfg.Models.S3.Bucket = "b"
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFrom(cfg.Path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Models.Source != SourceS3 || got.Models.S3.Bucket != "b" {
		t.Fatalf("reloaded = %+v", got.Models)
	}

	if err := (&Config{}).Save(); err == nil {
		t.Fatal("Save without path should fail")
	}
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "m.onnx"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Models.Dir = dir
	s, err := cfg.Store()
	if err != nil {
		t.Fatal(err)
	}
	local, ok := s.(*storage.Local)
	if !ok {
		t.Fatalf("store = %T, want *storage.Local", s)
	}
	if local.Root() != dir {
		t.Errorf("root = %q, want %q", local.Root(), dir)
	}
	if ok, err := s.Exists(context.Background(), "m.onnx"); err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}

	cfg.Models.Source = SourceS3
	cfg.Models.S3 = S3Config{Bucket: "b", Region: "us-east-1"}
	s, err = cfg.Store()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*storage.S3Store); !ok {
		t.Fatalf("store = %T, want *storage.S3Store", s)
	}
}
