package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Store.Backend != "chromem" {
		t.Errorf("backend = %q", cfg.Store.Backend)
	}
	if cfg.RAG.ChunkSize != 1000 || cfg.RAG.ChunkOverlap != 200 {
		t.Errorf("chunking defaults = %d/%d", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	if cfg.Fetch.TimeoutSecs != 30 {
		t.Errorf("fetch timeout = %d", cfg.Fetch.TimeoutSecs)
	}
}

func TestLoadConfig_FileOverridesAndDefaultsFillGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
store:
  backend: postgres
rag:
  chunk_size: 500
  separators: ["\n", " "]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Store.Backend != "postgres" {
		t.Errorf("backend = %q", cfg.Store.Backend)
	}
	if cfg.RAG.ChunkSize != 500 {
		t.Errorf("chunk_size = %d", cfg.RAG.ChunkSize)
	}
	if len(cfg.RAG.Separators) != 2 {
		t.Errorf("separators = %v", cfg.RAG.Separators)
	}
	if cfg.RAG.ChunkOverlap != 200 {
		t.Errorf("overlap default not applied: %d", cfg.RAG.ChunkOverlap)
	}
	if cfg.Store.Collection != "web_content" {
		t.Errorf("collection default not applied: %q", cfg.Store.Collection)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store: [not: a: mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}
