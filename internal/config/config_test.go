package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EMBEDDING_VECTOR_SIZE", "384")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.EmbeddingVectorSize != 384 {
		t.Errorf("EmbeddingVectorSize = %d, want 384", cfg.EmbeddingVectorSize)
	}
	if cfg.ChunkSize != 1000 {
		t.Errorf("ChunkSize = %d, want 1000", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 200 {
		t.Errorf("ChunkOverlap = %d, want 200", cfg.ChunkOverlap)
	}
	if cfg.RetrievalK != 5 {
		t.Errorf("RetrievalK = %d, want 5", cfg.RetrievalK)
	}
	if cfg.SimilarityThreshold != 0.1 {
		t.Errorf("SimilarityThreshold = %v, want 0.1", cfg.SimilarityThreshold)
	}
	if cfg.GenTemperature != 0.7 {
		t.Errorf("GenTemperature = %v, want 0.7", cfg.GenTemperature)
	}
	if cfg.GenMaxTokens != 500 {
		t.Errorf("GenMaxTokens = %d, want 500", cfg.GenMaxTokens)
	}
	if cfg.HistoryMaxTurns != 3 {
		t.Errorf("HistoryMaxTurns = %d, want 3", cfg.HistoryMaxTurns)
	}
	if cfg.MaxUploadBytes != 10*1024*1024 {
		t.Errorf("MaxUploadBytes = %d, want 10 MiB", cfg.MaxUploadBytes)
	}
	if cfg.QdrantCollection != "pdf_documents" {
		t.Errorf("QdrantCollection = %s", cfg.QdrantCollection)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoad_RequiresVectorSize(t *testing.T) {
	t.Setenv("EMBEDDING_VECTOR_SIZE", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "EMBEDDING_VECTOR_SIZE") {
		t.Errorf("Load() error = %v, want EMBEDDING_VECTOR_SIZE required", err)
	}
}

func TestLoad_InvalidVectorSize(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not a number", value: "abc"},
		{name: "zero", value: "0"},
		{name: "negative", value: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EMBEDDING_VECTOR_SIZE", tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with EMBEDDING_VECTOR_SIZE=%q expected error", tt.value)
			}
		})
	}
}

func TestLoad_OverlapMustBeLessThanSize(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "CHUNK_OVERLAP") {
		t.Errorf("Load() error = %v, want overlap validation failure", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("CHUNK_OVERLAP", "50")
	t.Setenv("RETRIEVAL_K", "8")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ChunkSize != 500 || cfg.ChunkOverlap != 50 {
		t.Errorf("chunking = %d/%d, want 500/50", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.RetrievalK != 8 {
		t.Errorf("RetrievalK = %d, want 8", cfg.RetrievalK)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %s, want json", cfg.LogFormat)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "unknown", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
