// Package config loads the ingestion engine's environment configuration
// (spec §6), following the teacher's envStr/envInt-helper style rather
// than a config-file framework: the surface is a flat set of env vars
// with the occasional numeric/bool default, which doesn't benefit from
// a layered-source config library.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all environment-sourced configuration. Immutable after
// Load returns; passed explicitly Orchestrator -> DocumentProcessor per
// spec §9 ("no ambient configuration singleton").
type Config struct {
	DocumentSearchURL string
	S3EndpointURI     string
	S3BucketName      string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	VectorDBURL       string
	LogsDatabaseURL   string

	EmbeddingDimensions int
	EmbeddingModelName  string
	EmbeddingServiceURL string
	KeywordModelName    string

	ChunkSize            int
	ChunkOverlap         int
	ChunkInsertBatchSize int

	FilesConcurrencySize     string
	KeywordExtractionWorkers string

	AutoCreatePgvectorExtension bool

	GetProjectPage int
	GetDocsPage    int

	OCREnabled  bool
	OCRProvider string
	OCRDPI      int
	OCRLanguage string
}

// Load reads and validates the required environment variables listed in
// spec §6, applying documented defaults to the optional ones.
func Load() (*Config, error) {
	required := map[string]string{
		"DOCUMENT_SEARCH_URL": "",
		"S3_ENDPOINT_URI":     "",
		"S3_BUCKET_NAME":      "",
		"S3_ACCESS_KEY_ID":    "",
		"S3_SECRET_ACCESS_KEY": "",
		"S3_REGION":           "",
		"VECTOR_DB_URL":       "",
	}
	var missing []string
	for key := range required {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
			continue
		}
		required[key] = v
	}

	logsDB := envStr("LOGS_DATABASE_URL", required["VECTOR_DB_URL"])
	if logsDB == "" {
		missing = append(missing, "LOGS_DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("config.Load: required environment variables missing: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		DocumentSearchURL: required["DOCUMENT_SEARCH_URL"],
		S3EndpointURI:     required["S3_ENDPOINT_URI"],
		S3BucketName:      required["S3_BUCKET_NAME"],
		S3AccessKeyID:     required["S3_ACCESS_KEY_ID"],
		S3SecretAccessKey: required["S3_SECRET_ACCESS_KEY"],
		S3Region:          required["S3_REGION"],
		VectorDBURL:       required["VECTOR_DB_URL"],
		LogsDatabaseURL:   logsDB,

		EmbeddingDimensions: envInt("EMBEDDING_DIMENSIONS", 768),
		EmbeddingModelName:  envStr("EMBEDDING_MODEL_NAME", "all-mpnet-base-v2"),
		EmbeddingServiceURL: envStr("EMBEDDING_SERVICE_URL", "http://localhost:8081/embed"),
		KeywordModelName:    envStr("KEYWORD_MODEL_NAME", "all-mpnet-base-v2"),

		ChunkSize:            envInt("CHUNK_SIZE", 1000),
		ChunkOverlap:         envInt("CHUNK_OVERLAP", 200),
		ChunkInsertBatchSize: envInt("CHUNK_INSERT_BATCH_SIZE", 25),

		FilesConcurrencySize:     envStr("FILES_CONCURRENCY_SIZE", "auto"),
		KeywordExtractionWorkers: envStr("KEYWORD_EXTRACTION_WORKERS", "auto"),

		AutoCreatePgvectorExtension: envBool("AUTO_CREATE_PGVECTOR_EXTENSION", true),

		GetProjectPage: envInt("GET_PROJECT_PAGE", 1),
		GetDocsPage:    envInt("GET_DOCS_PAGE", 1000),

		OCREnabled:  envBool("OCR_ENABLED", true),
		OCRProvider: envStr("OCR_PROVIDER", "tesseract"),
		OCRDPI:      envInt("OCR_DPI", 300),
		OCRLanguage: envStr("OCR_LANGUAGE", "eng"),
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("config.Load: CHUNK_OVERLAP (%d) must be less than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}
	if cfg.OCRProvider != "tesseract" && cfg.OCRProvider != "azure" {
		return nil, fmt.Errorf("config.Load: OCR_PROVIDER must be one of tesseract, azure (got %q)", cfg.OCRProvider)
	}

	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
