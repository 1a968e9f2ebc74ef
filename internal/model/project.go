// Package model defines the persisted entities of the ingestion pipeline:
// projects, documents, chunks and processing log rows.
package model

import "encoding/json"

// Project is a stable grouping of documents discovered from the upstream
// metadata API. Created lazily on first sighting and never mutated by the
// pipeline afterward.
type Project struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}
