// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Page is the extracted text of one PDF page. Number is 1-indexed.
type Page struct {
	Number int    `json:"page" yaml:"page"`
	Text   string `json:"text" yaml:"text"`
}

// ChunkMetadata is the provenance stored with every indexed chunk.
type ChunkMetadata struct {
	// DocID is the opaque identifier of the owning document.
	DocID string `json:"doc_id" yaml:"doc_id"`

	// DocName is the display name of the owning document.
	DocName string `json:"doc_name" yaml:"doc_name"`

	// Page is the single page number the chunk was carved from.
	Page int `json:"page" yaml:"page"`
}

// Chunk is a bounded, page-scoped span of cleaned text. A chunk never
// spans two pages.
type Chunk struct {
	ID       string        `json:"id" yaml:"id"`
	Text     string        `json:"text" yaml:"text"`
	Metadata ChunkMetadata `json:"metadata" yaml:"metadata"`
}

// Match is one raw hit returned by a similarity index. Distance is nil
// when the index does not report a score; lower is better.
type Match struct {
	Text     string
	Metadata ChunkMetadata
	Distance *float64
}

// Source is a ranked, deduplicated passage handed to generation and
// returned to callers alongside the answer.
type Source struct {
	Text     string        `json:"text" yaml:"text"`
	Snippet  string        `json:"snippet" yaml:"snippet"`
	Metadata ChunkMetadata `json:"metadata" yaml:"metadata"`
	Distance *float64      `json:"distance" yaml:"distance"`
}

// Document is a registry record for an uploaded PDF.
type Document struct {
	ID         string    `json:"doc_id" yaml:"doc_id"`
	Name       string    `json:"doc_name" yaml:"doc_name"`
	PDFPath    string    `json:"pdf_path" yaml:"pdf_path"`
	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`

	// Pages and Chunks record what ingestion produced.
	Pages  int `json:"pages" yaml:"pages"`
	Chunks int `json:"chunks" yaml:"chunks"`
}

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one message of prior conversation.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}
