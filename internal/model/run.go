package model

import (
	"encoding/json"
	"time"
)

// Run is one persisted validate, generate or slips invocation.
type Run struct {
	ID                 string          `json:"id"`
	Kind               string          `json:"kind"`
	Label              string          `json:"label,omitempty"`
	LatticeFingerprint string          `json:"lattice_fingerprint,omitempty"`
	Mode               Mode            `json:"mode,omitempty"`
	Seed               *int64          `json:"seed,omitempty"`
	Valid              *bool           `json:"valid,omitempty"`
	Errors             int             `json:"errors"`
	Warnings           int             `json:"warnings"`
	Tokens             int             `json:"tokens"`
	Coverage           *float64        `json:"coverage,omitempty"`
	SlipCount          int             `json:"slip_count"`
	Text               string          `json:"text,omitempty"`
	Payload            json.RawMessage `json:"payload,omitempty"`
	Slips              []Slip          `json:"slips,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	DeletedAt          *time.Time      `json:"deleted_at,omitempty"`
	ChunkCount         int             `json:"chunks,omitempty"`
}

// Chunk is a page-aligned slice of a run's text, indexed for search.
type Chunk struct {
	ID        string `json:"id"`
	RunID     string `json:"run_id"`
	Seq       int    `json:"seq"`
	Text      string `json:"text"`
	Folio     string `json:"folio,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}

// Run kinds.
const (
	KindValidate = "validate"
	KindGenerate = "generate"
	KindSlips    = "slips"
)

// ValidKinds are the allowed run kinds.
var ValidKinds = map[string]bool{
	KindValidate: true,
	KindGenerate: true,
	KindSlips:    true,
}
