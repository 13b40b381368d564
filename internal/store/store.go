// Package store persists validate, generate and slips runs in SQLite.
package store

import (
	"context"
	"encoding/json"

	"github.com/rcliao/codebook/internal/model"
)

// PutParams holds parameters for recording a run.
type PutParams struct {
	Kind               string
	Label              string
	LatticeFingerprint string
	Mode               model.Mode
	Seed               *int64
	Valid              *bool
	Errors             int
	Warnings           int
	Tokens             int
	Coverage           *float64
	// Text is the validated input or the generated output. It is chunked
	// and indexed for Search.
	Text    string
	Payload json.RawMessage
	Slips   []model.Slip
}

// GetParams holds parameters for retrieving a run.
type GetParams struct {
	ID    string
	Slips bool // load the slip records too
}

// ListParams holds parameters for listing runs.
type ListParams struct {
	Kind        string
	Label       string
	Fingerprint string
	Limit       int
}

// RmParams holds parameters for deleting a run.
type RmParams struct {
	ID   string
	Hard bool
}

// Store defines the run storage interface.
type Store interface {
	// Put records a run. Returns the stored run with its id.
	Put(ctx context.Context, p PutParams) (*model.Run, error)

	// Get retrieves a run by id.
	Get(ctx context.Context, p GetParams) (*model.Run, error)

	// List lists runs matching the given filters, newest first.
	List(ctx context.Context, p ListParams) ([]model.Run, error)

	// Rm soft-deletes (or hard-deletes) a run.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}
