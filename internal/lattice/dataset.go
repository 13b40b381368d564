package lattice

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// WindowSpec is one window as it appears in the external dataset.
type WindowSpec struct {
	ID               int      `json:"id"`
	CorrectionOffset int      `json:"correction_offset"`
	Vocabulary       []string `json:"vocabulary"`
}

// Dataset is the JSON document produced by the batch tooling. Transitions
// map a raw vocabulary token to its encoded raw next window.
type Dataset struct {
	WindowCount int            `json:"window_count,omitempty"`
	HubWindow   *int           `json:"hub_window,omitempty"`
	Windows     []WindowSpec   `json:"windows"`
	Transitions map[string]int `json:"transitions"`
}

// Load decodes a dataset from r and builds a model from it. Unknown JSON
// fields are rejected.
func Load(r io.Reader) (*Model, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, &LoadError{Window: -1, Message: fmt.Sprintf("decode: %v", err), Err: ErrMalformed}
	}
	return New(ds)
}

// LoadFile loads a dataset from path. Files ending in .xz are decompressed
// on the fly.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lattice: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz lattice: %w", err)
		}
		r = xr
	}
	return Load(r)
}
