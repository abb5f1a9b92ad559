package model

import (
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
)

// Load maps the artifact at path read-only and decodes it
func Load(path string) (*Network, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to map model file: %w", err)
	}
	defer r.Close()

	n, err := Decode(io.NewSectionReader(r, 0, int64(r.Len())), int64(r.Len()))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return n, nil
}
