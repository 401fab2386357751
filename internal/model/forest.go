package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Forest is an ordered collection of story roots.
//
// On disk a forest with exactly one root is written as a bare object and any
// other forest as an array. DecodeForest accepts both shapes.
type Forest []*Node

// DecodeForest reads a story file from r.
// Any decoding problem is reported as ErrMalformedForest.
func DecodeForest(r io.Reader) (Forest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedForest)
	}

	switch trimmed[0] {
	case '{':
		var root Node
		if err := json.Unmarshal(trimmed, &root); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedForest, err)
		}
		return Forest{&root}, nil
	case '[':
		var roots []*Node
		if err := json.Unmarshal(trimmed, &roots); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedForest, err)
		}
		for i, root := range roots {
			if root == nil {
				return nil, fmt.Errorf("%w: story %d is null", ErrMalformedForest, i)
			}
		}
		return Forest(roots), nil
	default:
		return nil, fmt.Errorf("%w: expected an object or an array", ErrMalformedForest)
	}
}

// LoadForest reads a story file from disk.
func LoadForest(path string) (Forest, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided story file path is intentional
	if err != nil {
		return nil, err
	}
	defer f.Close()

	forest, err := DecodeForest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return forest, nil
}

// Encode writes the forest as indented JSON: a single object when the forest
// holds exactly one root, an array otherwise.
func (f Forest) Encode(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if len(f) == 1 {
		return encoder.Encode(f[0])
	}
	if f == nil {
		return encoder.Encode([]*Node{})
	}
	return encoder.Encode([]*Node(f))
}

// Save writes the forest to path, creating parent directories as needed.
func (f Forest) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644) //nolint:gosec // Story files are meant to be shared
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := f.Encode(out); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}

// CanonicalID returns a story id in plain decimal form, so that "07" and
// " 7" name story 7. Ids that are not decimal numbers are only trimmed.
func CanonicalID(id string) string {
	id = strings.TrimSpace(id)
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return id
	}
	return strconv.FormatUint(n, 10)
}

// Find returns the root with the given story id, or nil.
func (f Forest) Find(id string) *Node {
	id = CanonicalID(id)
	for _, root := range f {
		if CanonicalID(root.ID) == id {
			return root
		}
	}
	return nil
}

// Has reports whether a root with the given story id exists.
func (f Forest) Has(id string) bool {
	id = CanonicalID(id)
	return id != "" && f.Find(id) != nil
}

// IDs returns the story ids of all roots that carry one, in order.
func (f Forest) IDs() []string {
	ids := make([]string, 0, len(f))
	for _, root := range f {
		if root.ID != "" {
			ids = append(ids, root.ID)
		}
	}
	return ids
}

// Without returns the roots whose id is not in ids.
func (f Forest) Without(ids []string) Forest {
	skip := make(map[string]bool, len(ids))
	for _, id := range ids {
		skip[CanonicalID(id)] = true
	}
	kept := make(Forest, 0, len(f))
	for _, root := range f {
		if !skip[CanonicalID(root.ID)] {
			kept = append(kept, root)
		}
	}
	return kept
}
