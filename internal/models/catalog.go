// Package models manages the whisper model catalog on local disk: download,
// integrity verification, listing, and deletion.
package models

import (
	"fmt"
	"sort"
	"strings"
)

// Spec describes one catalog entry.
type Spec struct {
	ID          string
	FileName    string
	Size        int64 // approximate download size in bytes
	Description string
}

// The catalog mirrors the ggml conversions published for whisper.cpp.
// Sizes are approximate and used for disk preflight and progress totals;
// integrity checks use the server-reported length.
var catalog = []Spec{
	{ID: "tiny", FileName: "ggml-tiny.bin", Size: 75_000_000, Description: "Fastest, lowest quality"},
	{ID: "base", FileName: "ggml-base.bin", Size: 142_000_000, Description: "Good speed/quality balance"},
	{ID: "small", FileName: "ggml-small.bin", Size: 466_000_000, Description: "Good quality, moderate speed"},
	{ID: "medium", FileName: "ggml-medium.bin", Size: 1_500_000_000, Description: "High quality, slower"},
	{ID: "large", FileName: "ggml-large.bin", Size: 2_900_000_000, Description: "Best quality, slowest"},
	{ID: "large-v3-turbo", FileName: "ggml-large-v3-turbo.bin", Size: 809_000_000, Description: "Near-large quality, much faster"},
}

// Catalog returns all known model specs in preference order.
func Catalog() []Spec {
	out := make([]Spec, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup resolves a model id to its spec.
func Lookup(id string) (Spec, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, spec := range catalog {
		if spec.ID == id {
			return spec, nil
		}
	}
	return Spec{}, fmt.Errorf("unknown model %q (known: %s)", id, strings.Join(IDs(), ", "))
}

// IDs returns the known model ids in catalog order.
func IDs() []string {
	ids := make([]string, 0, len(catalog))
	for _, spec := range catalog {
		ids = append(ids, spec.ID)
	}
	return ids
}

// sortSpecs orders specs by catalog position for stable listings.
func sortSpecs(specs []Spec) {
	index := make(map[string]int, len(catalog))
	for i, spec := range catalog {
		index[spec.ID] = i
	}
	sort.Slice(specs, func(a, b int) bool {
		return index[specs[a].ID] < index[specs[b].ID]
	})
}
