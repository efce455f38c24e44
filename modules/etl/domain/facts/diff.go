package facts

import (
	"fmt"
)

// Keyed is a fact row exposing its natural key.
type Keyed[K comparable] interface {
	Key() K
}

// NewRows returns the candidate rows whose natural key is not yet
// persisted, preserving candidate order. Existing rows are never
// touched: a candidate whose key is already persisted is dropped even
// when its measures differ (append-only, no upsert). A duplicate key
// inside the candidate batch itself fails the run instead of silently
// picking one row.
func NewRows[K comparable, T Keyed[K]](candidates []T, persisted map[K]struct{}) ([]T, error) {
	seen := make(map[K]struct{}, len(candidates))
	out := make([]T, 0, len(candidates))

	for _, row := range candidates {
		key := row.Key()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate natural key in candidate batch: %v", key)
		}
		seen[key] = struct{}{}

		if _, exists := persisted[key]; exists {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
