// file: internal/catalog/store.go
// version: 1.0.0
// guid: 6a2d8c41-3b7e-4f95-9e06-d14c5b8a7f23

package catalog

import (
	"errors"
	"fmt"
)

// Store type identifiers accepted by Open.
const (
	StoreTypeFile   = "file"
	StoreTypePebble = "pebble"
)

// ErrUnknownStoreType is returned by Open for an unsupported store type.
var ErrUnknownStoreType = errors.New("unknown catalog store type")

// Store persists a qualification catalog.
type Store interface {
	Load() (*Catalog, error)
	Save(c *Catalog) error
	Close() error
	// Location describes where the catalog lives, for logs.
	Location() string
}

// Open creates the store for storeType. For "file" the path is the catalog
// file; for "pebble" it is the database directory.
func Open(storeType, path string) (Store, error) {
	switch storeType {
	case "", StoreTypeFile:
		return NewFileStore(path), nil
	case StoreTypePebble:
		return NewPebbleStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStoreType, storeType)
	}
}
