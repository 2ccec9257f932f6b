// file: internal/catalog/pebble_store.go
// version: 1.0.0
// guid: 1e9c5b72-4f08-4a3d-b6e1-8d2a7c0f5394

package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble/v2"

	"github.com/jdfalk/qualification-planner/internal/models"
)

// PebbleStore keeps the catalog in PebbleDB.
//
// Key Schema:
// - qualification:<position>  -> Qualification JSON, position zero-padded
//
// Saves replace the whole key range in one batch so readers never see a
// partially written catalog.
type PebbleStore struct {
	db   *pebble.DB
	path string
}

const (
	qualificationPrefix = "qualification:"
	// ';' sorts right after ':' and bounds the prefix range.
	qualificationUpper = "qualification;"
)

// NewPebbleStore opens or creates the database at path.
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}
	return &PebbleStore{db: db, path: path}, nil
}

// Location implements Store.
func (p *PebbleStore) Location() string { return "pebble:" + p.path }

// Close closes the database
func (p *PebbleStore) Close() error {
	return p.db.Close()
}

func qualificationKey(pos int) []byte {
	return []byte(fmt.Sprintf("%s%08d", qualificationPrefix, pos))
}

// Load reads every entry in position order.
func (p *PebbleStore) Load() (*Catalog, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(qualificationPrefix),
		UpperBound: []byte(qualificationUpper),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var quals []models.Qualification
	for iter.First(); iter.Valid(); iter.Next() {
		value, err := iter.ValueAndErr()
		if err != nil {
			return nil, err
		}
		var q models.Qualification
		if err := json.Unmarshal(value, &q); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", iter.Key(), err)
		}
		quals = append(quals, q)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return New(quals), nil
}

// Save replaces the stored catalog.
func (p *PebbleStore) Save(c *Catalog) error {
	batch := p.db.NewBatch()
	defer batch.Close()

	if err := batch.DeleteRange([]byte(qualificationPrefix), []byte(qualificationUpper), nil); err != nil {
		return err
	}
	for i, q := range c.All() {
		data, err := json.Marshal(q)
		if err != nil {
			return err
		}
		if err := batch.Set(qualificationKey(i), data, nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}
