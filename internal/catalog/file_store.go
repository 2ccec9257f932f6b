// file: internal/catalog/file_store.go
// version: 1.0.0
// guid: c84e1a07-5d29-4b63-8f1a-2e7b90d4c6a5

package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/jdfalk/qualification-planner/internal/models"
)

// ErrInvalidCatalog is returned when a catalog file does not match the schema.
var ErrInvalidCatalog = errors.New("invalid catalog file")

// catalogSchema checks the structure of a JSON catalog. Semantic problems
// such as duplicate names are reported by Lint instead.
const catalogSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "require_all_types", "types", "total_count"],
    "properties": {
      "name": {"type": "string"},
      "require_all_types": {"type": "boolean"},
      "types": {"type": "array", "items": {"type": "string"}},
      "total_count": {"type": "integer"}
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(catalogSchema)

// FileStore keeps the catalog in a single JSON or YAML file. The format
// follows the extension; anything other than .yaml/.yml is JSON.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the catalog file path.
func (s *FileStore) Path() string { return s.path }

// Location implements Store.
func (s *FileStore) Location() string { return "file:" + s.path }

// Close implements Store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads and validates the catalog file.
func (s *FileStore) Load() (*Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var quals []models.Qualification
	if s.isYAML() {
		quals, err = decodeYAML(data)
	} else {
		quals, err = DecodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return New(quals), nil
}

// Save writes the catalog atomically via a temp file and rename.
func (s *FileStore) Save(c *Catalog) error {
	var (
		data []byte
		err  error
	)
	if s.isYAML() {
		data, err = yaml.Marshal(c.All())
	} else {
		data, err = EncodeJSON(c.All())
	}
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}

// DecodeJSON validates data against the catalog schema and decodes it.
func DecodeJSON(data []byte) ([]models.Qualification, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(msgs, "; "))
	}

	var quals []models.Qualification
	if err := json.Unmarshal(data, &quals); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return quals, nil
}

// EncodeJSON writes the catalog as indented JSON with CJK text left unescaped.
func EncodeJSON(quals []models.Qualification) ([]byte, error) {
	if quals == nil {
		quals = []models.Qualification{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(quals); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeYAML(data []byte) ([]models.Qualification, error) {
	var quals []models.Qualification
	if err := yaml.Unmarshal(data, &quals); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return quals, nil
}
