package iostore

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/pmpulse/schema"
	"gopkg.in/yaml.v3"
)

// LoadDataset reads a YAML dataset file.
func LoadDataset(path string) (schema.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.Dataset{}, fmt.Errorf("failed to open dataset %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return DecodeDataset(f)
}

// DecodeDataset parses a YAML dataset. Unknown keys are rejected.
func DecodeDataset(r io.Reader) (schema.Dataset, error) {
	var data schema.Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil && err != io.EOF {
		return schema.Dataset{}, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return data, nil
}

// EncodeDataset writes a dataset as YAML.
func EncodeDataset(w io.Writer, data schema.Dataset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return enc.Close()
}

// NewYAMLStore loads a dataset file into a read-only memory store.
func NewYAMLStore(path string) (*MemoryStore, error) {
	data, err := LoadDataset(path)
	if err != nil {
		return nil, err
	}
	store := NewMemoryStore(data)
	store.source = string(schema.YAMLBackend)
	return store, nil
}
