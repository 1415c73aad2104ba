package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyBindings is returned for a binding file without a document.
var ErrEmptyBindings = errors.New("binding file is empty")

// LoadFile reads and parses the binding file at path.
func LoadFile(path string) (*BindingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read binding file %s: %w", path, err)
	}

	bf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return bf, nil
}

// Parse decodes a YAML binding file. Unknown keys are rejected so that a
// misspelled option is not silently dropped.
func Parse(data []byte) (*BindingFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var bf BindingFile
	if err := dec.Decode(&bf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyBindings
		}

		return nil, fmt.Errorf("failed to parse binding YAML: %w", err)
	}

	if bf.Version == "" {
		bf.Version = "1"
	}

	if bf.Namespaces == nil {
		bf.Namespaces = map[string]string{}
	}

	return &bf, nil
}

// Marshal encodes bf as YAML with two-space indentation.
func Marshal(bf *BindingFile) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(bf); err != nil {
		return nil, fmt.Errorf("failed to encode bindings: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode bindings: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteFile writes bf to path.
func WriteFile(bf *BindingFile, path string) error {
	data, err := Marshal(bf)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write binding file %s: %w", path, err)
	}

	return nil
}
