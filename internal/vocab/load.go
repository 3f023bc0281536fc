package vocab

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFile reads vocabulary tables from YAML. Sections missing from the file
// keep their built-in defaults.
func LoadFile(path string) (*Registry, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	tables, err := ParseTables(blob)
	if err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	return New(tables)
}

func ParseTables(blob []byte) (Tables, error) {
	var file Tables
	dec := yaml.NewDecoder(bytes.NewReader(blob))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Tables{}, err
	}

	t := Default()
	if file.Labels != nil {
		t.Labels = file.Labels
	}
	if file.Units != nil {
		t.Units = file.Units
	}
	if file.DiameterUnits != nil {
		t.DiameterUnits = file.DiameterUnits
	}
	if file.WireTypes != nil {
		t.WireTypes = file.WireTypes
	}
	if file.Keywords != nil {
		t.Keywords = file.Keywords
	}
	if file.Colors != nil {
		t.Colors = file.Colors
	}
	if file.ColorModifiers != nil {
		t.ColorModifiers = file.ColorModifiers
	}
	return t, nil
}

func WriteFile(t Tables, path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
