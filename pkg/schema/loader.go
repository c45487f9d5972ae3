package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Title  string            `json:"title" yaml:"title"`
	Fields []FieldDescriptor `json:"fields" yaml:"fields"`
}

// Load parses a JSON or YAML field catalog.
func Load(doc Document) (*Schema, error) {
	raw := doc.Raw()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("schema: catalog %s is empty", doc.Location())
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		file = catalogFile{}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("schema: parse %s: invalid JSON or YAML", doc.Location())
		}
	}

	s, err := New(file.Fields, WithTitle(file.Title))
	if err != nil {
		return nil, fmt.Errorf("schema: catalog %s: %w", doc.Location(), err)
	}
	return s, nil
}

// LoadFile reads and parses a catalog from disk.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	doc, err := NewDocument(SourceFromFile(path), data)
	if err != nil {
		return nil, err
	}
	return Load(doc)
}

// LoadFS reads and parses a catalog stored in fsys.
func LoadFS(fsys fs.FS, name string) (*Schema, error) {
	if fsys == nil {
		return nil, fmt.Errorf("schema: filesystem is required to load %s", name)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", name, err)
	}
	doc, err := NewDocument(SourceFromFS(name), data)
	if err != nil {
		return nil, err
	}
	return Load(doc)
}
