package refdata

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed data/wc2022.yaml
var defaultDataset []byte

// Source loads a dataset.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// FileSource reads a YAML or JSON dataset from disk. An empty Path loads the
// bundled 2022 World Cup draw.
type FileSource struct {
	Path string
}

// Load reads, parses and validates the file.
func (s FileSource) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Path == "" {
		return Default()
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(raw, filepath.Ext(s.Path))
}

// Default returns the bundled dataset.
func Default() (*Dataset, error) {
	return Parse(defaultDataset, ".yaml")
}

// Parse decodes a dataset; ext selects JSON for ".json" and YAML otherwise.
func Parse(raw []byte, ext string) (*Dataset, error) {
	var d Dataset
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("parse json dataset: %w", err)
		}
	default:
		if err := yaml.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("parse yaml dataset: %w", err)
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Encode writes d back out in the format selected by ext.
func Encode(d *Dataset, ext string) ([]byte, error) {
	if strings.ToLower(ext) == ".json" {
		return json.MarshalIndent(d, "", "  ")
	}
	return yaml.Marshal(d)
}
