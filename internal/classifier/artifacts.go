package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Artifact file names inside a model directory.
const (
	ModelFile    = "phishing_detector.json"
	FeaturesFile = "feature_names.json"
	MetadataFile = "model_metadata.json"
)

// Metadata is the optional descriptive file written next to a model.
type Metadata struct {
	Accuracy     float64  `json:"accuracy"`
	NFeatures    int      `json:"n_features"`
	FeatureNames []string `json:"feature_names"`
	ModelType    string   `json:"model_type"`
	Dataset      string   `json:"dataset,omitempty"`
	TrainedOn    string   `json:"trained_on,omitempty"`
	ExportedAt   string   `json:"exported_at,omitempty"`
}

// LoadPersisted reads a model directory. The model blob and the schema are
// required; metadata is optional and a broken metadata file is ignored.
func LoadPersisted(dir string) (*Classifier, error) {
	var model Model
	if err := readJSON(filepath.Join(dir, ModelFile), &model); err != nil {
		return nil, err
	}
	var schema []string
	if err := readJSON(filepath.Join(dir, FeaturesFile), &schema); err != nil {
		return nil, err
	}

	info := ModelInfo{Variant: VariantPersisted}
	var meta Metadata
	if err := readJSON(filepath.Join(dir, MetadataFile), &meta); err == nil {
		info.Accuracy = meta.Accuracy
		info.Provenance = meta.TrainedOn
		if info.Provenance == "" {
			info.Provenance = meta.Dataset
		}
	}

	c, err := New(&model, schema, info)
	if err != nil {
		return nil, fmt.Errorf("model in %s: %w", dir, err)
	}
	return c, nil
}

// Save writes the model, its schema and metadata to dir, creating it if
// needed. The result can be read back with LoadPersisted.
func (c *Classifier) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	meta := Metadata{
		Accuracy:     c.info.Accuracy,
		NFeatures:    len(c.schema),
		FeatureNames: c.schema,
		ModelType:    c.model.Type,
		TrainedOn:    c.info.Provenance,
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	files := []struct {
		name string
		v    any
	}{
		{ModelFile, c.model},
		{FeaturesFile, c.schema},
		{MetadataFile, meta},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.v); err != nil {
			return err
		}
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", filepath.Base(path), fs.ErrNotExist)
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
