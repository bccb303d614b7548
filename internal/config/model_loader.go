package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/mplid-predictor/internal/core/predictor"
	"github.com/charleschow/mplid-predictor/internal/core/roster"
)

// Model is the tunable part of the engine. Fields absent from the file
// keep their defaults.
type Model struct {
	Predictor predictor.Params `yaml:"predictor"`
	Roster    roster.Options   `yaml:"roster"`
}

func DefaultModel() Model {
	return Model{
		Predictor: predictor.DefaultParams(),
		Roster:    roster.DefaultOptions(),
	}
}

// LoadModel overlays the YAML file at path on DefaultModel. A missing file
// is not an error; an empty path skips the file.
func LoadModel(path string) (Model, error) {
	m := DefaultModel()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return Model{}, fmt.Errorf("read model config: %w", err)
	}

	if err := yaml.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("parse model config: %w", err)
	}
	if err := m.Predictor.Validate(); err != nil {
		return Model{}, fmt.Errorf("invalid model config %s: %w", path, err)
	}
	return m, nil
}
