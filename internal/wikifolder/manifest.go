// Package wikifolder detects and bootstraps wiki folders. A folder is
// initialized once its manifest file exists.
package wikifolder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/wikishell/internal/storage"
)

// ManifestFile is the well-known file marking a bootstrapped wiki folder.
const ManifestFile = "wiki.yaml"

// Manifest describes a wiki folder.
type Manifest struct {
	Name          string    `yaml:"name"`
	Template      string    `yaml:"template"`
	Created       time.Time `yaml:"created"`
	EngineVersion string    `yaml:"engine_version"`
}

// Validate implements validation.Validatable.
func (m Manifest) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.Template, validation.Required, validation.In(templateNames()...)),
		validation.Field(&m.Created, validation.Required),
	)
}

// IsInitialized reports whether folder contains the manifest file.
// A missing folder is not initialized; a path that is not a directory
// is an error.
func IsInitialized(folder string) (bool, error) {
	info, err := os.Stat(folder)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat wiki folder: %w", err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("wiki folder %s is not a directory", folder)
	}
	m, err := os.Stat(filepath.Join(folder, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat manifest: %w", err)
	}
	return !m.IsDir(), nil
}

// ReadManifest loads and validates the manifest of folder.
func ReadManifest(folder string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(folder, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

// WriteManifest validates m and writes it atomically into folder.
func WriteManifest(folder string, m Manifest) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return storage.WriteFileAtomic(filepath.Join(folder, ManifestFile), data)
}
