// Package storage defines the wiki folder file-system abstraction.
package storage

import "github.com/starford/wikishell/internal/models"

// Provider is the interface for wiki folder file operations.
// All paths are relative to the wiki root and use forward slashes.
type Provider interface {
	// Root returns the absolute path of the wiki folder.
	Root() string
	// List returns metadata for every page under dir.
	List(dir string) ([]models.PageMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
