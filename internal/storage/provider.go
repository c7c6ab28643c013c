// Package storage defines the file-system abstraction over the content
// directory and the cache snapshot.
package storage

import "time"

// FileInfo describes one content file.
type FileInfo struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for content file operations. Paths are relative
// to the provider root.
type Provider interface {
	// List returns metadata for every file under dir whose name ends in ext.
	List(dir, ext string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Root returns the absolute root directory.
	Root() string
}
