package adapter

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// FileSystem defines an interface for file system operations to enable mocking
//
//go:generate mockgen -source=filesystem.go -destination=../mocks/filesystem.go -package=mocks -mock_names=FileSystem=MockFileSystem,File=MockFile
type FileSystem interface {
	// MkdirAll creates a directory and any missing parents
	MkdirAll(path string, perm os.FileMode) error

	// CreateTemp creates a new temporary file in dir
	CreateTemp(dir, pattern string) (File, error)

	// OpenAppend opens the named file for appending, creating it if needed
	OpenAppend(name string) (File, error)

	// ReadFile reads the named file
	ReadFile(name string) ([]byte, error)

	// WriteFile writes data to the named file
	WriteFile(name string, data []byte, perm os.FileMode) error

	// Rename atomically replaces newpath with oldpath
	Rename(oldpath, newpath string) error

	// Remove removes the named file or directory
	Remove(name string) error

	// SyncDir flushes directory metadata so a preceding rename is durable
	SyncDir(dir string) error
}

// File defines an interface for file operations
type File interface {
	io.Writer
	io.Closer
	Sync() error
	Name() string
}

// IsNotExist reports whether err means the file does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// RealFileSystem implements FileSystem using the standard os package
type RealFileSystem struct{}

// NewFileSystem creates a new real file system
func NewFileSystem() FileSystem {
	return &RealFileSystem{}
}

func (fs *RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (fs *RealFileSystem) CreateTemp(dir, pattern string) (File, error) {
	return os.CreateTemp(dir, pattern)
}

func (fs *RealFileSystem) OpenAppend(name string) (File, error) {
	return os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec,G304
}

func (fs *RealFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec,G304
}

func (fs *RealFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (fs *RealFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (fs *RealFileSystem) Remove(name string) error {
	return os.Remove(name)
}

// SyncDir is best effort on platforms that cannot fsync a directory
func (fs *RealFileSystem) SyncDir(dir string) error {
	d, err := os.Open(dir) //nolint:gosec,G304
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}
	return nil
}
