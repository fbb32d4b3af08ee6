// Package filex holds filesystem helpers for staging uploaded media on local
// disk before it is handed to object storage.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyUpload is returned when there is nothing to stage.
var ErrEmptyUpload = errors.New("empty upload")

// EnsureSubdDir creates dirName (relative to the working directory unless it
// is absolute) and returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// StageUpload writes data into a new uniquely named file inside dir, keeping
// the extension of originalName, and returns the file path.
func StageUpload(dir, originalName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyUpload
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))

	f, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return f.Name(), nil
}

// Remove deletes a staged file. A file that is already gone is not an error.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
