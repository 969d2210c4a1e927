package configstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const tmpSuffix = ".tmp"

// writeFile replaces path with data. The content is written to path+".tmp",
// fsynced and renamed over path, so readers see either the old or the new file.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	tmpPath := path + tmpSuffix
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return &tempFileError{path: tmpPath, err: fmt.Errorf("write temp file: %w", err)}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &tempFileError{path: tmpPath, err: fmt.Errorf("sync temp file: %w", err)}
	}
	if err := f.Close(); err != nil {
		return &tempFileError{path: tmpPath, err: fmt.Errorf("close temp file: %w", err)}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &tempFileError{path: tmpPath, err: fmt.Errorf("replace cache file: %w", err)}
	}
	return nil
}

// tempFileError marks a failure that left a temp file behind.
type tempFileError struct {
	path string
	err  error
}

func (e *tempFileError) Error() string { return e.err.Error() }
func (e *tempFileError) Unwrap() error { return e.err }

// removeFile deletes path; a missing file is not an error.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
