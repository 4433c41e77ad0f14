// Package output writes the combined marker document to disk.
package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/types"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o644
)

// ErrWrite is returned when the document cannot be written.
var ErrWrite = errors.New("write marker document failed")

// Encode returns the JSON form of the document.
func Encode(doc types.Document) ([]byte, error) {
	data, err := sonic.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrWrite, err)
	}
	return data, nil
}

// WriteFile encodes doc and writes it to path, creating parent directories.
// The file is written to a temporary sibling first and renamed into place.
func WriteFile(ctx context.Context, path string, doc types.Document) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	data, err := Encode(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("%w: create directory: %w", ErrWrite, err)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: create file: %w", ErrWrite, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Chmod(tmp.Name(), filePermission); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
