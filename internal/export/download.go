package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Downloader delivers a finished export under the given file name.
type Downloader interface {
	Download(ctx context.Context, filename, contentType string, data []byte) error
}

// DirDownloader saves exports into a local directory, creating it when
// needed.
type DirDownloader struct {
	Dir string
}

func (d DirDownloader) Download(_ context.Context, filename, _ string, data []byte) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(d.Dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// Path returns where a file of the given name ends up.
func (d DirDownloader) Path(filename string) string {
	return filepath.Join(d.Dir, filepath.Base(filename))
}
