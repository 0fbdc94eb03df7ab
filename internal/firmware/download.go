package firmware

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DownloadName is the local file name for a stored filename: everything after
// the last '/'.
func DownloadName(filename string) string {
	return filename[strings.LastIndex(filename, "/")+1:]
}

// Download fetches fw's content from store and saves it in dir. It returns
// the written path. The fetched content is always closed.
func Download(ctx context.Context, store Store, fw Firmware, dir string) (string, error) {
	name := DownloadName(fw.Filename)
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("download firmware %s: empty file name", fw.ID)
	}

	rc, err := store.Fetch(ctx, fw.Filename)
	if err != nil {
		return "", fmt.Errorf("download firmware %s: %w", fw.ID, err)
	}
	defer rc.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("download firmware %s: %w", fw.ID, err)
	}

	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("download firmware %s: %w", fw.ID, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("download firmware %s: %w", fw.ID, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("download firmware %s: %w", fw.ID, err)
	}

	return dst, nil
}
