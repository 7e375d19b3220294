package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DiskService keeps files under a local directory. References are the
// slash-separated key relative to Root; URLs are BaseURL + key.
type DiskService struct {
	Root    string
	BaseURL string
}

func NewDiskService(root, baseURL string) *DiskService {
	return &DiskService{Root: root, BaseURL: strings.TrimSuffix(baseURL, "/")}
}

func (d *DiskService) Put(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	clean, err := d.cleanKey(key)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(d.Root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", clean, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", clean, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", clean, err)
	}
	return clean, nil
}

func (d *DiskService) Delete(_ context.Context, ref string) error {
	clean, err := d.cleanKey(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(d.Root, filepath.FromSlash(clean))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", clean, err)
	}
	return nil
}

func (d *DiskService) URL(_ context.Context, ref string, _ time.Duration) (string, error) {
	clean, err := d.cleanKey(ref)
	if err != nil {
		return "", err
	}
	return d.BaseURL + "/" + (&url.URL{Path: clean}).EscapedPath(), nil
}

func (d *DiskService) cleanKey(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(key))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("object key is required")
	}
	return clean, nil
}

var _ Service = (*DiskService)(nil)
