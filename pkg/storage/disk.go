package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded files and maps them to public URLs.
type Store interface {
	Save(ctx context.Context, dir, entityID, ext string, data []byte) (string, error)
	Delete(ctx context.Context, relativePath string) error
	URL(relativePath string) string
}

// DiskStore writes files beneath a root directory that is served statically
// under publicPath.
type DiskStore struct {
	root       string
	publicPath string
}

var _ Store = (*DiskStore)(nil)

// NewDiskStore ensures root exists and returns a store rooted there.
func NewDiskStore(root, publicPath string) (*DiskStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("upload root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload root %q: %w", root, err)
	}
	if publicPath == "" {
		publicPath = "/uploads"
	}
	return &DiskStore{
		root:       root,
		publicPath: "/" + strings.Trim(publicPath, "/"),
	}, nil
}

// Root returns the directory files are written beneath.
func (s *DiskStore) Root() string {
	return s.root
}

// PublicPath returns the URL prefix files are served under.
func (s *DiskStore) PublicPath() string {
	return s.publicPath
}

// Save writes data to <root>/<dir>/<entityID>/<uuid><ext> and returns the
// slash-separated path relative to root.
func (s *DiskStore) Save(ctx context.Context, dir, entityID, ext string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkSegment(dir); err != nil {
		return "", fmt.Errorf("dir: %w", err)
	}
	if err := checkSegment(entityID); err != nil {
		return "", fmt.Errorf("entity id: %w", err)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	relative := path.Join(dir, entityID, uuid.NewString()+strings.ToLower(ext))
	full := filepath.Join(s.root, filepath.FromSlash(relative))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return relative, nil
}

// Delete removes a previously saved file. Missing files are not an error.
func (s *DiskStore) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := path.Clean("/" + relativePath)
	full := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

// URL maps a relative path returned by Save to its public URL.
func (s *DiskStore) URL(relativePath string) string {
	return s.publicPath + "/" + strings.TrimPrefix(relativePath, "/")
}

// RelativeFromURL reverses URL; ok is false for URLs outside the public path.
func (s *DiskStore) RelativeFromURL(url string) (string, bool) {
	prefix := s.publicPath + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func checkSegment(value string) error {
	if value == "" {
		return errors.New("must not be empty")
	}
	if value == "." || value == ".." || strings.ContainsAny(value, `/\`) {
		return fmt.Errorf("invalid path segment %q", value)
	}
	return nil
}
