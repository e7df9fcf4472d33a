package media

import (
	"context"
	"fmt"

	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/storage"
)

// InvalidImageMessage is returned for uploads that are not JPEG, PNG or GIF.
const InvalidImageMessage = "File must be an image (JPEG, PNG, or GIF)"

// Stored describes a persisted upload.
type Stored struct {
	URL          string
	RelativePath string
	MimeType     string
	SizeBytes    int
}

// Service validates and stores entity images.
type Service interface {
	StoreImage(ctx context.Context, kind enums.MediaKind, entityID string, data []byte) (*Stored, error)
	Remove(ctx context.Context, url string) error
}

type remover interface {
	RelativeFromURL(url string) (string, bool)
}

type service struct {
	store    storage.Store
	maxBytes int64
}

// NewService constructs the upload service over a file store.
func NewService(store storage.Store, maxBytes int64) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("file store required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	return &service{store: store, maxBytes: maxBytes}, nil
}

func (s *service) StoreImage(ctx context.Context, kind enums.MediaKind, entityID string, data []byte) (*Stored, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown media kind %q", kind))
	}
	if int64(len(data)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	mime, ext, err := sniffMimeType(data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, InvalidImageMessage)
	}
	if !isAllowedMime(kind, mime) {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, InvalidImageMessage).
			WithDetails(map[string]any{"detected_type": mime})
	}

	rel, err := s.store.Save(ctx, kind.String(), entityID, ext, data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store upload")
	}

	return &Stored{
		URL:          s.store.URL(rel),
		RelativePath: rel,
		MimeType:     mime,
		SizeBytes:    len(data),
	}, nil
}

// Remove deletes a previously stored image by its public URL. URLs that the
// store does not own are ignored.
func (s *service) Remove(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	r, ok := s.store.(remover)
	if !ok {
		return nil
	}
	rel, ok := r.RelativeFromURL(url)
	if !ok {
		return nil
	}
	if err := s.store.Delete(ctx, rel); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove upload")
	}
	return nil
}
