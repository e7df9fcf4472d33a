package validators

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
)

// UploadField is the multipart field carrying uploaded images.
const UploadField = "file"

// ReadUpload reads the multipart file field into memory, bounded by maxBytes.
// Type checks happen in the media service.
func ReadUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.New(pkgerrors.CodeBadRequest, fmt.Sprintf("file exceeds %d bytes", maxBytes))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, "invalid multipart form")
	}
	file, _, err := r.FormFile(UploadField)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{UploadField: "is required"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, "read upload")
	}
	if int64(len(data)) > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, fmt.Sprintf("file exceeds %d bytes", maxBytes))
	}
	return data, nil
}
