package media

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
)

type mimeGroup string

const (
	mimeGroupImages mimeGroup = "images"
)

var mimeGroupTypes = map[mimeGroup][]string{
	mimeGroupImages: {"image/jpeg", "image/png", "image/gif"},
}

var allowedMimeGroupsByKind = map[enums.MediaKind][]mimeGroup{
	enums.MediaKindPlantPhoto:     {mimeGroupImages},
	enums.MediaKindProductImage:   {mimeGroupImages},
	enums.MediaKindDiagnosisImage: {mimeGroupImages},
}

var mimeTypesByKind = buildMimeTypesByKind()

func buildMimeTypesByKind() map[enums.MediaKind][]string {
	result := make(map[enums.MediaKind][]string, len(allowedMimeGroupsByKind))
	for kind, groups := range allowedMimeGroupsByKind {
		set := make(map[string]struct{})
		for _, group := range groups {
			for _, value := range mimeGroupTypes[group] {
				set[value] = struct{}{}
			}
		}
		list := make([]string, 0, len(set))
		for value := range set {
			list = append(list, value)
		}
		sort.Strings(list)
		result[kind] = list
	}
	return result
}

// sniffMimeType detects the content type from the file's magic bytes; the
// client-declared type is never trusted.
func sniffMimeType(data []byte) (mime string, ext string, err error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("file is empty")
	}
	detected := mimetype.Detect(data)
	mime = strings.ToLower(detected.String())
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime, detected.Extension(), nil
}

func isAllowedMime(kind enums.MediaKind, mime string) bool {
	for _, candidate := range mimeTypesByKind[kind] {
		if candidate == mime {
			return true
		}
	}
	return false
}
