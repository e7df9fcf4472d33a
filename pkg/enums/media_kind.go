package enums

import "fmt"

// MediaKind defines which entity an uploaded image belongs to. The value
// doubles as the storage directory under the upload root.
type MediaKind string

const (
	MediaKindPlantPhoto     MediaKind = "plants"
	MediaKindProductImage   MediaKind = "products"
	MediaKindDiagnosisImage MediaKind = "diagnoses"
)

var validMediaKinds = []MediaKind{
	MediaKindPlantPhoto,
	MediaKindProductImage,
	MediaKindDiagnosisImage,
}

// String returns the literal string for the kind.
func (m MediaKind) String() string {
	return string(m)
}

// IsValid reports whether the kind is known.
func (m MediaKind) IsValid() bool {
	for _, candidate := range validMediaKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaKind converts raw input into a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	for _, candidate := range validMediaKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media kind %q", value)
}
