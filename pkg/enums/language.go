package enums

import (
	"fmt"
	"strings"
)

// Language is a supported response language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// DefaultLanguage is used when the request expresses no usable preference.
const DefaultLanguage = LanguageEnglish

var validLanguages = []Language{
	LanguageEnglish,
	LanguageArabic,
}

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}

// IsValid reports whether the value is a supported Language.
func (l Language) IsValid() bool {
	for _, candidate := range validLanguages {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLanguage converts raw input into a Language, ignoring case.
func ParseLanguage(value string) (Language, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validLanguages {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid language %q", value)
}
