package i18n

import (
	"strings"

	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
)

// Text is a bilingual string. Embed it in a model with an embeddedPrefix to
// get <prefix>en / <prefix>ar columns.
type Text struct {
	EN string `gorm:"column:en" json:"en"`
	AR string `gorm:"column:ar" json:"ar"`
}

// NewText builds a Text from the two translations.
func NewText(en, ar string) Text {
	return Text{EN: en, AR: ar}
}

// In returns the translation for lang, falling back to English when the
// requested translation is blank.
func (t Text) In(lang enums.Language) string {
	if lang == enums.LanguageArabic && strings.TrimSpace(t.AR) != "" {
		return t.AR
	}
	return t.EN
}

// IsZero reports whether neither translation is set.
func (t Text) IsZero() bool {
	return t.EN == "" && t.AR == ""
}

// Merge overlays the non-empty translations of patch onto t.
func (t Text) Merge(patch Text) Text {
	if patch.EN != "" {
		t.EN = patch.EN
	}
	if patch.AR != "" {
		t.AR = patch.AR
	}
	return t
}

// TextList is a bilingual list such as treatment steps.
type TextList struct {
	EN []string `json:"en"`
	AR []string `json:"ar"`
}

// In returns the list for lang with the same fallback rule as Text.In.
func (l TextList) In(lang enums.Language) []string {
	if lang == enums.LanguageArabic && len(l.AR) > 0 {
		return append([]string(nil), l.AR...)
	}
	return append([]string(nil), l.EN...)
}
