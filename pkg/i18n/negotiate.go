package i18n

import (
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"golang.org/x/text/language"
)

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Arabic,
})

// Negotiate resolves an explicit lang parameter or an Accept-Language header
// value to a supported language. The explicit value wins when valid.
func Negotiate(explicit, acceptLanguage string) enums.Language {
	if explicit != "" {
		if lang, err := enums.ParseLanguage(explicit); err == nil {
			return lang
		}
	}
	if acceptLanguage == "" {
		return enums.DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return enums.DefaultLanguage
	}

	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return enums.DefaultLanguage
	}
	if index == 1 {
		return enums.LanguageArabic
	}
	return enums.LanguageEnglish
}
