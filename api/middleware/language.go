package middleware

import (
	"net/http"

	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
)

// Language resolves the response language from the lang query parameter or
// the Accept-Language header and stores it on the request context.
func Language(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := i18n.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
			ctx := WithLanguage(r.Context(), lang)
			if logg != nil {
				ctx = logg.WithField(ctx, "lang", string(lang))
			}
			w.Header().Set("Content-Language", string(lang))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
