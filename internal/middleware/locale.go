package middleware

import (
	"traveldesk/internal/i18n"

	"github.com/gin-gonic/gin"
)

// Locale stores the negotiated locale in the request context. A "lang"
// query parameter overrides Accept-Language.
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Accept-Language")
		if lang := c.Query("lang"); lang != "" {
			header = lang
		}
		locale := i18n.Match(header)
		c.Request = c.Request.WithContext(i18n.WithLocale(c.Request.Context(), locale))
		c.Header("Content-Language", locale)
		c.Next()
	}
}
