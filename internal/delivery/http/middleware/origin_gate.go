package middleware

import (
	"strings"

	"contact-form-backend/internal/domain"
	"contact-form-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// OriginGate rejects requests that do not come from the site hosting the
// contact form. A request passes when its Origin equals allowedOrigin or
// its Referer starts with allowedReferer; everything else gets a plain
// 403, whatever the method or body.
//
// Both headers are caller-controlled, so this only keeps browsers on other
// sites from using the endpoint. It is not authentication.
func OriginGate(allowedOrigin, allowedReferer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !originAllowed(c.GetHeader("Origin"), c.GetHeader("Referer"), allowedOrigin, allowedReferer) {
			c.Error(apperror.Forbidden(domain.MsgForbidden))
			c.Abort()
			return
		}
		c.Next()
	}
}

func originAllowed(origin, referer, allowedOrigin, allowedReferer string) bool {
	if origin != "" && origin == allowedOrigin {
		return true
	}
	return referer != "" && allowedReferer != "" && strings.HasPrefix(referer, allowedReferer)
}
