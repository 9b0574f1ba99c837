package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"contact-form-backend/internal/delivery/http/response"
	"contact-form-backend/internal/domain"
	"contact-form-backend/pkg/apperror"
	"contact-form-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached to the context. Server-side
// failures all produce the same generic 500 body; their cause and pipeline
// stage are only logged.
func ErrorHandler(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.Internal(domain.MsgSubmitFailed, err)
		}

		if appErr.Code >= http.StatusInternalServerError {
			logFailure(c, appErr.Err)
			c.Header("Access-Control-Allow-Origin", allowedOrigin)
		}

		if appErr.Plain {
			response.Text(c, appErr.Code, appErr.Message)
			return
		}
		response.Error(c, appErr.Code, appErr.Message)
	}
}

func logFailure(c *gin.Context, err error) {
	stage := "unknown"
	var stageErr *domain.StageError
	if errors.As(err, &stageErr) {
		stage = string(stageErr.Stage)
	}

	errMsg := "<nil>"
	if err != nil {
		errMsg = err.Error()
	}

	logger.Log.ErrorContext(c.Request.Context(), "Contact form error",
		"stage", stage,
		"error", errMsg,
		"request_id", c.GetString(RequestIDKey),
		"path", c.Request.URL.Path,
	)
}

// Recovery turns a panic anywhere in the chain into the generic 500.
func Recovery(allowedOrigin string) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logFailure(c, fmt.Errorf("panic: %v", recovered))
		c.Header("Access-Control-Allow-Origin", allowedOrigin)
		response.Error(c, http.StatusInternalServerError, domain.MsgSubmitFailed)
		c.Abort()
	})
}
