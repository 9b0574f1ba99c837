package v1

import (
	"bytes"
	"errors"
	"net/http"

	"contact-form-backend/internal/delivery/http/response"
	"contact-form-backend/internal/domain"
	"contact-form-backend/pkg/apperror"
	"contact-form-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var errNullBody = errors.New("request body is null")

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler mounts the contact endpoint as the engine's NoRoute
// chain. Requests are matched on path before method, so any method token,
// including ones gin has no tree for, reaches the middlewares and then the
// 405 check. Every other unmatched path is served by fallback.
func NewContactHandler(r *gin.Engine, path string, contactUC domain.ContactUsecase, fallback http.Handler, middlewares ...gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	handlers := make([]gin.HandlerFunc, 0, len(middlewares)+2)
	handlers = append(handlers, matchPath(path, fallback))
	handlers = append(handlers, middlewares...)
	handlers = append(handlers, handler.SubmitContact)
	r.NoRoute(handlers...)
}

// matchPath lets requests for path continue down the chain and hands
// everything else to fallback.
func matchPath(path string, fallback http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == path {
			c.Next()
			return
		}
		c.Abort()
		fallback.ServeHTTP(c.Writer, c.Request)
	}
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Send a message through the contact form. Requests must come from the configured site (Origin or Referer).
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      403      {string}  string  "Forbidden"
// @Failure      405      {string}  string  "Method not allowed"
// @Failure      500      {object}  response.Response
// @Router       /contact_form_worker/ [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Error(apperror.MethodNotAllowed(domain.MsgMethodNotAllowed))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.Error(&domain.StageError{Stage: domain.StageDecode, Err: err})
		return
	}
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		c.Error(&domain.StageError{Stage: domain.StageDecode, Err: errNullBody})
		return
	}

	var req domain.ContactRequest
	if err := binding.JSON.BindBody(body, &req); err != nil {
		tag, ok := validation.FailedTag(err)
		switch {
		case !ok:
			// Unparseable bodies are not reported as client errors.
			c.Error(&domain.StageError{Stage: domain.StageDecode, Err: err})
		case tag == validation.TagContactEmail:
			c.Error(apperror.BadRequest(domain.MsgInvalidEmail))
		default:
			c.Error(apperror.BadRequest(domain.MsgMissingFields))
		}
		return
	}

	if err := h.contactUC.SendContactMessage(c.Request.Context(), &req); err != nil {
		c.Error(apperror.Internal(domain.MsgSubmitFailed, err))
		return
	}

	response.Success(c, http.StatusOK, domain.MsgThankYou)
}
