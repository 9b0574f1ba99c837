package v1

import (
	"net/http"

	"contact-form-backend/config"
	"contact-form-backend/internal/delivery/http/middleware"
	"contact-form-backend/internal/delivery/http/response"
	"contact-form-backend/internal/domain"
	"contact-form-backend/pkg/logger"
	"contact-form-backend/pkg/redis"
	"contact-form-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC domain.ContactUsecase
	Renderer  http.Handler // serves every path that is not an API route
	Config    *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	validation.RegisterBindingValidators()

	r := gin.New()
	// The contact path matches exactly; anything else belongs to the renderer.
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	// Only listed proxies may set the client IP the limiter keys on.
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		logger.Log.Error("Invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middlewares
	r.Use(middleware.Recovery(deps.Config.AllowedOrigin))
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(deps.Config.AllowedOrigin))

	// Health Check
	r.GET("/healthz", func(c *gin.Context) {
		if err := redis.HealthCheck(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, "Rate limit store unavailable")
			return
		}
		response.Success(c, http.StatusOK, "System operational")
	})

	if deps.Config.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Contact form: origin check first, then the optional limiter. Unmatched
	// paths fall through to the renderer.
	contactMiddlewares := []gin.HandlerFunc{
		middleware.OriginGate(deps.Config.AllowedOrigin, deps.Config.AllowedReferer),
	}
	if deps.Config.ContactRateLimit > 0 {
		contactMiddlewares = append(contactMiddlewares,
			middleware.LimitSubmissions(middleware.ContactSubmissionLimit(deps.Config.ContactRateLimit)))
	}
	NewContactHandler(r, deps.Config.ContactPath, deps.ContactUC, deps.Renderer, contactMiddlewares...)

	return r
}
