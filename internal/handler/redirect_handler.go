package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MediumMasala/branch-redirect-service/internal/domain"
	"github.com/MediumMasala/branch-redirect-service/pkg/response"
)

type ResolverService interface {
	Resolve(req *domain.RedirectRequest) (*domain.RedirectResult, error)
	Preview(slug string, query map[string]string, clientIP string) ([]byte, error)
}

type RedirectHandler struct {
	service ResolverService
}

func NewRedirectHandler(service ResolverService) *RedirectHandler {
	return &RedirectHandler{service: service}
}

// Redirect resolves /r/:slug. Crawlers receive the preview document, real
// clients a 302 to their platform's destination. Both outcomes carry
// no-cache directives so intermediaries never pin one variant.
func (h *RedirectHandler) Redirect(c *gin.Context) {
	req := &domain.RedirectRequest{
		Slug:      c.Param("slug"),
		UserAgent: c.Request.UserAgent(),
		Query:     queryParams(c),
		ClientIP:  c.ClientIP(),
	}

	result, err := h.service.Resolve(req)
	if err != nil {
		h.respondError(c, req.Slug, err)
		return
	}

	if result.Action == domain.ActionPreview {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Data(http.StatusOK, "text/html; charset=utf-8", result.HTML)
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Redirect(http.StatusFound, result.Location)
}

// Preview resolves /preview/:slug for any caller, bot or not, with a short
// public cache lifetime.
func (h *RedirectHandler) Preview(c *gin.Context) {
	slug := c.Param("slug")

	html, err := h.service.Preview(slug, queryParams(c), c.ClientIP())
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			response.NotFoundLink(c, slug)
			return
		}

		response.InternalServerError(c, "failed to render preview")
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (h *RedirectHandler) respondError(c *gin.Context, slug string, err error) {
	switch {
	case errors.Is(err, domain.ErrLinkNotFound):
		response.NotFoundLink(c, slug)
	case errors.Is(err, domain.ErrPhoneRequired):
		response.BadRequest(c, "phone number required")
	default:
		response.InternalServerError(c, "failed to build redirect URL")
	}
}

// queryParams flattens the request query into the string map the resolver
// works with. Repeated keys keep their first value.
func queryParams(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()

	params := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}

	return params
}
