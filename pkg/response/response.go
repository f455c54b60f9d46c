package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the envelope for every non-2xx JSON response.
type ErrorBody struct {
	Error string `json:"error"`
	Slug  string `json:"slug,omitempty"`
}

// ValidationError describes a single field failure found while loading the
// link catalog.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{Error: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFoundLink reports an unknown slug, echoing the slug so callers can see
// which link was requested.
func NotFoundLink(c *gin.Context, slug string) {
	c.JSON(http.StatusNotFound, ErrorBody{Error: "Link not found", Slug: slug})
}

func InternalServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}
