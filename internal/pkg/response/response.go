package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studykit/core/internal/pkg/apperr"
)

// OK sends a 200 response with the payload as-is.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Err translates err into the `{"error": message}` envelope. Errors carrying
// a kind use its status mapping; anything else is a 500 with the raw message.
func Err(c *gin.Context, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		c.AbortWithStatusJSON(e.Kind.HTTPStatus(), gin.H{"error": e.Message})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// NotFound handles unmatched routes.
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not Found"})
}

// MethodNotAllowed handles matched routes hit with the wrong verb.
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed"})
}
