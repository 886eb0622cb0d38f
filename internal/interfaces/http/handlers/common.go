package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/simheat/internal/interfaces/http/middleware"
	"github.com/turtacn/simheat/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeAppError maps err to its HTTP status. Server-side failures are masked
// so internal paths and causes do not leak.
func writeAppError(c *gin.Context, err error) {
	_ = c.Error(err)
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: string(code), RequestID: middleware.GetRequestID(c)}
	var appErr *errors.AppError
	switch {
	case status >= http.StatusInternalServerError:
		resp.Message = errors.DefaultMessageForCode(code)
	case errors.As(err, &appErr):
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	default:
		resp.Message = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

// NoRoute answers unknown paths with the standard error body.
func NoRoute(c *gin.Context) {
	writeAppError(c, errors.Newf(errors.ErrCodeNotFound, "no route for %s %s", c.Request.Method, c.Request.URL.Path))
}

//Personal.AI order the ending
