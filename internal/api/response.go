package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-manager/internal/apperr"
	"alcyxob/gym-manager/internal/logger"
	"alcyxob/gym-manager/internal/query"
)

// SuccessResponse is the envelope of every successful response.
type SuccessResponse struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
	Message    string            `json:"message,omitempty"`
}

// ErrorResponse is the envelope of every failed response.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data, Message: message})
}

func respondPage[T any](c *gin.Context, page *query.Page[T]) {
	data := page.Data
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data, Pagination: &page.Pagination})
}

// respondError writes err with the status its kind maps to. Details of
// unexpected errors are logged and never sent to the caller.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	body := ErrorResponse{Message: "Internal server error"}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		body.Message = ae.Message
		body.Errors = ae.Fields
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Message: message})
}
