package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/edcost/internal/model"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func abort(c *gin.Context, status int, code, message string, details any) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

// respondError maps a domain error onto a status code and error body.
func (s *Service) respondError(c *gin.Context, err error) {
	var ve *model.ValidationError
	var de *model.DataIntegrityError
	switch {
	case errors.As(err, &ve):
		abort(c, http.StatusBadRequest, "validation", ve.Message(), gin.H{"field": ve.Field, "value": ve.Value})
	case errors.As(err, &de):
		s.logger.Error("http.integrity", "request_id", RequestIDFromContext(c), "error", err)
		abort(c, http.StatusInternalServerError, "integrity", de.Error(), nil)
	default:
		s.logger.Error("http.error", "request_id", RequestIDFromContext(c), "error", err)
		abort(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
	}
}
