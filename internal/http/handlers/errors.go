package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mybus/internal/domain"
	"mybus/internal/http/middleware"
)

func respondError(c *gin.Context, status int, message string) {
	payload := gin.H{"error": message}
	if reqID := middleware.GetRequestID(c); reqID != "" {
		payload["request_id"] = reqID
	}
	c.JSON(status, payload)
}

// RespondDomainError maps domain errors to HTTP responses. Internal
// failures never leak their cause to the client.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, err.Error())
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, err.Error())
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "something went wrong")
	}
}
