package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rlopezj/catedra/internal/app/models/dto"
	"github.com/rlopezj/catedra/internal/pkg/apperrors"
	"github.com/rlopezj/catedra/internal/pkg/logger"
)

// HandleAPIError maps application errors onto the standard JSON error
// envelope. Used by the JSON endpoints; the file endpoints answer in
// plain text and do their own mapping.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password", err)
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired", err)
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token", err)
	case errors.Is(err, apperrors.ErrTokenNotFound):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Unknown refresh token", err)
	case errors.Is(err, apperrors.ErrTokenRevoked):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked", err)
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, messageOf(err, "Email already registered"), err)
	case errors.Is(err, apperrors.ErrPayrollNumberExists):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, messageOf(err, "Payroll number already registered"), err)
	case errors.Is(err, apperrors.ErrFileAlreadyExists):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, messageOf(err, "File already exists"), err)
	case errors.Is(err, apperrors.ErrConflict):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, messageOf(err, "Resource already exists"), err)
	case errors.Is(err, apperrors.ErrCareerNotFound):
		respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, messageOf(err, "The selected career does not exist"), err)
	case errors.Is(err, apperrors.ErrTeacherNotFound),
		errors.Is(err, apperrors.ErrAttachmentNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		respond(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found", err)
	case errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrBadRequest):
		respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, messageOf(err, "Invalid request"), err)
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
		respond(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error", err)
	}
}

func respond(c *gin.Context, status int, code dto.ErrorCode, message string, err error) {
	errorDetail := dto.NewErrorDetail(code, message)
	if field := apperrors.FieldOf(err); field != "" {
		errorDetail = errorDetail.WithField(field)
	}
	c.JSON(status, dto.NewErrorResponse(errorDetail))
}

// messageOf prefers the wrapped CustomError message over the generic
// fallback so field-specific texts reach the client.
func messageOf(err error, fallback string) string {
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		return customErr.Message
	}
	return fallback
}
