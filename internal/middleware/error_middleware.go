package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
	{apperrors.ErrRecordNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Record not found"},
	{apperrors.ErrMentorNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Mentor not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeTokenRevoked, "Token revoked"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrStudentBanned, http.StatusForbidden, dto.ErrorCodeAccountBanned, "Account is banned"},
	{apperrors.ErrDomainNotAllowed, http.StatusForbidden, dto.ErrorCodeForbidden, "Email domain not allowed"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrSlotOutOfRange, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Counseling slot out of range"},
	{apperrors.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, dto.ErrorCodeBadRequest, "Unsupported media type"},
	{apperrors.ErrFileTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodeBadRequest, "File too large"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrInvalidEmail, http.StatusBadRequest, dto.ErrorCodeInvalidEmail, "Invalid email"},
	{apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeInvalidPassword, "Invalid password"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
}

// HandleAPIError writes the error response for err and aborts the request
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// HandleBindError writes a 400 response for a request that failed binding
func HandleBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(bindErrorDetail(err)))
}

// ErrorDetailFor maps err to an HTTP status and error detail
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, dto.HandleValidationError(err)
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			detail := dto.NewErrorDetail(m.code, m.message)
			var custom *apperrors.CustomError
			if errors.As(err, &custom) && custom.Message != "" {
				detail = detail.WithDetails(custom.Message)
			}
			return m.status, detail
		}
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

func bindErrorDetail(err error) *dto.ErrorDetail {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Malformed JSON body")
	case errors.As(err, &typeErr):
		return dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid field type").WithField(typeErr.Field)
	default:
		return dto.HandleValidationError(err)
	}
}
