package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/pkg/apperrors"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string            `json:"error"`
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// NewHTTPErrorHandler renders AppErrors and echo errors as ErrorResponse.
// Internal errors are logged with their cause and answered with a generic message.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resp, status := buildErrorResponse(err)
		resp.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("request_id", resp.RequestID),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, resp)
		}
		if err != nil {
			logger.Error("writing error response", zap.Error(err))
		}
	}
}

func buildErrorResponse(err error) (ErrorResponse, int) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		message := appErr.Message
		if status >= http.StatusInternalServerError {
			message = "internal server error"
		}
		return ErrorResponse{
			Error:   http.StatusText(status),
			Type:    string(appErr.Type),
			Message: message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}, status
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		return ErrorResponse{
			Error:   http.StatusText(he.Code),
			Type:    string(typeForStatus(he.Code)),
			Message: message,
		}, he.Code
	}

	return ErrorResponse{
		Error:   http.StatusText(http.StatusInternalServerError),
		Type:    string(apperrors.ErrorTypeInternal),
		Message: "internal server error",
	}, http.StatusInternalServerError
}

func typeForStatus(status int) apperrors.ErrorType {
	switch status {
	case http.StatusBadRequest:
		return apperrors.ErrorTypeValidation
	case http.StatusUnauthorized:
		return apperrors.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrorTypeForbidden
	case http.StatusNotFound:
		return apperrors.ErrorTypeNotFound
	case http.StatusConflict:
		return apperrors.ErrorTypeConflict
	}
	if status >= http.StatusInternalServerError {
		return apperrors.ErrorTypeInternal
	}
	return ""
}
