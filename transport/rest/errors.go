package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-versus/internal/apperror"
)

const internalErrorMessage = "Internal Server Error"

type errorResponse struct {
	Message string `json:"message"`
}

// StatusCode - the HTTP status of an application error kind.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, apperror.ErrInvalidInput), errors.Is(err, apperror.ErrNoOpMove):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrOutOfTurn):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		log := logger.With("method", "HTTPErrorHandler")

		if ctx.Response().Committed {
			return
		}

		status, message := resolveError(err)
		if status == http.StatusInternalServerError {
			log.Error("request failed", "uri", ctx.Request().RequestURI, "error", err)
		}

		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(status)
		} else {
			err = ctx.JSON(status, errorResponse{Message: message})
		}

		if err != nil {
			log.Error("failed to write error response", "error", err)
		}
	}
}

func resolveError(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if message, ok := httpErr.Message.(string); ok {
			return httpErr.Code, message
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		return status, internalErrorMessage
	}

	message, ok := apperror.Message(err)
	if !ok {
		message = http.StatusText(status)
	}

	return status, message
}
