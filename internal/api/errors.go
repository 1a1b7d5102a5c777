package api

import (
	"errors"
	"net/http"

	"signal_board/internal/auth"
	"signal_board/internal/board"
	"signal_board/internal/signal"
	"signal_board/pkg/logger"
)

type ErrorResponse struct {
	Error string         `json:"error"`
	Field string         `json:"field,omitempty"`
	Steps []stepResponse `json:"steps,omitempty"`
}

func statusFor(err error) int {
	var (
		ve *signal.ValidationError
		pe *signal.PersistenceError
		ne *signal.NotificationError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, signal.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, signal.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, signal.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, signal.ErrIllegalTransition):
		return http.StatusConflict
	case errors.As(err, &pe), errors.As(err, &ne):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error, out *board.Outcome) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("api: %v", err)
	}

	resp := ErrorResponse{Error: err.Error()}
	var ve *signal.ValidationError
	if errors.As(err, &ve) {
		resp.Error, resp.Field = ve.Reason, ve.Field
	}
	if out != nil {
		resp.Steps = steps(out.Steps)
	}
	writeJSON(w, status, resp)
}
