package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/mcdev12/livequiz/go/internal/auth"
	"github.com/mcdev12/livequiz/go/internal/tournament"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps an establishment error to its HTTP status and connect code.
func classify(err error) (int, connect.Code) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, connect.CodeUnauthenticated
	case errors.Is(err, ErrInvalidTournamentID):
		return http.StatusBadRequest, connect.CodeInvalidArgument
	case errors.Is(err, tournament.ErrNotFound):
		return http.StatusNotFound, connect.CodeNotFound
	case errors.Is(err, tournament.ErrNotRegistered):
		return http.StatusForbidden, connect.CodePermissionDenied
	case errors.Is(err, tournament.ErrMisconfigured):
		return http.StatusInternalServerError, connect.CodeFailedPrecondition
	default:
		return http.StatusInternalServerError, connect.CodeInternal
	}
}

// publicMessage hides internal failures from clients.
func publicMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func writeOpenError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("failed to open session")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("session rejected")
	}
	writeError(w, status, code.String(), publicMessage(status, err))
}

func connectError(err error) *connect.Error {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("failed to open session")
	}
	return connect.NewError(code, errors.New(publicMessage(status, err)))
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
