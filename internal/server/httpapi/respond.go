package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/duochat/internal/common"
)

type messageResponse struct {
	Message string              `json:"message"`
	Errors  []common.FieldError `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, messageResponse{Message: msg})
}

// respondError maps service errors onto the client-facing taxonomy. Internal
// detail is logged by the services, never echoed to the caller.
func respondError(w http.ResponseWriter, err error) {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := "Validation failed"
		if len(verr.Fields) > 0 {
			msg = verr.Fields[0].Message
		}
		respondJSON(w, http.StatusBadRequest, messageResponse{Message: msg, Errors: verr.Fields})
	case errors.Is(err, common.ErrorValidation):
		respondMessage(w, http.StatusBadRequest, "Validation failed")
	case errors.Is(err, common.ErrorAlreadyExists):
		respondMessage(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, common.ErrorUnauthorized):
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		respondMessage(w, http.StatusNotFound, "Not found")
	default:
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
