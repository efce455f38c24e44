package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/nimbusbi/timefact/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteCodedError renders a serrors.BaseError as a JSON envelope.
func WriteCodedError(w http.ResponseWriter, status int, err *serrors.BaseError) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    err.Code,
		Message: err.Message,
		Meta:    err.TemplateData,
	})
}
