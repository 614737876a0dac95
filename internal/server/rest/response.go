package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/verikeep/internal/common"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("no data provided")

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	envelope
	Errors map[string]string `json:"errors,omitempty"`
}

func ok(message string) envelope {
	return envelope{Success: true, Message: message}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{envelope: envelope{Message: message}})
}

// writeError renders err according to its kind. Internal errors get a
// generic message; their text has already been logged by the service.
func writeError(w http.ResponseWriter, err error) {
	kind := common.KindOf(err)
	resp := errorResponse{envelope: envelope{Message: publicMessage(kind, err)}}

	var ve *common.ValidationError
	if errors.As(err, &ve) {
		resp.Message = "validation failed"
		resp.Errors = ve.FieldMessages()
	}

	writeJSON(w, statusFor(kind), resp)
}

func statusFor(kind common.Kind) int {
	switch kind {
	case common.KindValidation, common.KindExpired:
		return http.StatusBadRequest
	case common.KindConflict:
		return http.StatusConflict
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindUnauthorized:
		return http.StatusUnauthorized
	case common.KindForbidden:
		return http.StatusForbidden
	case common.KindDependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(kind common.Kind, err error) string {
	switch kind {
	case common.KindInternal:
		return "internal server error"
	case common.KindDependencyFailure:
		return "upstream service unavailable"
	case common.KindNotFound:
		return "account not found"
	}
	return err.Error()
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}
