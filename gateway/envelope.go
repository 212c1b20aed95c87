package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
)

const maxBodyBytes = 1 << 20

// Error discriminators carried in data.code of error envelopes.
const (
	CodeSessionExpired    = apiclient.CodeSessionExpired
	CodeAccessDenied      = apiclient.CodeAccessDenied
	CodeNoCopiesAvailable = "NO_COPIES_AVAILABLE"
	CodeAlreadyBorrowed   = "ALREADY_BORROWED"
	CodeRecordNotFound    = "RECORD_NOT_FOUND"
	CodeRecordNotActive   = "RECORD_NOT_ACTIVE"
	CodeNotFound          = "NOT_FOUND"
)

const (
	msgOK                  = "ok"
	msgCreated             = "created"
	msgDeleted             = "deleted"
	msgInvalidInput        = "invalid input"
	msgInvalidBody         = "request body is not valid JSON"
	msgAccessDenied        = "access denied"
	msgSessionExpired      = "session expired"
	msgInternalServerError = "internal server error"
)

// ErrRecordNotFound is ErrNotFound for borrow records.
var ErrRecordNotFound = fmt.Errorf("borrow record %w", ErrNotFound)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type envelope struct {
	StatusType bool   `json:"statusType"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

type errorCode struct {
	Code string `json:"code"`
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	raw, err := jsonAPI.Marshal(env)
	if err != nil {
		status = http.StatusInternalServerError
		raw = []byte(`{"statusType":false,"message":"` + msgInternalServerError + `"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, status, envelope{StatusType: true, Message: message, Data: data})
}

func writeCode(w http.ResponseWriter, status int, message, code string) {
	writeEnvelope(w, status, envelope{Message: message, Data: errorCode{Code: code}})
}

func writeFieldErrors(w http.ResponseWriter, fieldErrors []apiclient.FieldError) {
	writeEnvelope(w, http.StatusBadRequest, envelope{Message: msgInvalidInput, Data: fieldErrors})
}

func writeSessionExpired(w http.ResponseWriter) {
	writeCode(w, http.StatusUnauthorized, msgSessionExpired, CodeSessionExpired)
}

func writeAccessDenied(w http.ResponseWriter) {
	writeCode(w, http.StatusForbidden, msgAccessDenied, CodeAccessDenied)
}

// writeStoreError maps store failures onto status codes and discriminators.
// It reports whether err was an unexpected failure.
func writeStoreError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, ErrNoCopiesAvailable):
		writeCode(w, http.StatusConflict, ErrNoCopiesAvailable.Error(), CodeNoCopiesAvailable)
	case errors.Is(err, ErrAlreadyBorrowed):
		writeCode(w, http.StatusConflict, ErrAlreadyBorrowed.Error(), CodeAlreadyBorrowed)
	case errors.Is(err, ErrRecordNotActive):
		writeCode(w, http.StatusConflict, ErrRecordNotActive.Error(), CodeRecordNotActive)
	case errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrRecordMismatch):
		writeCode(w, http.StatusNotFound, ErrRecordNotFound.Error(), CodeRecordNotFound)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownCollection):
		writeCode(w, http.StatusNotFound, ErrNotFound.Error(), CodeNotFound)
	case errors.Is(err, ErrDuplicateEmail):
		writeFieldErrors(w, []apiclient.FieldError{{Msg: ErrDuplicateEmail.Error(), Path: "email"}})
	default:
		writeEnvelope(w, http.StatusInternalServerError, envelope{Message: msgInternalServerError})
		return true
	}

	return false
}

func decodeBody(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}

	return jsonAPI.Unmarshal(body, out)
}
