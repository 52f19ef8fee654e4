package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trevor-gituru/wireguard-relay-api/model"
)

type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP calls f(w, r) and handles error
func (f HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := f(w, r); err != nil {
		jsonError(w, err)
	}
}

func jsoner(w http.ResponseWriter, statusCode int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")

	if payload == nil {
		w.WriteHeader(statusCode)
		_, err := w.Write([]byte("{}"))
		return err
	}

	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(true)

	return encoder.Encode(payload)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// jsonError maps every outcome kind to a stable status code. Client-caused
// failures surface as 400/404; anything touching the interface or the
// files is a 500.
func jsonError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrAlreadyExists),
		errors.Is(err, model.ErrDuplicateKey),
		errors.Is(err, model.ErrPoolExhausted):
		code = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		code = http.StatusNotFound
	}
	jsoner(w, code, errorResponse{Detail: err.Error()})
}
