package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/R3E-Network/solana_layer/internal/errors"
)

// MaxRequestBody bounds decoded request bodies.
const MaxRequestBody = 1 << 20

// Envelope is the response shape of every endpoint: success with data, or
// failure with an error message.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// WriteJSON writes data as JSON with status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes {"success": true, "data": data}.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, successEnvelope{Success: true, Data: data})
}

// WriteError writes {"success": false, "error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorEnvelope{Success: false, Error: message})
}

// WriteErrorResponse writes the failure envelope with a machine-readable code.
func WriteErrorResponse(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Success: false, Error: message, Code: code})
}

// WriteServiceError maps err onto the failure envelope. Errors that are not
// ServiceErrors become a generic 500 so internal details never leak.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) *errors.ServiceError {
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil {
		serviceErr = errors.Internal("Internal server error", err)
	}
	WriteErrorResponse(w, r, serviceErr.HTTPStatus, string(serviceErr.Code), serviceErr.Message)
	return serviceErr
}

// Unauthorized writes a 401 failure envelope.
func Unauthorized(w http.ResponseWriter, message string) {
	serviceErr := errors.Unauthorized(message)
	WriteJSON(w, serviceErr.HTTPStatus, errorEnvelope{Success: false, Error: serviceErr.Message, Code: string(serviceErr.Code)})
}

// Validator is implemented by request types that check their own fields
// after decoding, typically for required values.
type Validator interface {
	Validate() error
}

// DecodeJSON decodes a bounded JSON request body into v. Unknown fields and
// trailing data are rejected. An empty body is treated as an empty object so
// endpoints without input accept it. If v is a Validator it runs afterwards.
func DecodeJSON(r *http.Request, v any) error {
	var body []byte
	if r.Body != nil {
		raw, truncated, err := ReadAllWithLimit(r.Body, MaxRequestBody)
		if err != nil {
			return errors.InvalidRequest("Invalid request body", err)
		}
		if truncated {
			return errors.InvalidRequest("Request body too large", fmt.Errorf("body exceeds %d bytes", MaxRequestBody))
		}
		body = raw
	}
	if len(bytes.TrimSpace(body)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return errors.InvalidRequest("Invalid request body", err)
		}
		if _, err := dec.Token(); err != io.EOF {
			return errors.InvalidRequest("Invalid request body", fmt.Errorf("unexpected data after JSON value"))
		}
	}
	if validator, ok := v.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return errors.InvalidRequest("Invalid request body", err)
		}
	}
	return nil
}

// ReadAllWithLimit reads up to limit bytes and reports whether more remained.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, bool, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) > limit {
		return body[:limit], true, nil
	}
	return body, false, nil
}

// ReadAllStrict reads r and fails if it holds more than limit bytes.
func ReadAllStrict(r io.Reader, limit int64) ([]byte, error) {
	body, truncated, err := ReadAllWithLimit(r, limit)
	if err != nil {
		return nil, err
	}
	if truncated {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return body, nil
}
