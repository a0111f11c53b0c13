package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope statuses.
const (
	StatusOK                = "OK"
	StatusError             = "ERROR"
	StatusTwoFactorRequired = "2FA_REQUIRED"
)

// Envelope is the body of every successful response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorBody is the body of every error response.
type ErrorBody struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes a {"status":"OK"} envelope.
func WriteOK(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, Envelope{Status: StatusOK, Message: message, Data: data})
}

// WriteError writes a {"status":"ERROR","code":..} body.
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	WriteJSON(w, code, ErrorBody{Status: StatusError, Code: errCode, Message: message})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Every response here carries either a credential or account state.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// DecodeJSON reads a JSON request body into dst, rejecting unknown fields
// and bodies over 64 KiB.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
