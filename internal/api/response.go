package api

import "net/http"

// Response codes carried in the envelope. The numeric prefix is the HTTP
// status the code maps to; 200_PENDING marks a payment awaiting confirmation.
const (
	CodeOK          = "200_OK"
	CodePending     = "200_PENDING"
	CodeCreated     = "201_CREATED"
	CodeBadRequest  = "400_BAD_REQUEST"
	CodeBadToken    = "401_UNAUTHORIZED"
	CodeForbidden   = "403_FORBIDDEN"
	CodeNotFound    = "404_NOT_FOUND"
	CodeTimeout     = "408_TIMEOUT"
	CodeConflict    = "409_CONFLICT"
	CodeInternal    = "500_INTERNAL"
	CodeUnavailable = "503_SERVICE_UNAVAILABLE"
)

// Envelope is the uniform response body returned by every endpoint.
type Envelope struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success builds a success envelope with optional payload.
func Success(code, message string, data any) Envelope {
	return Envelope{Status: "success", Code: code, Message: message, Data: data}
}

// Failure builds a failure envelope.
func Failure(code, message string) Envelope {
	return Envelope{Status: "failure", Code: code, Message: message}
}

// HTTPStatus resolves an envelope code to its HTTP status.
func HTTPStatus(code string) int {
	switch code {
	case CodeOK, CodePending:
		return http.StatusOK
	case CodeCreated:
		return http.StatusCreated
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeBadToken:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusRequestTimeout
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
