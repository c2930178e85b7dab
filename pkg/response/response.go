package response

import "net/http"

// Response is the envelope every endpoint answers with.
// Message is a stable symbolic code, never a raw error string.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// New builds an envelope; success is derived from the HTTP status.
func New(statusCode int, message string, data interface{}) Response {
	return Response{
		Success: statusCode == http.StatusOK,
		Message: message,
		Data:    data,
	}
}

// Success returns a 200 envelope wrapping the data
func Success(message string, data interface{}) Response {
	return New(http.StatusOK, message, data)
}

// Error returns a failure envelope with no data
func Error(statusCode int, message string) Response {
	return New(statusCode, message, nil)
}

// ServerError is the opaque answer for unexpected faults
func ServerError() Response {
	return Error(http.StatusInternalServerError, MsgServerError)
}
