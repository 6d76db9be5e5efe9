package utils

import "time"

// APIResponse is the envelope every booking-service endpoint returns.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

// ErrorResponseWithData attaches structured detail to a rejection, e.g. the
// unavailable seat labels on a reservation conflict.
func ErrorResponseWithData(message, error string, data interface{}) APIResponse {
	resp := ErrorResponse(message, error)
	resp.Data = data
	return resp
}
