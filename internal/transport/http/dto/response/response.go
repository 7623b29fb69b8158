package response

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func Error(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

func ErrorWithDetails(msg, details string) ErrorResponse {
	return ErrorResponse{
		Error:   msg,
		Details: details,
	}
}

func Health(now time.Time) HealthResponse {
	return HealthResponse{
		Status:    "OK",
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}
