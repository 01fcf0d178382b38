// Package dto defines the HTTP response envelope shared by all handlers.
package dto

// Response is the uniform response envelope
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo carries a machine-readable code and a human-readable message
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries pagination metadata for list responses
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// OK builds a success envelope
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// OKPaginated builds a success envelope with pagination metadata
func OKPaginated(data any, meta *Meta) Response {
	return Response{Success: true, Data: data, Meta: meta}
}

// Fail builds an error envelope
func Fail(code, message string) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}
