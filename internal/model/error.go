package model

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes used in ErrorResponse.Code
const (
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeAmountTooLarge = "AMOUNT_EXCEEDS_MAX"
	CodeBackend        = "BACKEND_ERROR"
)
