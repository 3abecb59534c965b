package responses

// SuccessEnvelope wraps every 2xx payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body of an error response. Retryable tells dashboard
// clients whether repeating the same call can succeed.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Details   any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error payload. Details are present only for codes
// that allow them, such as the current state on a 409.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
