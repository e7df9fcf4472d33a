package responses

// Envelope wraps every successful payload under "data".
type Envelope[T any] struct {
	Data T `json:"data"`
}

// ErrorBody is the public shape of a failed request. Details only appear for
// codes that allow them.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}
