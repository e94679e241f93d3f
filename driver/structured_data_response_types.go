// ABOUTME: Structured-data API response structures - Driver Layer
// ABOUTME: Typed JSON bindings for token acquisition and write responses

package driver

// RemoteError is the API-level error block the remote returns when it
// understood the request and declined it.
type RemoteError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// SubmitResult is the parsed outcome of one write exchange. Exactly one of
// RemoteError/SuccessFlag is meaningful per response.
type SubmitResult struct {
	RemoteError *RemoteError
	SuccessFlag *int
}

// Succeeded reports whether the remote returned no error for the write.
func (r *SubmitResult) Succeeded() bool {
	return r != nil && r.RemoteError == nil
}

// writeResponse is the raw body of a write call.
type writeResponse struct {
	Error   *RemoteError `json:"error"`
	Success *int         `json:"success"`
}

// tokenResponse is the raw body of the token acquisition call. Userinfo is
// requested alongside the token so session state can be observed; anonymous
// sessions carry an "anon" marker.
type tokenResponse struct {
	Query struct {
		Tokens struct {
			CSRFToken string `json:"csrftoken"`
		} `json:"tokens"`
		Userinfo *struct {
			ID   int64   `json:"id"`
			Name string  `json:"name"`
			Anon *string `json:"anon"`
		} `json:"userinfo"`
	} `json:"query"`
}
