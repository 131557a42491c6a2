package aware

import "time"

type apiRequest struct {
	method      string
	path        string
	queryParams map[string]string
	headers     map[string]string
	contentType string
	reqBodyObj  interface{}
	successCode int
	respObj     interface{}
	timeout     time.Duration
	// authenticate attaches a bearer token when one is held and arms the
	// one-shot refresh-and-retry on 401/403. Login, signup, refresh, and
	// confirm are the unauthenticated exceptions.
	authenticate bool
}

type apiResponse struct {
	statusCode int
	body       []byte
}

// detailResponse is the backend's error envelope.
type detailResponse struct {
	Detail string `json:"detail"`
}
