package httpclient

import (
	"net/http"
)

// HTTPResponse is the header-only result of a HEAD request. Headers keep the
// first value of each header under its canonical key.
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
}

// Header returns the first value of the named header, matching case-insensitively.
func (r *HTTPResponse) Header(name string) (string, bool) {
	v, ok := r.Headers[http.CanonicalHeaderKey(name)]
	return v, ok
}

// IsError reports whether the status code is a client or server error.
func (r *HTTPResponse) IsError() bool {
	return r.StatusCode >= http.StatusBadRequest
}
