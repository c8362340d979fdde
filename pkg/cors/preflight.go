package cors

import (
	"net/http"

	"github.com/corsgate/corsgate/pkg/stream"
)

// PreflightResponse is the terminal response to a CORS preflight request.
// The body is always empty.
type PreflightResponse struct {
	Status  int
	Headers []stream.Header
}

// Preflight returns the short-circuit response for a preflight request, or
// nil when the request is not a preflight. A true preflight is an OPTIONS
// request that also carries Access-Control-Request-Method; a bare OPTIONS
// request belongs to an ordinary endpoint and passes through.
func (p *Policy) Preflight(method, requestMethod, origin string) *PreflightResponse {
	if method != http.MethodOptions || requestMethod == "" {
		return nil
	}

	headers := p.Resolve(origin)
	headers = append(headers, stream.Header{Name: HeaderMaxAge, Value: p.maxAge})

	return &PreflightResponse{
		Status:  http.StatusOK,
		Headers: headers,
	}
}
