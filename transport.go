package throttle

import "net/http"

// transport implements http.RoundTripper and checks admission budgets
// before forwarding requests to the underlying transport.
type transport struct {
	gate *Gate
	base http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.gate.Check(req.Context(), req.URL.String()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
