package stream

import (
	"fmt"
	"net/http"
)

// TransportError reports a failure to deliver the stream: the request could
// not be sent, the endpoint answered with a non-success status, or the body
// broke off mid-stream. It is the only error kind that ends a session early.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Cause      error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s failed with status %d (%s)", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Cause != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Cause)
	default:
		return e.Op + " failed"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// WrapTransportError wraps err with transport operation context
func WrapTransportError(err error, op string) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Cause: err}
}
