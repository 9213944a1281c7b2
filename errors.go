// errors.go
// ----------
// This file defines the error taxonomy of the pipeline. Every failure that reaches a caller,
// except a rejection raised by a request hook, is a *ClassifiedError of exactly one kind:
//
// - Timeout:  no response, the deadline elapsed or the call was aborted.
// - Network:  no response at all (DNS, refused connection, TLS...).
// - HTTP:     the server answered with a non-2xx status.
// - Business: the server answered 2xx but the envelope code is not CodeSuccess.
package scopebridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrNilConfig is returned when Request is called without a config.
	ErrNilConfig = errors.New("request config cannot be nil")

	// ErrEmptyURL is returned when the request URL is empty.
	ErrEmptyURL = errors.New("request url cannot be empty")

	// ErrInvalidMethod is returned when the method is not a standard HTTP verb.
	ErrInvalidMethod = errors.New("invalid http method")
)

type ErrorKind string

const (
	KindTimeout  ErrorKind = "timeout"
	KindNetwork  ErrorKind = "network"
	KindHTTP     ErrorKind = "http"
	KindBusiness ErrorKind = "business"
)

// ClassifiedError is the normalized failure representation returned by the pipeline.
type ClassifiedError struct {
	Kind    ErrorKind
	Code    int
	Message string

	Method string
	Path   string

	// Detail is the server-provided payload, set for HTTP and Business errors when present.
	Detail json.RawMessage

	// Cause is the underlying transport error for Timeout and Network errors.
	Cause error
}

func (e *ClassifiedError) Error() string {
	if e == nil {
		return "<nil>"
	}

	return fmt.Sprintf("%s error %d: %s", e.Kind, e.Code, e.Message)
}

func (e *ClassifiedError) Unwrap() error { return e.Cause }

// AsClassified extracts a *ClassifiedError from err.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce, true
	}

	return nil, false
}

// IsKind reports whether err is a *ClassifiedError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ce, ok := AsClassified(err)
	return ok && ce.Kind == kind
}

// IsCode reports whether err is a *ClassifiedError carrying the given numeric code.
func IsCode(err error, code int) bool {
	ce, ok := AsClassified(err)
	return ok && ce.Code == code
}

// isTimeout reports whether a transport error means the deadline elapsed or the call was aborted.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classifyTransportError handles failures where no response was received.
func classifyTransportError(method string, path string, err error) *ClassifiedError {
	if isTimeout(err) {
		msg := "request timed out"
		if errors.Is(err, context.Canceled) {
			msg = "request aborted"
		}

		return &ClassifiedError{
			Kind:    KindTimeout,
			Code:    CodeTimeout,
			Message: fmt.Sprintf("%s (%s %s)", msg, method, path),
			Method:  method,
			Path:    path,
			Cause:   err,
		}
	}

	return &ClassifiedError{
		Kind:    KindNetwork,
		Code:    CodeNetwork,
		Message: fmt.Sprintf("network error (%s %s): %v", method, path, err),
		Method:  method,
		Path:    path,
		Cause:   err,
	}
}

// classifyStatus handles a response received with a non-success HTTP status.
// The server message and detail are read from a JSON body when there is one.
func classifyStatus(method string, path string, resp *NormalizedResponse) *ClassifiedError {
	msg := ""
	var detail json.RawMessage
	if gjson.ValidBytes(resp.Data) {
		body := gjson.ParseBytes(resp.Data)
		msg = strings.TrimSpace(body.Get("message").String())
		if data := body.Get("data"); data.Exists() && data.Type != gjson.Null {
			detail = json.RawMessage(data.Raw)
		}
	}

	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	if msg == "" {
		msg = "request failed"
	}

	return &ClassifiedError{
		Kind:    KindHTTP,
		Code:    resp.StatusCode,
		Message: fmt.Sprintf("%s (%s %s)", msg, method, path),
		Method:  method,
		Path:    path,
		Detail:  detail,
	}
}

// businessError handles a 2xx response whose envelope signals failure.
func businessError(method string, path string, env *Envelope) *ClassifiedError {
	var detail json.RawMessage
	if len(env.Data) > 0 && string(env.Data) != "null" {
		detail = env.Data
	}

	return &ClassifiedError{
		Kind:    KindBusiness,
		Code:    env.Code,
		Message: env.Message,
		Method:  method,
		Path:    path,
		Detail:  detail,
	}
}
