package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	scopebridge "github.com/opengovern/scope-bridge"
)

// Reply is one scripted transport outcome.
type Reply struct {
	Response *scopebridge.NormalizedResponse
	Err      error
	Delay    time.Duration
}

type route struct {
	method string
	path   string
	reply  Reply
}

// MockTransport answers from routes registered with Handle first, then replays scripted
// replies in order, repeating the last one once exhausted.
type MockTransport struct {
	mu       sync.Mutex
	routes   []route
	replies  []Reply
	requests []*scopebridge.NormalizedRequest
}

func NewMockTransport(replies ...Reply) *MockTransport {
	return &MockTransport{replies: replies}
}

// JSON scripts a reply with a JSON body.
func JSON(status int, body string) Reply {
	return Reply{Response: &scopebridge.NormalizedResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Data:       []byte(body),
	}}
}

// Envelope scripts a 200 reply wrapping data in the backend envelope.
func Envelope(code int, message string, data string) Reply {
	if data == "" {
		data = "null"
	}

	return JSON(200, fmt.Sprintf(`{"code":%d,"message":%q,"data":%s,"timestamp":1700000000000}`, code, message, data))
}

// File scripts a binary reply with the given Content-Disposition.
func File(contentType string, disposition string, payload []byte) Reply {
	headers := map[string]string{"content-type": contentType}
	if disposition != "" {
		headers["content-disposition"] = disposition
	}

	return Reply{Response: &scopebridge.NormalizedResponse{StatusCode: 200, Headers: headers, Data: payload}}
}

func Failure(err error) Reply {
	return Reply{Err: err}
}

// Push appends replies to the script.
func (m *MockTransport) Push(replies ...Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

// Handle answers requests whose endpoint path equals path with reply. An empty method matches any.
// Later registrations win.
func (m *MockTransport) Handle(method string, path string, reply Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route{method: method, path: path, reply: reply})
}

func (m *MockTransport) match(req *scopebridge.NormalizedRequest) (Reply, bool) {
	path, _, _ := strings.Cut(req.Endpoint, "?")
	for i := len(m.routes) - 1; i >= 0; i-- {
		r := m.routes[i]
		if (r.method == "" || r.method == req.Method) && r.path == path {
			return r.reply, true
		}
	}

	return Reply{}, false
}

func (m *MockTransport) RoundTrip(ctx context.Context, req *scopebridge.NormalizedRequest) (*scopebridge.NormalizedResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)

	reply, routed := m.match(req)
	switch {
	case routed:
	case len(m.replies) > 1:
		reply = m.replies[0]
		m.replies = m.replies[1:]
	case len(m.replies) == 1:
		reply = m.replies[0]
	default:
		reply = Reply{Response: &scopebridge.NormalizedResponse{StatusCode: 200, Headers: map[string]string{}}}
	}

	m.mu.Unlock()

	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return reply.Response, reply.Err
}

// Calls returns the number of requests seen.
func (m *MockTransport) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns the requests seen, in order.
func (m *MockTransport) Requests() []*scopebridge.NormalizedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*scopebridge.NormalizedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or nil.
func (m *MockTransport) LastRequest() *scopebridge.NormalizedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.requests) == 0 {
		return nil
	}

	return m.requests[len(m.requests)-1]
}

// RecordingNotifier collects every notified error.
type RecordingNotifier struct {
	mu     sync.Mutex
	errors []*scopebridge.ClassifiedError
}

func (r *RecordingNotifier) Notify(_ context.Context, err *scopebridge.ClassifiedError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func (r *RecordingNotifier) Errors() []*scopebridge.ClassifiedError {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*scopebridge.ClassifiedError, len(r.errors))
	copy(out, r.errors)
	return out
}

// Messages returns the notified messages, in order.
func (r *RecordingNotifier) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.errors))
	for _, e := range r.errors {
		out = append(out, e.Message)
	}

	return out
}
