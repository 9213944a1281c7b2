package scopebridge

import (
	"encoding/json"
	"strings"
)

type NormalizedRequest struct {
	Method   string
	Endpoint string // Path relative to the transport's base URL, query included
	Headers  map[string]string
	Body     []byte
}

type NormalizedResponse struct {
	StatusCode int
	Headers    map[string]string // Lower-cased keys
	Data       []byte
}

// Header returns the value of a response header, case-insensitively.
func (r *NormalizedResponse) Header(key string) string {
	if r == nil || r.Headers == nil {
		return ""
	}

	return r.Headers[strings.ToLower(key)]
}

// Envelope is the {code, message, data} wrapper the server puts around every JSON reply.
type Envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"requestId,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// DownloadDescriptor is the result of a binary/file response.
type DownloadDescriptor struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// Result is the resolved value of one call. Exactly one field is populated:
// Download for download calls, Raw when RequestConfig.ReturnRaw is set, Payload otherwise.
type Result struct {
	Payload  json.RawMessage
	Raw      *NormalizedResponse
	Download *DownloadDescriptor
}
