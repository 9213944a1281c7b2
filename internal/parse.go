// internal/parse.go
// ------------------
// This internal package provides helpers for parsing header values and duration strings
// received from servers or configuration files.
//
// Functions:
// - FilenameFromDisposition: Extract the filename of a content-disposition header.
// - ParseDuration: Convert strings like "1500", "1s", "6m0s" into a time.Duration.
package internal

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// FilenameFromDisposition returns the URL-decoded filename carried by a content-disposition
// header value, or "" when there is none. The RFC 5987 form (filename*=UTF-8''...) wins over
// the plain one.
func FilenameFromDisposition(header string) string {
	var plain, extended string
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(name)) {
		case "filename":
			plain = strings.Trim(strings.TrimSpace(value), `"`)
		case "filename*":
			value = strings.Trim(strings.TrimSpace(value), `"`)
			if _, encoded, found := strings.Cut(value, "''"); found {
				value = encoded
			}

			extended = value
		}
	}

	name := extended
	if name == "" {
		name = plain
	}

	if name == "" {
		return ""
	}

	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}

	return decoded
}

// ParseDuration converts strings like "1s", "6m0s" into a duration. A bare integer is read
// as milliseconds. Unparseable input yields 0.
func ParseDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	ms, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return time.Duration(ms) * time.Millisecond
	}

	d, err := time.ParseDuration(s)
	if err == nil {
		return d
	}

	return 0
}
