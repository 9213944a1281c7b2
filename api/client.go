// Package api provides typed clients for the query console endpoints. Every call goes
// through a scopebridge.Bridge, so it shares the bridge's hooks, error classification,
// loading accounting and throttling.
package api

import (
	"errors"
	"strconv"
	"time"

	scopebridge "github.com/opengovern/scope-bridge"
)

// ErrMissingID is returned before dispatch when a required identifier is empty.
var ErrMissingID = errors.New("id cannot be empty")

// TimeLayout is the wire format of the history endpoints' time filters.
const TimeLayout = "2006-01-02 15:04:05"

const (
	datasourcesPath = "/datasources"
	queriesPath     = "/v1/queries"
	historiesPath   = "/query-histories"
	sqlParserPath   = "/sql-parser"
	authPath        = "/auth"
)

type Client struct {
	bridge *scopebridge.Bridge
}

func NewClient(bridge *scopebridge.Bridge) *Client {
	return &Client{bridge: bridge}
}

// Bridge returns the underlying bridge.
func (c *Client) Bridge() *scopebridge.Bridge {
	return c.bridge
}

func requireID(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			return ErrMissingID
		}
	}

	return nil
}

// Page number keys differ per controller: datasources read "current", queries read "page".
// Both read the page size from "size".
const (
	pageKeyCurrent = "current"
	pageKeyPage    = "page"
)

func pageOptions(pageKey string, p PageParams) []scopebridge.RequestOption {
	p = p.normalized()
	return []scopebridge.RequestOption{
		scopebridge.WithQueryParam(pageKey, strconv.Itoa(p.Current)),
		scopebridge.WithQueryParam("size", strconv.Itoa(p.PageSize)),
	}
}

func timeParam(key string, t time.Time) scopebridge.RequestOption {
	if t.IsZero() {
		return scopebridge.WithQueryParam(key, "")
	}

	return scopebridge.WithQueryParam(key, t.Format(TimeLayout))
}
