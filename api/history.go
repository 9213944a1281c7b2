package api

import (
	"context"
	"strconv"

	scopebridge "github.com/opengovern/scope-bridge"
)

const defaultListLimit = 10

func (c *Client) ListHistories(ctx context.Context, filter HistoryFilter) (*HistoryPage, error) {
	if filter.Size <= 0 {
		filter.Size = DefaultPageSize
	}

	if filter.Page < 0 {
		filter.Page = 0
	}

	return scopebridge.Get[*HistoryPage](ctx, c.bridge, historiesPath,
		scopebridge.WithQueryParam("page", strconv.Itoa(filter.Page)),
		scopebridge.WithQueryParam("size", strconv.Itoa(filter.Size)),
		scopebridge.WithQueryParam("dataSourceId", filter.DatasourceID),
		scopebridge.WithQueryParam("status", filter.Status),
		timeParam("startTime", filter.StartTime),
		timeParam("endTime", filter.EndTime),
	)
}

func (c *Client) GetHistory(ctx context.Context, id string) (*History, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	return scopebridge.Get[*History](ctx, c.bridge, historiesPath+"/{id}", scopebridge.WithPathParam("id", id))
}

// GetStats is throttled: dashboards poll it from several widgets at once.
func (c *Client) GetStats(ctx context.Context, filter StatsFilter) (*QueryStats, error) {
	return scopebridge.Get[*QueryStats](ctx, c.bridge, historiesPath+"/stats",
		scopebridge.WithQueryParam("dataSourceId", filter.DatasourceID),
		timeParam("startTime", filter.StartTime),
		timeParam("endTime", filter.EndTime),
		scopebridge.WithThrottle(0),
	)
}

func (c *Client) GetSlowQueries(ctx context.Context, thresholdMillis int64, limit int) ([]History, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	return scopebridge.Get[[]History](ctx, c.bridge, historiesPath+"/slow-queries",
		scopebridge.WithQueryParam("threshold", strconv.FormatInt(thresholdMillis, 10)),
		scopebridge.WithQueryParam("limit", strconv.Itoa(limit)),
	)
}

func (c *Client) GetRecentFailures(ctx context.Context, limit int) ([]History, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	return scopebridge.Get[[]History](ctx, c.bridge, historiesPath+"/failures",
		scopebridge.WithQueryParam("limit", strconv.Itoa(limit)),
	)
}
