package api

import (
	"context"
	"net/http"

	scopebridge "github.com/opengovern/scope-bridge"
)

func (c *Client) ListQueries(ctx context.Context, filter QueryFilter) (*Page[Query], error) {
	opts := append(pageOptions(pageKeyPage, filter.PageParams),
		scopebridge.WithQueryParam("keyword", filter.Keyword),
		scopebridge.WithQueryParam("status", string(filter.Status)),
		scopebridge.WithQueryParam("dataSourceId", filter.DatasourceID),
	)

	return scopebridge.Get[*Page[Query]](ctx, c.bridge, queriesPath, opts...)
}

func (c *Client) GetQuery(ctx context.Context, id string) (*Query, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	return scopebridge.Get[*Query](ctx, c.bridge, queriesPath+"/{id}", scopebridge.WithPathParam("id", id))
}

func (c *Client) CreateQuery(ctx context.Context, in QueryInput) (*Query, error) {
	if err := requireID(in.DatasourceID); err != nil {
		return nil, err
	}

	return scopebridge.Post[*Query](ctx, c.bridge, queriesPath, in)
}

func (c *Client) UpdateQuery(ctx context.Context, id string, in QueryInput) (*Query, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	return scopebridge.Put[*Query](ctx, c.bridge, queriesPath+"/{id}", in, scopebridge.WithPathParam("id", id))
}

func (c *Client) DeleteQuery(ctx context.Context, id string) error {
	return c.queryAction(ctx, http.MethodDelete, id, "")
}

func (c *Client) PublishQuery(ctx context.Context, id string) error {
	return c.queryAction(ctx, http.MethodPost, id, "/publish")
}

func (c *Client) ArchiveQuery(ctx context.Context, id string) error {
	return c.queryAction(ctx, http.MethodPost, id, "/archive")
}

func (c *Client) queryAction(ctx context.Context, method string, id string, suffix string) error {
	if err := requireID(id); err != nil {
		return err
	}

	_, err := c.bridge.Request(ctx, &scopebridge.RequestConfig{
		Method:     method,
		URL:        queriesPath + "/{id}" + suffix,
		PathParams: map[string]string{"id": id},
	})
	return err
}

func (c *Client) ExecuteQuery(ctx context.Context, id string, params ExecuteParams) (*ExecutionResult, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	return scopebridge.Post[*ExecutionResult](ctx, c.bridge, queriesPath+"/{id}/execute", params, scopebridge.WithPathParam("id", id))
}

func (c *Client) CancelExecution(ctx context.Context, id string, executionID string) error {
	if err := requireID(id, executionID); err != nil {
		return err
	}

	_, err := scopebridge.Post[any](ctx, c.bridge, queriesPath+"/{id}/executions/{execution}/cancel", nil,
		scopebridge.WithPathParam("id", id),
		scopebridge.WithPathParam("execution", executionID),
	)
	return err
}

// ListExecutions pages through runs of saved queries.
func (c *Client) ListExecutions(ctx context.Context, filter ExecutionFilter) (*Page[Execution], error) {
	opts := append(pageOptions(pageKeyPage, filter.PageParams),
		scopebridge.WithQueryParam("queryId", filter.QueryID),
		scopebridge.WithQueryParam("status", filter.Status),
		scopebridge.WithQueryParam("startTime", filter.StartTime),
		scopebridge.WithQueryParam("endTime", filter.EndTime),
	)

	return scopebridge.Get[*Page[Execution]](ctx, c.bridge, queriesPath+"/history", opts...)
}

// ExportQueryResult downloads the result of running the query with conditions.
func (c *Client) ExportQueryResult(ctx context.Context, id string, conditions map[string]any, opts ...scopebridge.RequestOption) (*scopebridge.DownloadDescriptor, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	opts = append([]scopebridge.RequestOption{scopebridge.WithPathParam("id", id)}, opts...)
	return c.bridge.Download(ctx, http.MethodPost, queriesPath+"/{id}/export", ExecuteParams{Conditions: conditions}, opts...)
}
