package api

import (
	"context"

	scopebridge "github.com/opengovern/scope-bridge"
)

func (c *Client) ListDatasources(ctx context.Context, filter DatasourceFilter) (*Page[Datasource], error) {
	opts := append(pageOptions(pageKeyCurrent, filter.PageParams),
		scopebridge.WithQueryParam("keyword", filter.Keyword),
		scopebridge.WithQueryParam("type", string(filter.Type)),
		scopebridge.WithQueryParam("status", string(filter.Status)),
	)

	return scopebridge.Get[*Page[Datasource]](ctx, c.bridge, datasourcesPath, opts...)
}

func (c *Client) GetDatasource(ctx context.Context, id string) (*Datasource, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	return scopebridge.Get[*Datasource](ctx, c.bridge, datasourcesPath+"/{id}", scopebridge.WithPathParam("id", id))
}

func (c *Client) CreateDatasource(ctx context.Context, in DatasourceInput) (*Datasource, error) {
	return scopebridge.Post[*Datasource](ctx, c.bridge, datasourcesPath, in)
}

func (c *Client) UpdateDatasource(ctx context.Context, id string, in DatasourceInput) (*Datasource, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	return scopebridge.Put[*Datasource](ctx, c.bridge, datasourcesPath+"/{id}", in, scopebridge.WithPathParam("id", id))
}

func (c *Client) DeleteDatasource(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}

	_, err := scopebridge.Delete[any](ctx, c.bridge, datasourcesPath+"/{id}", scopebridge.WithPathParam("id", id))
	return err
}

// TestDatasourceConnection asks the server to connect to the datasource. Repeated clicks within
// the bridge throttle interval share one probe.
func (c *Client) TestDatasourceConnection(ctx context.Context, id string) (*ConnectionTestResult, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	res, err := c.bridge.Request(ctx, &scopebridge.RequestConfig{
		Method:         "POST",
		URL:            datasourcesPath + "/{id}/test",
		PathParams:     map[string]string{"id": id},
		EnableThrottle: true,
	})
	if err != nil {
		return nil, err
	}

	return decodeConnectionTest(res.Payload)
}
