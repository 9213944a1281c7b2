package api

import (
	"context"
	"errors"
	"strings"

	scopebridge "github.com/opengovern/scope-bridge"
)

var ErrEmptySQL = errors.New("sql cannot be empty")

func (c *Client) ParseSQL(ctx context.Context, req SQLParseRequest) (*SQLParseResult, error) {
	if strings.TrimSpace(req.SQL) == "" {
		return nil, ErrEmptySQL
	}

	return scopebridge.Post[*SQLParseResult](ctx, c.bridge, sqlParserPath+"/parse", req)
}

func (c *Client) ListTables(ctx context.Context, datasourceID string) ([]TableInfo, error) {
	if err := requireID(datasourceID); err != nil {
		return nil, err
	}

	return scopebridge.Get[[]TableInfo](ctx, c.bridge, sqlParserPath+"/tables/{datasource}",
		scopebridge.WithPathParam("datasource", datasourceID))
}

func (c *Client) GetTableInfo(ctx context.Context, datasourceID string, table string) (*TableInfo, error) {
	if err := requireID(datasourceID, table); err != nil {
		return nil, err
	}

	return scopebridge.Get[*TableInfo](ctx, c.bridge, sqlParserPath+"/tables/{datasource}/{table}",
		scopebridge.WithPathParam("datasource", datasourceID),
		scopebridge.WithPathParam("table", table),
	)
}
