package stores

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/opengovern/scope-bridge/api"
)

// Dashboard loads the landing page data: datasources, queries and execution stats.
type Dashboard struct {
	Datasources *DatasourceStore
	Queries     *QueryStore
	History     *HistoryStore
}

func NewDashboard(client *api.Client) *Dashboard {
	return &Dashboard{
		Datasources: NewDatasourceStore(client),
		Queries:     NewQueryStore(client),
		History:     NewHistoryStore(client),
	}
}

// Refresh fetches the first page of every store concurrently. The first failure cancels the
// others and is returned; stores that already loaded keep their new state.
func (d *Dashboard) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := d.Datasources.Fetch(ctx, api.DatasourceFilter{})
		return err
	})

	g.Go(func() error {
		_, err := d.Queries.FetchList(ctx, api.QueryFilter{})
		return err
	})

	g.Go(func() error {
		_, err := d.History.FetchStats(ctx, api.StatsFilter{})
		return err
	})

	return g.Wait()
}
