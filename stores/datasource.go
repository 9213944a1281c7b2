// Package stores keeps the last fetched state of the console resources for consumers
// that render them, such as the CLI.
package stores

import (
	"context"
	"slices"
	"sync"

	"github.com/opengovern/scope-bridge/api"
)

type DatasourceStore struct {
	client *api.Client

	mu    sync.RWMutex
	items []api.Datasource
	total int64
}

func NewDatasourceStore(client *api.Client) *DatasourceStore {
	return &DatasourceStore{client: client}
}

// Fetch loads a page and replaces the cache. On failure the cache is left untouched.
func (s *DatasourceStore) Fetch(ctx context.Context, filter api.DatasourceFilter) ([]api.Datasource, error) {
	page, err := s.client.ListDatasources(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.total = 0
	if page != nil {
		s.items = page.List
		s.total = page.Total
	}

	return slices.Clone(s.items), nil
}

// Remove deletes the datasource and drops it from the cache.
func (s *DatasourceStore) Remove(ctx context.Context, id string) error {
	err := s.client.DeleteDatasource(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(d api.Datasource) bool { return d.ID == id })
	if len(s.items) < n && s.total > 0 {
		s.total--
	}

	return nil
}

func (s *DatasourceStore) Items() []api.Datasource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *DatasourceStore) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}
