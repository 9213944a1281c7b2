package stores

import (
	"context"
	"slices"
	"sync"

	"github.com/opengovern/scope-bridge/api"
)

type HistoryStore struct {
	client *api.Client

	mu    sync.RWMutex
	items []api.History
	total int64
	stats *api.QueryStats
}

func NewHistoryStore(client *api.Client) *HistoryStore {
	return &HistoryStore{client: client}
}

func (s *HistoryStore) Fetch(ctx context.Context, filter api.HistoryFilter) ([]api.History, error) {
	page, err := s.client.ListHistories(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items, s.total = nil, 0
	if page != nil {
		s.items, s.total = page.Content, page.TotalElements
	}

	return slices.Clone(s.items), nil
}

func (s *HistoryStore) FetchStats(ctx context.Context, filter api.StatsFilter) (*api.QueryStats, error) {
	stats, err := s.client.GetStats(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats = stats
	return s.statsLocked(), nil
}

func (s *HistoryStore) Items() []api.History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *HistoryStore) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Stats returns the last fetched stats, or nil.
func (s *HistoryStore) Stats() *api.QueryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

func (s *HistoryStore) statsLocked() *api.QueryStats {
	if s.stats == nil {
		return nil
	}

	cp := *s.stats
	return &cp
}
