package stores

import (
	"context"
	"slices"
	"sync"

	"github.com/opengovern/scope-bridge/api"
)

type QueryStore struct {
	client *api.Client

	mu           sync.RWMutex
	list         []api.Query
	total        int64
	detail       *api.Query
	history      []api.Execution
	historyTotal int64
}

func NewQueryStore(client *api.Client) *QueryStore {
	return &QueryStore{client: client}
}

func (s *QueryStore) FetchList(ctx context.Context, filter api.QueryFilter) ([]api.Query, error) {
	page, err := s.client.ListQueries(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.list, s.total = nil, 0
	if page != nil {
		s.list, s.total = page.List, page.Total
	}

	return slices.Clone(s.list), nil
}

func (s *QueryStore) FetchDetail(ctx context.Context, id string) (*api.Query, error) {
	q, err := s.client.GetQuery(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.detail = q
	return copyQuery(q), nil
}

func (s *QueryStore) Publish(ctx context.Context, id string) error {
	err := s.client.PublishQuery(ctx, id)
	if err != nil {
		return err
	}

	s.setStatus(id, api.QueryPublished)
	return nil
}

func (s *QueryStore) Archive(ctx context.Context, id string) error {
	err := s.client.ArchiveQuery(ctx, id)
	if err != nil {
		return err
	}

	s.setStatus(id, api.QueryArchived)
	return nil
}

// Delete removes the query, drops it from the list and clears the detail if it was shown.
func (s *QueryStore) Delete(ctx context.Context, id string) error {
	err := s.client.DeleteQuery(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.list)
	s.list = slices.DeleteFunc(s.list, func(q api.Query) bool { return q.ID == id })
	if len(s.list) < n && s.total > 0 {
		s.total--
	}

	if s.detail != nil && s.detail.ID == id {
		s.detail = nil
	}

	return nil
}

func (s *QueryStore) FetchHistory(ctx context.Context, filter api.ExecutionFilter) ([]api.Execution, error) {
	page, err := s.client.ListExecutions(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history, s.historyTotal = nil, 0
	if page != nil {
		s.history, s.historyTotal = page.List, page.Total
	}

	return slices.Clone(s.history), nil
}

func (s *QueryStore) setStatus(id string, status api.QueryStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.list {
		if s.list[i].ID == id {
			s.list[i].Status = status
		}
	}

	if s.detail != nil && s.detail.ID == id {
		s.detail.Status = status
	}
}

func (s *QueryStore) List() []api.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.list)
}

func (s *QueryStore) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

func (s *QueryStore) Detail() *api.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyQuery(s.detail)
}

func (s *QueryStore) History() ([]api.Execution, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history), s.historyTotal
}

func copyQuery(q *api.Query) *api.Query {
	if q == nil {
		return nil
	}

	cp := *q
	return &cp
}
