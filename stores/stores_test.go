package stores_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	scopebridge "github.com/opengovern/scope-bridge"
	"github.com/opengovern/scope-bridge/api"
	"github.com/opengovern/scope-bridge/internal/testutil"
	"github.com/opengovern/scope-bridge/mock"
	"github.com/opengovern/scope-bridge/stores"
	"github.com/opengovern/scope-bridge/utils"
)

func newClient(t *testing.T, transport *mock.MockTransport) *api.Client {
	t.Helper()

	client, _ := newNotifiedClient(t, transport)
	return client
}

func newNotifiedClient(t *testing.T, transport *mock.MockTransport) (*api.Client, *mock.RecordingNotifier) {
	t.Helper()

	notifier := &mock.RecordingNotifier{}
	b, err := scopebridge.NewBridge(transport,
		scopebridge.WithNotifier(notifier),
		scopebridge.WithLogger(testutil.NewTestLogger(t)),
	)
	require.NoError(t, err)

	return api.NewClient(b), notifier
}

func TestDatasourceStore(t *testing.T) {
	transport := mock.NewMockTransport()
	transport.Handle("GET", "/api/datasources", mock.Envelope(200, "ok", `{"total":3,"list":[{"id":"1"},{"id":"2"}]}`))
	transport.Handle("DELETE", "/api/datasources/2", mock.Envelope(200, "ok", ""))
	transport.Handle("DELETE", "/api/datasources/7", mock.Envelope(1002, "datasource not found", ""))

	s := stores.NewDatasourceStore(newClient(t, transport))
	ctx := context.Background()

	items, err := s.Fetch(ctx, api.DatasourceFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, int64(3), s.Total())

	require.NoError(t, s.Remove(ctx, "2"))
	require.Equal(t, []api.Datasource{{ID: "1"}}, s.Items())
	require.Equal(t, int64(2), s.Total())

	err = s.Remove(ctx, "7")
	require.True(t, scopebridge.IsCode(err, 1002))
	require.Len(t, s.Items(), 1)
	require.Equal(t, int64(2), s.Total())
}

func TestDatasourceStore_FetchFailureKeepsCache(t *testing.T) {
	transport := mock.NewMockTransport(
		mock.Envelope(200, "ok", `{"total":1,"list":[{"id":"1"}]}`),
		mock.JSON(500, `{"message":"down"}`),
	)

	s := stores.NewDatasourceStore(newClient(t, transport))

	_, err := s.Fetch(context.Background(), api.DatasourceFilter{})
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), api.DatasourceFilter{})
	require.Error(t, err)
	require.Len(t, s.Items(), 1)
}

func TestQueryStore(t *testing.T) {
	transport := mock.NewMockTransport()
	transport.Handle("GET", "/api/v1/queries", mock.Envelope(200, "ok", `{"total":2,"list":[{"id":"a","status":"draft"},{"id":"b","status":"draft"}]}`))
	transport.Handle("GET", "/api/v1/queries/a", mock.Envelope(200, "ok", `{"id":"a","status":"draft","sql":"select 1"}`))
	transport.Handle("POST", "/api/v1/queries/a/publish", mock.Envelope(200, "ok", ""))
	transport.Handle("POST", "/api/v1/queries/b/archive", mock.Envelope(200, "ok", ""))
	transport.Handle("DELETE", "/api/v1/queries/a", mock.Envelope(200, "ok", ""))
	transport.Handle("GET", "/api/v1/queries/history", mock.Envelope(200, "ok", `{"total":5,"list":[{"id":"e1","queryId":"a"}]}`))

	s := stores.NewQueryStore(newClient(t, transport))
	ctx := context.Background()

	_, err := s.FetchList(ctx, api.QueryFilter{})
	require.NoError(t, err)

	detail, err := s.FetchDetail(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "select 1", detail.SQL)

	require.NoError(t, s.Publish(ctx, "a"))
	require.Equal(t, api.QueryPublished, s.List()[0].Status)
	require.Equal(t, api.QueryPublished, s.Detail().Status)
	require.Equal(t, api.QueryDraft, detail.Status)

	require.NoError(t, s.Archive(ctx, "b"))
	require.Equal(t, api.QueryArchived, s.List()[1].Status)
	require.Equal(t, api.QueryPublished, s.Detail().Status)

	require.NoError(t, s.Delete(ctx, "a"))
	require.Len(t, s.List(), 1)
	require.Equal(t, int64(1), s.Total())
	require.Nil(t, s.Detail())

	history, err := s.FetchHistory(ctx, api.ExecutionFilter{QueryID: "a"})
	require.NoError(t, err)
	require.Len(t, history, 1)

	_, total := s.History()
	require.Equal(t, int64(5), total)
}

func TestHistoryStore(t *testing.T) {
	transport := mock.NewMockTransport()
	transport.Handle("GET", "/api/query-histories", mock.Envelope(200, "ok", `{"content":[{"id":"h1"}],"totalElements":40}`))
	transport.Handle("GET", "/api/query-histories/stats", mock.Envelope(200, "ok", `{"totalQueries":40,"failedQueries":4}`))

	s := stores.NewHistoryStore(newClient(t, transport))
	ctx := context.Background()

	require.Nil(t, s.Stats())

	items, err := s.Fetch(ctx, api.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int64(40), s.Total())

	stats, err := s.FetchStats(ctx, api.StatsFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(4), stats.FailedQueries)
	require.Equal(t, int64(40), s.Stats().TotalQueries)
}

func TestSessionStore(t *testing.T) {
	transport := mock.NewMockTransport()
	transport.Handle("POST", "/api/auth/login", mock.Envelope(200, "ok", `{"token":"opaque","userInfo":{"id":"1","username":"analyst","roles":["viewer"],"permissions":["query:execute"]}}`))
	transport.Handle("POST", "/api/auth/logout", mock.JSON(401, `{"message":"expired"}`))
	transport.Handle("GET", "/api/v1/queries/q", mock.Envelope(200, "ok", `{"id":"q"}`))

	client := newClient(t, transport)
	s := stores.NewSessionStore(client, utils.NewSessionTokenSource())
	ctx := context.Background()

	require.False(t, s.IsLoggedIn())
	require.False(t, s.HasRole("viewer"))

	tok, err := s.Login(ctx, "analyst", "pw")
	require.NoError(t, err)
	require.Equal(t, "opaque", tok.AccessToken)
	require.True(t, s.IsLoggedIn())
	require.Equal(t, "analyst", s.User().Username)
	require.True(t, s.HasRole("viewer"))
	require.False(t, s.HasRole("admin"))
	require.True(t, s.HasPermission("query:execute"))
	require.False(t, s.HasPermission("datasource:delete"))

	_, err = client.GetQuery(ctx, "q")
	require.NoError(t, err)
	require.Equal(t, "Bearer opaque", transport.LastRequest().Headers["Authorization"])

	err = s.Logout(ctx)
	require.True(t, scopebridge.IsCode(err, 401))
	require.False(t, s.IsLoggedIn())
	require.Nil(t, s.User())
}

func TestSessionStore_WildcardPermission(t *testing.T) {
	transport := mock.NewMockTransport(mock.Envelope(200, "ok", `{"token":"t","userInfo":{"username":"admin","roles":["admin"],"permissions":["*"]}}`))
	s := stores.NewSessionStore(newClient(t, transport), utils.NewSessionTokenSource())

	_, err := s.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	require.True(t, s.HasPermission("anything"))
}

func TestDashboardRefresh(t *testing.T) {
	transport := mock.NewMockTransport()
	transport.Handle("GET", "/api/datasources", mock.Envelope(200, "ok", `{"total":1,"list":[{"id":"1"}]}`))
	transport.Handle("GET", "/api/v1/queries", mock.Envelope(200, "ok", `{"total":2,"list":[{"id":"a"},{"id":"b"}]}`))
	transport.Handle("GET", "/api/query-histories/stats", mock.Envelope(200, "ok", `{"totalQueries":9}`))

	d := stores.NewDashboard(newClient(t, transport))
	require.NoError(t, d.Refresh(context.Background()))

	require.Len(t, d.Datasources.Items(), 1)
	require.Equal(t, int64(2), d.Queries.Total())
	require.Equal(t, int64(9), d.History.Stats().TotalQueries)
	require.Equal(t, 3, transport.Calls())
	require.Zero(t, scopebridge.InFlight())
}

func TestDashboardRefresh_Failure(t *testing.T) {
	transport := mock.NewMockTransport()
	transport.Handle("GET", "/api/datasources", mock.Envelope(200, "ok", `{"total":0,"list":[]}`))
	transport.Handle("GET", "/api/v1/queries", mock.JSON(503, `{"message":"maintenance"}`))
	transport.Handle("GET", "/api/query-histories/stats", mock.Envelope(200, "ok", `{}`))

	err := stores.NewDashboard(newClient(t, transport)).Refresh(context.Background())
	require.True(t, scopebridge.IsCode(err, 503))
	require.ErrorContains(t, err, "maintenance")
}

func TestDashboardRefresh_OneNotificationPerFailure(t *testing.T) {
	slow := func(r mock.Reply) mock.Reply {
		r.Delay = 200 * time.Millisecond
		return r
	}

	transport := mock.NewMockTransport()
	transport.Handle("GET", "/api/datasources", mock.JSON(500, `{"message":"boom"}`))
	transport.Handle("GET", "/api/v1/queries", slow(mock.Envelope(200, "ok", `{"total":0,"list":[]}`)))
	transport.Handle("GET", "/api/query-histories/stats", slow(mock.Envelope(200, "ok", `{}`)))

	client, notifier := newNotifiedClient(t, transport)

	err := stores.NewDashboard(client).Refresh(context.Background())
	require.True(t, scopebridge.IsCode(err, 500))
	require.Equal(t, []string{"boom (GET /api/datasources)"}, notifier.Messages())
}

func TestSessionStore_LoginReplacesExpiredSession(t *testing.T) {
	transport := mock.NewMockTransport()
	transport.Handle("POST", "/api/auth/login", mock.Envelope(200, "ok", `{"token":"fresh","userInfo":{"username":"analyst"}}`))
	transport.Handle("GET", "/api/datasources", mock.Envelope(200, "ok", `{"total":0,"list":[]}`))

	client := newClient(t, transport)
	tokens := utils.NewSessionTokenSource()
	s := stores.NewSessionStore(client, tokens)
	s.Restore(&oauth2.Token{AccessToken: "stale", TokenType: "Bearer", Expiry: time.Now().Add(-time.Hour)})
	require.False(t, s.IsLoggedIn())

	ctx := context.Background()
	_, err := s.Login(ctx, "analyst", "pw")
	require.NoError(t, err)
	require.True(t, s.IsLoggedIn())

	login := transport.LastRequest()
	require.NotContains(t, login.Headers, "Authorization")

	_, err = client.ListDatasources(ctx, api.DatasourceFilter{})
	require.NoError(t, err)
	require.Equal(t, "Bearer fresh", transport.LastRequest().Headers["Authorization"])
}
