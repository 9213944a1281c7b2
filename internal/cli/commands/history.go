package commands

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/opengovern/scope-bridge/api"
	"github.com/opengovern/scope-bridge/internal/cli/output"
	"github.com/opengovern/scope-bridge/stores"
)

func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect executed statements",
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryGetCommand())
	cmd.AddCommand(newHistoryStatsCommand())
	cmd.AddCommand(newHistorySlowCommand())
	cmd.AddCommand(newHistoryFailuresCommand())

	return cmd
}

func historyTable(items []api.History) output.Table {
	rows := make([]table.Row, 0, len(items))
	for _, h := range items {
		rows = append(rows, table.Row{h.ID, h.DatasourceName, h.Status, h.ExecutionTime, h.AffectedRows, h.CreatedBy, h.CreatedAt, h.ErrorMessage})
	}

	return output.Table{
		Header: table.Row{"ID", "Datasource", "Status", "Time (ms)", "Rows", "By", "At", "Error"},
		Rows:   rows,
	}
}

// sinceFlag turns a lookback like 24h into an absolute start time.
func sinceFlag(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}

	return time.Now().Add(-d)
}

func newHistoryListCommand() *cobra.Command {
	var filter api.HistoryFilter
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List executed statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			filter.StartTime = sinceFlag(since)

			store := stores.NewHistoryStore(app.Client)
			items, err := store.Fetch(cmd.Context(), filter)
			if err != nil {
				return err
			}

			view := historyTable(items)
			view.Footer = table.Row{"", "", "", "", "", "", "Total", store.Total()}

			return app.Renderer.Render(items, view)
		},
	}

	cmd.Flags().IntVar(&filter.Page, "page", 0, "Page number, starting at 0")
	cmd.Flags().IntVar(&filter.Size, "size", api.DefaultPageSize, "Page size")
	cmd.Flags().StringVar(&filter.DatasourceID, "datasource", "", "Filter by datasource id")
	cmd.Flags().StringVar(&filter.Status, "status", "", "Filter by status (SUCCESS|FAILED)")
	cmd.Flags().DurationVar(&since, "since", 0, "Only statements executed within this lookback, e.g. 24h")

	return cmd
}

func newHistoryGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one executed statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			h, err := app.Client.GetHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.Renderer.Render(h, output.Table{
				Header: table.Row{"Field", "Value"},
				Rows: []table.Row{
					{"ID", h.ID},
					{"Datasource", h.DatasourceName},
					{"SQL", h.SQL},
					{"Status", h.Status},
					{"Time (ms)", h.ExecutionTime},
					{"Rows", h.AffectedRows},
					{"Error", h.ErrorMessage},
					{"From", h.ExecutionIP},
					{"By", h.CreatedBy},
					{"At", h.CreatedAt},
				},
			})
		},
	}
}

func newHistoryStatsCommand() *cobra.Command {
	var filter api.StatsFilter
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show execution statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			filter.StartTime = sinceFlag(since)

			s, err := stores.NewHistoryStore(app.Client).FetchStats(cmd.Context(), filter)
			if err != nil {
				return err
			}

			return app.Renderer.Render(s, statsTable(s))
		},
	}

	cmd.Flags().StringVar(&filter.DatasourceID, "datasource", "", "Filter by datasource id")
	cmd.Flags().DurationVar(&since, "since", 0, "Only statements executed within this lookback, e.g. 24h")

	return cmd
}

func statsTable(s *api.QueryStats) output.Table {
	return output.Table{
		Header: table.Row{"Metric", "Value"},
		Rows: []table.Row{
			{"Total", s.TotalQueries},
			{"Succeeded", s.SuccessQueries},
			{"Failed", s.FailedQueries},
			{"Avg time (ms)", s.AverageExecutionTime},
			{"Max time (ms)", s.MaxExecutionTime},
			{"Min time (ms)", s.MinExecutionTime},
			{"Affected rows", s.TotalAffectedRows},
		},
	}
}

func newHistorySlowCommand() *cobra.Command {
	var threshold time.Duration
	var limit int

	cmd := &cobra.Command{
		Use:   "slow",
		Short: "List statements slower than a threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			items, err := app.Client.GetSlowQueries(cmd.Context(), threshold.Milliseconds(), limit)
			if err != nil {
				return err
			}

			return app.Renderer.Render(items, historyTable(items))
		},
	}

	cmd.Flags().DurationVar(&threshold, "threshold", time.Second, "Execution time threshold")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of entries")

	return cmd
}

func newHistoryFailuresCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "failures",
		Short: "List recent failed statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			items, err := app.Client.GetRecentFailures(cmd.Context(), limit)
			if err != nil {
				return err
			}

			return app.Renderer.Render(items, historyTable(items))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of entries")

	return cmd
}
