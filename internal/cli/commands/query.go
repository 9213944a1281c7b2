package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/opengovern/scope-bridge/api"
	"github.com/opengovern/scope-bridge/internal/cli/output"
	"github.com/opengovern/scope-bridge/stores"
)

func NewQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "Manage and run saved queries",
	}

	cmd.AddCommand(newQueryListCommand())
	cmd.AddCommand(newQueryGetCommand())
	cmd.AddCommand(newQueryExecuteCommand())
	cmd.AddCommand(newQueryStatusCommand("publish", "Publish a draft query"))
	cmd.AddCommand(newQueryStatusCommand("archive", "Archive a query"))
	cmd.AddCommand(newQueryStatusCommand("delete", "Delete a query"))
	cmd.AddCommand(newQueryCancelCommand())
	cmd.AddCommand(newQueryExecutionsCommand())
	cmd.AddCommand(newQueryExportCommand())

	return cmd
}

func newQueryListCommand() *cobra.Command {
	var filter api.QueryFilter
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			filter.Status = api.QueryStatus(status)

			store := stores.NewQueryStore(app.Client)
			items, err := store.FetchList(cmd.Context(), filter)
			if err != nil {
				return err
			}

			rows := make([]table.Row, 0, len(items))
			for _, q := range items {
				rows = append(rows, table.Row{q.ID, q.Name, q.DatasourceName, q.Status, q.Creator, q.UpdatedAt})
			}

			return app.Renderer.Render(api.Page[api.Query]{Total: store.Total(), List: items, Current: filter.Current, PageSize: filter.PageSize}, output.Table{
				Header: table.Row{"ID", "Name", "Datasource", "Status", "Creator", "Updated"},
				Rows:   rows,
				Footer: table.Row{"", "", "", "", "Total", store.Total()},
			})
		},
	}

	addPageFlags(cmd, &filter.PageParams)
	cmd.Flags().StringVar(&filter.Keyword, "keyword", "", "Filter by name keyword")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (draft|published|archived)")
	cmd.Flags().StringVar(&filter.DatasourceID, "datasource", "", "Filter by datasource id")

	return cmd
}

func newQueryGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			q, err := stores.NewQueryStore(app.Client).FetchDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.Renderer.Render(q, output.Table{
				Header: table.Row{"Field", "Value"},
				Rows: []table.Row{
					{"ID", q.ID},
					{"Name", q.Name},
					{"Datasource", q.DatasourceID},
					{"Status", q.Status},
					{"Creator", q.Creator},
					{"SQL", q.SQL},
				},
			})
		},
	}
}

func newQueryExecuteCommand() *cobra.Command {
	var params executeFlags

	cmd := &cobra.Command{
		Use:   "execute <id>",
		Short: "Run a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			conditions, err := parseConditions(params.Conditions)
			if err != nil {
				return err
			}

			res, err := app.Client.ExecuteQuery(cmd.Context(), args[0], api.ExecuteParams{
				Conditions: conditions,
				Page:       params.Page,
				PageSize:   params.PageSize,
			})
			if err != nil {
				return err
			}

			return app.Renderer.Render(res, resultTable(res))
		},
	}

	cmd.Flags().StringArrayVarP(&params.Conditions, "param", "p", nil, "Query condition as key=value (repeatable)")
	cmd.Flags().IntVar(&params.Page, "page", 1, "Result page")
	cmd.Flags().IntVar(&params.PageSize, "page-size", 50, "Result page size")

	return cmd
}

type executeFlags struct {
	Conditions []string
	Page       int
	PageSize   int
}

// resultTable lays rows out with sorted column names; rows are maps and carry no order.
func resultTable(res *api.ExecutionResult) output.Table {
	seen := map[string]bool{}
	var cols []string
	for _, row := range res.Data {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}

	sort.Strings(cols)

	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c
	}

	rows := make([]table.Row, 0, len(res.Data))
	for _, row := range res.Data {
		r := make(table.Row, len(cols))
		for i, c := range cols {
			r[i] = row[c]
		}

		rows = append(rows, r)
	}

	total := res.Total
	if total == 0 {
		total = int64(len(res.Data))
	}

	var footer table.Row
	if len(cols) > 0 {
		footer = make(table.Row, len(cols))
		footer[0] = fmt.Sprintf("%d rows in %dms", total, res.ExecutionTime)
	}

	return output.Table{Header: header, Rows: rows, Footer: footer}
}

func newQueryStatusCommand(action string, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			store := stores.NewQueryStore(app.Client)
			switch action {
			case "publish":
				err = store.Publish(cmd.Context(), args[0])
			case "archive":
				err = store.Archive(cmd.Context(), args[0])
			case "delete":
				err = store.Delete(cmd.Context(), args[0])
			default:
				err = fmt.Errorf("unknown action %q", action)
			}

			if err != nil {
				return err
			}

			past := map[string]string{"publish": "published", "archive": "archived", "delete": "deleted"}[action]
			return app.Renderer.Message(fmt.Sprintf("query %s %s", args[0], past))
		},
	}
}

func newQueryCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id> <execution-id>",
		Short: "Cancel a running execution",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			err = app.Client.CancelExecution(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			return app.Renderer.Message(fmt.Sprintf("execution %s cancelled", args[1]))
		},
	}
}

func newQueryExecutionsCommand() *cobra.Command {
	var filter api.ExecutionFilter

	cmd := &cobra.Command{
		Use:   "executions",
		Short: "List executions of saved queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			store := stores.NewQueryStore(app.Client)
			items, err := store.FetchHistory(cmd.Context(), filter)
			if err != nil {
				return err
			}

			_, total := store.History()
			rows := make([]table.Row, 0, len(items))
			for _, e := range items {
				rows = append(rows, table.Row{e.ID, e.QueryName, e.Executor, e.Status, e.StartTime, e.Duration, e.Error})
			}

			return app.Renderer.Render(api.Page[api.Execution]{Total: total, List: items, Current: filter.Current, PageSize: filter.PageSize}, output.Table{
				Header: table.Row{"ID", "Query", "Executor", "Status", "Started", "Duration (ms)", "Error"},
				Rows:   rows,
			})
		},
	}

	addPageFlags(cmd, &filter.PageParams)
	cmd.Flags().StringVar(&filter.QueryID, "query", "", "Filter by query id")
	cmd.Flags().StringVar(&filter.Status, "status", "", "Filter by status (running|completed|failed|cancelled)")
	cmd.Flags().StringVar(&filter.StartTime, "since", "", "Only executions started after this time")
	cmd.Flags().StringVar(&filter.EndTime, "until", "", "Only executions started before this time")

	return cmd
}

func newQueryExportCommand() *cobra.Command {
	var conditions []string
	var out string
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export the result of a saved query to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			params, err := parseConditions(conditions)
			if err != nil {
				return err
			}

			d, err := app.Client.ExportQueryResult(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = filepath.Base(d.Filename)
			} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				path = filepath.Join(path, filepath.Base(d.Filename))
			}

			f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
			if err != nil {
				return fmt.Errorf("Failed to create %q: %w", path, err)
			}

			defer f.Close()

			var w io.Writer = f
			if !noProgress {
				bar := progressbar.NewOptions64(int64(len(d.Payload)),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("writing "+filepath.Base(path)),
					progressbar.OptionShowBytes(true),
					progressbar.OptionClearOnFinish(),
				)
				defer func() { _ = bar.Finish() }()

				w = io.MultiWriter(f, bar)
			}

			_, err = io.Copy(w, bytes.NewReader(d.Payload))
			if err != nil {
				return fmt.Errorf("Failed to write %q: %w", path, err)
			}

			err = f.Close()
			if err != nil {
				return err
			}

			return app.Renderer.Render(map[string]any{"file": path, "bytes": len(d.Payload), "contentType": d.ContentType}, output.Table{
				Header: table.Row{"File", "Bytes", "Content type"},
				Rows:   []table.Row{{path, len(d.Payload), d.ContentType}},
			})
		},
	}

	cmd.Flags().StringArrayVarP(&conditions, "param", "p", nil, "Query condition as key=value (repeatable)")
	cmd.Flags().StringVar(&out, "out", "", "Output file or directory (default: server-provided filename)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Do not show a progress bar")

	return cmd
}
