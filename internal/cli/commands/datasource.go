package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/opengovern/scope-bridge/api"
	"github.com/opengovern/scope-bridge/internal/cli/output"
	"github.com/opengovern/scope-bridge/stores"
)

func NewDatasourceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasource",
		Aliases: []string{"ds"},
		Short:   "Manage datasources",
	}

	cmd.AddCommand(newDatasourceListCommand())
	cmd.AddCommand(newDatasourceGetCommand())
	cmd.AddCommand(newDatasourceDeleteCommand())
	cmd.AddCommand(newDatasourceTestCommand())

	return cmd
}

func newDatasourceListCommand() *cobra.Command {
	var filter api.DatasourceFilter
	var dsType, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List datasources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			filter.Type = api.DatasourceType(dsType)
			filter.Status = api.DatasourceStatus(status)

			store := stores.NewDatasourceStore(app.Client)
			items, err := store.Fetch(cmd.Context(), filter)
			if err != nil {
				return err
			}

			rows := make([]table.Row, 0, len(items))
			for _, d := range items {
				rows = append(rows, table.Row{d.ID, d.Name, d.Type, fmt.Sprintf("%s:%d/%s", d.Host, d.Port, d.Database), d.Status})
			}

			return app.Renderer.Render(api.Page[api.Datasource]{Total: store.Total(), List: items, Current: filter.Current, PageSize: filter.PageSize}, output.Table{
				Header: table.Row{"ID", "Name", "Type", "Address", "Status"},
				Rows:   rows,
				Footer: table.Row{"", "", "", "Total", store.Total()},
			})
		},
	}

	addPageFlags(cmd, &filter.PageParams)
	cmd.Flags().StringVar(&filter.Keyword, "keyword", "", "Filter by name keyword")
	cmd.Flags().StringVar(&dsType, "type", "", "Filter by type (MySQL|DB2)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (active|inactive|error)")

	return cmd
}

func newDatasourceGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a datasource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			d, err := app.Client.GetDatasource(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.Renderer.Render(d, output.Table{
				Header: table.Row{"Field", "Value"},
				Rows: []table.Row{
					{"ID", d.ID},
					{"Name", d.Name},
					{"Type", d.Type},
					{"Host", d.Host},
					{"Port", d.Port},
					{"Database", d.Database},
					{"Username", d.Username},
					{"Status", d.Status},
					{"Description", d.Description},
					{"Updated", d.UpdatedAt},
				},
			})
		},
	}
}

func newDatasourceDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a datasource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			err = app.Client.DeleteDatasource(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.Renderer.Message(fmt.Sprintf("datasource %s deleted", args[0]))
		},
	}
}

func newDatasourceTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test <id>",
		Short: "Test the connection of a datasource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			res, err := app.Client.TestDatasourceConnection(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.Renderer.Render(res, output.Table{
				Header: table.Row{"Success", "Message", "Details"},
				Rows:   []table.Row{{res.Success, res.Message, res.Details}},
			})
		},
	}
}
