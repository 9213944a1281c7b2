package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/opengovern/scope-bridge/api"
	"github.com/opengovern/scope-bridge/internal/cli/output"
)

func NewSQLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Parse SQL and browse datasource tables",
	}

	cmd.AddCommand(newSQLParseCommand())
	cmd.AddCommand(newSQLTablesCommand())
	cmd.AddCommand(newSQLTableCommand())

	return cmd
}

func newSQLParseCommand() *cobra.Command {
	var datasource string

	cmd := &cobra.Command{
		Use:   "parse <sql>",
		Short: "Parse a SQL statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			res, err := app.Client.ParseSQL(cmd.Context(), api.SQLParseRequest{SQL: strings.Join(args, " "), DatasourceID: datasource})
			if err != nil {
				return err
			}

			return app.Renderer.Render(res, output.Table{
				Header: table.Row{"Valid", "Type", "Tables", "Parameters", "Error"},
				Rows:   []table.Row{{res.Valid, res.Type, strings.Join(res.Tables, ", "), strings.Join(res.Parameters, ", "), res.Error}},
			})
		},
	}

	cmd.Flags().StringVar(&datasource, "datasource", "", "Datasource to resolve tables against")

	return cmd
}

func newSQLTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <datasource-id>",
		Short: "List the tables of a datasource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			tables, err := app.Client.ListTables(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([]table.Row, 0, len(tables))
			for _, t := range tables {
				rows = append(rows, table.Row{t.Name, t.Comment, len(t.Columns)})
			}

			return app.Renderer.Render(tables, output.Table{
				Header: table.Row{"Table", "Comment", "Columns"},
				Rows:   rows,
			})
		},
	}
}

func newSQLTableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "table <datasource-id> <table>",
		Short: "Describe a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			info, err := app.Client.GetTableInfo(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			rows := make([]table.Row, 0, len(info.Columns))
			for _, c := range info.Columns {
				rows = append(rows, table.Row{c.Name, c.Type, c.Nullable, c.Comment})
			}

			return app.Renderer.Render(info, output.Table{
				Header: table.Row{"Column", "Type", "Nullable", "Comment"},
				Rows:   rows,
			})
		},
	}
}
