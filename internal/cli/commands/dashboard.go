package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/opengovern/scope-bridge/internal/cli/output"
	"github.com/opengovern/scope-bridge/stores"
)

type dashboardView struct {
	Datasources int64 `json:"datasources" yaml:"datasources"`
	Queries     int64 `json:"queries" yaml:"queries"`
	Executions  int64 `json:"executions" yaml:"executions"`
	Failed      int64 `json:"failed" yaml:"failed"`
}

func NewDashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize datasources, queries and executions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			d := stores.NewDashboard(app.Client)
			err = d.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			v := dashboardView{
				Datasources: d.Datasources.Total(),
				Queries:     d.Queries.Total(),
			}

			if s := d.History.Stats(); s != nil {
				v.Executions = s.TotalQueries
				v.Failed = s.FailedQueries
			}

			return app.Renderer.Render(v, output.Table{
				Header: table.Row{"Datasources", "Queries", "Executions", "Failed"},
				Rows:   []table.Row{{v.Datasources, v.Queries, v.Executions, v.Failed}},
			})
		},
	}
}
