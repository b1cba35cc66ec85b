package cmd

import (
	"fmt"
	"os"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/render/report"
	"github.com/bnema/amxbpm-admin-cli/internal/adapters/xmi"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/spf13/cobra"
)

var releaseUnitColumns = []report.Column{
	{Field: "component", Title: "Component Id", Width: 50},
	{Field: "version", Title: "Version", Width: 30},
}

func newDriversCmd(app *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "drivers",
		Short: "List the Oracle JDBC driver versions installed in a machine model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, err := app.start(cmd, "drivers")
			if err != nil {
				return err
			}
			defer run.close()

			if _, err := os.Stat(file); err != nil {
				_ = run.print(fmt.Sprintf("The file %s does not exist", file))
				return &ExitError{Code: ExitFailure, Err: err, Quiet: true}
			}

			units, err := xmi.ReleaseUnits(file, xmi.OracleJDBCFeature)
			if err != nil {
				return err
			}
			return run.emit(driversReport(run.title(), file, units))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", xmi.DefaultMachineModel, "machine.xmi file to read")

	return cmd
}

func driversReport(title, file string, units []domain.ReleaseUnit) report.Report {
	records := make([]domain.Record, 0, len(units))
	for _, unit := range units {
		records = append(records, record("component", unit.ComponentID, "version", unit.Version))
	}

	header := framedTable(releaseUnitColumns, records)
	header.Lines = append([]string{"Machine XMI File : " + file, ""}, header.Lines...)

	return report.Report{
		Width: amxLineWidth,
		Blocks: []report.Block{
			{Lines: report.Header(title, amxLineWidth)},
			header,
			{Lines: framed("The End")},
		},
	}
}
