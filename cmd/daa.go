package cmd

import (
	"fmt"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/render/report"
	"github.com/bnema/amxbpm-admin-cli/internal/application"
	"github.com/spf13/cobra"
)

func newDAACmd(app *app) *cobra.Command {
	opts := application.DAAOptions{}
	cmd := &cobra.Command{
		Use:   "daa",
		Short: "List uploaded DAAs and remove the unused ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, err := app.start(cmd, "daa")
			if err != nil {
				return err
			}
			defer run.close()

			if err := run.banner(report.DefaultWidth); err != nil {
				return err
			}

			ctx := cmd.Context()
			session, err := run.login(ctx, false)
			if err != nil {
				return err
			}

			result, err := application.NewMaintenanceService(run.adminClient(session), nil, run.logger).CleanDAAs(ctx, opts)
			if err != nil {
				return err
			}
			return run.emit(daaReport(result))
		},
	}

	cmd.Flags().BoolVarP(&opts.Remove, "remove", "r", false, "delete unused DAAs")
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "also list DAAs still in use")

	return cmd
}

func daaReport(result application.DAAReport) report.Report {
	rep := report.Report{}
	for _, entry := range result.Entries {
		lines := framed(fmt.Sprintf("Template %s DAA %s In Use : %t", entry.DAA.TemplateVersion, entry.DAA.FileName, entry.DAA.Used))
		for _, summary := range entry.Summaries {
			lines = append(lines, "-- "+summary)
		}
		if entry.Err != nil {
			lines = append(lines, "Cannot delete this DAA")
		}
		rep.Blocks = append(rep.Blocks, report.Block{Lines: lines})
	}

	rep.Blocks = append(rep.Blocks, report.Block{
		Lines: framed(fmt.Sprintf("Total : %d Unused : %d Deleted : %d", result.Found, result.Unused, result.Deleted)),
	})
	return rep
}
