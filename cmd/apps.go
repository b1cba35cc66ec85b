package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/render/report"
	"github.com/bnema/amxbpm-admin-cli/internal/application"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/spf13/cobra"
)

var appColumns = []report.Column{
	{Field: "id", Title: "Id", Width: 8},
	{Field: "name", Title: "Application", Width: 50, Truncate: 50},
	{Field: "version", Title: "Version", Width: 25},
	{Field: "sync", Title: "Sync", Width: 10, Truncate: 10},
	{Field: "state", Title: "Status", Width: 10},
}

type appsOptions struct {
	applications bool
	summary      bool
	test         bool
	loop         int
}

func newAppsCmd(app *app) *cobra.Command {
	opts := appsOptions{}
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "Walk the application folders of the BPM environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApps(cmd, app, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.applications, "applications", "a", false, "list applications without the folder tree")
	cmd.Flags().BoolVarP(&opts.summary, "summary", "s", false, "show status counts only")
	cmd.Flags().BoolVarP(&opts.test, "test", "t", false, "poll until interrupted, waiting for the administrator to come up")
	cmd.Flags().IntVarP(&opts.loop, "loop", "l", defaultLoopSeconds, "seconds between polls in test mode")

	return cmd
}

func runApps(cmd *cobra.Command, app *app, opts appsOptions) error {
	run, err := app.start(cmd, "apps")
	if err != nil {
		return err
	}
	defer run.close()

	if opts.applications {
		opts.summary = true
	}
	if err := run.banner(report.DefaultWidth); err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := run.login(ctx, opts.test)
	if err != nil {
		return err
	}

	service := application.NewStatusService(run.adminClient(session), nil, app.clock, run.logger)
	env, err := service.BPMEnvironment(ctx, run.settings.BPM.EnvironmentPrefix)
	if err != nil {
		return err
	}
	run.logger.Infof("%s : %s", env.Name, env.ID)

	return run.poller(run.interval(cmd, opts.loop)).Run(ctx, opts.test, func(ctx context.Context) error {
		var tree application.AppTree
		walk := func(ctx context.Context) error {
			var err error
			tree, err = service.AppTree(ctx, env, application.AppTreeOptions{
				Visit: func(a domain.Application) {
					run.logger.Debugf("%s %s %s", a.Folder, a.Name, a.State)
				},
			})
			return err
		}

		var err error
		if opts.summary {
			err = runFetchSpinner(ctx, cmd.ErrOrStderr(), "Walking application folders...", walk)
		} else {
			err = walk(ctx)
		}
		if err != nil {
			return err
		}

		return run.emit(appsReport(tree, opts, app.now().Format(stampLayout)))
	})
}

func appsReport(tree application.AppTree, opts appsOptions, stamp string) report.Report {
	rep := report.Report{}

	if !opts.summary {
		lines := make([]string, 0, len(tree.Entries))
		for _, entry := range tree.Entries {
			indent := application.Indent(entry.Level)
			switch {
			case entry.Folder != nil:
				lines = append(lines, indent+entry.Folder.Name)
			case entry.Application != nil:
				lines = append(lines, indent+" > "+report.FormatRow(appColumns, applicationRecord(*entry.Application)))
			}
		}
		rep.Blocks = append(rep.Blocks, report.Block{Lines: lines})
	}

	records := make([]domain.Record, 0, len(tree.Applications))
	for _, a := range tree.Applications {
		records = append(records, applicationRecord(a))
	}

	banner := fmt.Sprintf("%s %d applications in %s s", stamp, len(tree.Applications), domain.FormatSeconds(tree.Elapsed))
	rep.Blocks = append(rep.Blocks, report.Block{
		Lines: report.Header(banner, report.DefaultWidth),
		Table: &report.Table{
			Columns:  appColumns,
			Records:  records,
			Prefix:   "> ",
			NoHeader: true,
			HideRows: !opts.applications,
			Summary:  &report.Summary{Field: "state"},
		},
		Rule: true,
	})

	return rep
}

func applicationRecord(a domain.Application) domain.Record {
	return record(
		"id", a.ID,
		"name", a.Name,
		"version", a.Version,
		"sync", a.Sync,
		"state", a.State,
	)
}
