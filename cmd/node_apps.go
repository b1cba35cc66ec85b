package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/render/report"
	"github.com/bnema/amxbpm-admin-cli/internal/application"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/spf13/cobra"
)

const defaultNodeAppsLoop = 10

type nodeAppsOptions struct {
	filter     string
	bpmOnly    bool
	notRunning bool
	summary    bool
	test       bool
	loop       int
}

func newNodeAppsCmd(app *app) *cobra.Command {
	opts := nodeAppsOptions{}
	cmd := &cobra.Command{
		Use:   "node-apps",
		Short: "Report the applications mapped to the BPM node",
		Long:  "node-apps uses the HTTP basic authentication services of the administrator to list the applications of the first node of the BPM environment with their runtime state.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNodeApps(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.filter, "filter", "f", "", "only display applications whose name contains this text (default: [node] filter)")
	cmd.Flags().BoolVarP(&opts.bpmOnly, "amxbpm", "a", false, "only display the amx.bpm.app application")
	cmd.Flags().BoolVarP(&opts.notRunning, "notrunning", "n", false, "exclude running applications")
	cmd.Flags().BoolVarP(&opts.summary, "summary", "s", false, "show status counts only")
	cmd.Flags().BoolVarP(&opts.test, "test", "t", false, "poll until interrupted, waiting for the administrator to come up")
	cmd.Flags().IntVarP(&opts.loop, "loop", "l", defaultNodeAppsLoop, "seconds between polls in test mode")

	return cmd
}

// bpmAppFilter selects the BPM runtime application only.
const bpmAppFilter = "amx.bpm.app"

func runNodeApps(cmd *cobra.Command, app *app, opts nodeAppsOptions) error {
	run, err := app.start(cmd, "node-apps")
	if err != nil {
		return err
	}
	defer run.close()

	if opts.filter == "" {
		opts.filter = run.settings.Node.Filter
	}
	if opts.bpmOnly {
		opts.filter = bpmAppFilter
	}

	if err := run.banner(report.DefaultWidth); err != nil {
		return err
	}
	if err := run.print(nodeAppsOptionLines(opts)...); err != nil {
		return err
	}

	ctx := cmd.Context()
	password, err := run.password(ctx, run.settings.Admin.Password, run.settings.Admin.PasswordRef)
	if err != nil {
		return err
	}
	baseURL := run.settings.Admin.HostURL()
	run.logger.Infof("Connecting to %s", baseURL)

	service := application.NewNodeService(
		run.basicAdminClient(baseURL, run.settings.Admin.User, password),
		app.clock,
		run.logger,
	)
	_, node, err := service.LocateBPMNode(ctx, opts.test)
	if err != nil {
		return err
	}

	poller := run.poller(seconds(opts.loop))
	poller.Sleeping = func(_ int, d time.Duration) {
		run.logger.Infof("Sleeping (%d)", int(d.Seconds()))
	}

	appOpts := application.NodeAppsOptions{
		Filter:     opts.filter,
		NotRunning: opts.notRunning,
		Visit: func(a domain.Application) {
			run.logger.Debugf("Checking %s", a.Name)
		},
	}
	return poller.Run(ctx, opts.test, func(ctx context.Context) error {
		var result application.NodeApps
		fetch := func(ctx context.Context) error {
			var err error
			result, err = service.NodeApplications(ctx, node, appOpts)
			return err
		}

		var err error
		if opts.summary {
			err = runFetchSpinner(ctx, cmd.ErrOrStderr(), "Reading application states of "+node.Name+"...", fetch)
		} else {
			err = fetch(ctx)
		}
		if err != nil {
			return err
		}

		return run.emit(nodeAppsReport(result, opts.summary, app.now().Format(stampLayout)))
	})
}

func nodeAppsOptionLines(opts nodeAppsOptions) []string {
	lines := make([]string, 0, 4)
	if opts.notRunning {
		lines = append(lines, " Exclude Running Apps ")
	}
	if opts.filter != "" {
		lines = append(lines, " only display "+opts.filter+" ")
	}
	if opts.summary {
		lines = append(lines, " only display summary info ")
	}
	if opts.test {
		lines = append(lines, fmt.Sprintf(" refresh every %d seconds", opts.loop))
	}
	return lines
}

func nodeAppsReport(result application.NodeApps, summary bool, stamp string) report.Report {
	records := make([]domain.Record, 0, len(result.Applications))
	for _, a := range result.Applications {
		records = append(records, applicationRecord(a))
	}

	rep := report.Report{}
	if !summary {
		rep.Blocks = append(rep.Blocks, report.Block{
			Lines: report.Header(report.HeaderRow("", appColumns), report.DefaultWidth),
			Table: &report.Table{Columns: appColumns, Records: records, NoHeader: true},
		})
	}

	banner := fmt.Sprintf("%s %d applications in %s s", stamp, len(records), domain.FormatSeconds(result.Elapsed))
	rep.Blocks = append(rep.Blocks, report.Block{
		Lines: report.Header(banner, report.DefaultWidth),
		Table: &report.Table{
			Columns:  appColumns,
			Records:  records,
			HideRows: true,
			Summary:  &report.Summary{Field: "state"},
		},
		Rule: true,
	})
	return rep
}
