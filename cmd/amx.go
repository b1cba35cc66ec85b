package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/amx"
	"github.com/bnema/amxbpm-admin-cli/internal/adapters/render/report"
	"github.com/bnema/amxbpm-admin-cli/internal/application"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/spf13/cobra"
)

const amxLineWidth = 95

var defaultLoopSeconds = int(application.DefaultPollInterval.Seconds())

var (
	environmentColumns = []report.Column{
		{Field: "name", Title: "Environment", Width: 20},
		{Field: "description", Title: "Description", Width: 40},
		{Field: "id", Title: "Id", Width: 10, AlignRight: true},
	}
	hostColumns = []report.Column{
		{Field: "name", Title: "Host", Width: 20},
		{Field: "version", Title: "Version", Width: 10},
		{Field: "state", Title: "State", Width: 15},
		{Field: "machine", Title: "Machine", Width: 20},
		{Field: "sync", Title: "In Synch", Width: 10, AlignRight: true},
	}
	nodeColumns = []report.Column{
		{Field: "name", Title: "Node", Width: 20},
		{Field: "host", Title: "Host", Width: 20},
		{Field: "machine", Title: "Machine", Width: 20},
		{Field: "state", Title: "State", Width: 15},
		{Field: "version", Title: "Version", Width: 10},
		{Field: "sync", Title: "In Synch", Width: 10, AlignRight: true},
	}
	deployedAppColumns = []report.Column{
		{Field: "name", Title: "Application", Width: 40},
		{Field: "version", Title: "Version", Width: 25},
		{Field: "environment", Title: "Environment", Width: 20},
		{Field: "folder", Title: "Folder", Width: 20},
		{Field: "deployed", Title: "Last Deployed", Width: 17},
		{Field: "sync", Title: "Sync", Width: 7, AlignRight: true},
		{Field: "state", Title: "State", Width: 10, AlignRight: true},
	}
	componentColumns = []report.Column{
		{Field: "path", Title: "Component", Width: 80, Truncate: 79},
		{Field: "node", Title: "Node", Width: 25},
		{Field: "state", Title: "State", Width: 20},
		{Field: "action", Title: "Action Status", Width: 20},
	}
)

type amxOptions struct {
	apps       bool
	summary    bool
	nodeStatus bool
	test       bool
	loop       int
}

func newAmxCmd(app *app) *cobra.Command {
	opts := amxOptions{}
	cmd := &cobra.Command{
		Use:   "amx",
		Short: "Report enterprise, host, node and application status",
		Long:  "amx reads environments, hosts and nodes from the administrator and, on 4.3 servers, the deployed applications and the amx.bpm.app component status per node.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAmx(cmd, app, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.apps, "apps", "a", false, "list every deployed application")
	cmd.Flags().BoolVarP(&opts.summary, "summary", "s", false, "show summary information only")
	cmd.Flags().BoolVarP(&opts.nodeStatus, "nodestatus", "n", false, "show amx.bpm.app component status per node")
	cmd.Flags().BoolVarP(&opts.test, "test", "t", false, "poll until interrupted, waiting for the administrator to come up")
	cmd.Flags().IntVarP(&opts.loop, "loop", "l", defaultLoopSeconds, "seconds between polls in test mode")

	return cmd
}

func runAmx(cmd *cobra.Command, app *app, opts amxOptions) error {
	run, err := app.start(cmd, "amx")
	if err != nil {
		return err
	}
	defer run.close()

	if opts.nodeStatus {
		opts.apps = false
	}
	if err := run.banner(amxLineWidth); err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := run.login(ctx, opts.test)
	if err != nil {
		return err
	}

	service := application.NewStatusService(
		run.adminClient(session),
		amx.StatusClient{Session: session},
		app.clock,
		run.logger,
	)
	statusOpts := application.AmxStatusOptions{
		Summary:     opts.summary,
		Apps:        opts.apps,
		NodeStatus:  opts.nodeStatus,
		StatusPages: session.XSRFToken != "",
	}
	if !statusOpts.StatusPages {
		run.logger.Info("Administrator publishes no status pages, application status is not available")
	}

	return run.poller(run.interval(cmd, opts.loop)).Run(ctx, opts.test, func(ctx context.Context) error {
		snapshot, err := service.AmxStatus(ctx, statusOpts)
		if err != nil {
			return err
		}
		return run.emit(amxReport(snapshot, statusOpts))
	})
}

func amxReport(s application.AmxSnapshot, opts application.AmxStatusOptions) report.Report {
	rep := report.Report{Width: amxLineWidth}

	if s.Overview != nil {
		rep.Blocks = append(rep.Blocks, report.Block{Lines: overviewLines(*s.Overview)})
	}

	if !opts.Summary {
		rep.Blocks = append(rep.Blocks,
			framedTable(environmentColumns, environmentRecords(s.Environments)),
			framedTable(hostColumns, hostRecords(s.Hosts)),
		)
	}

	for _, group := range s.Nodes {
		if len(group.Nodes) == 0 {
			continue
		}
		block := framedTable(nodeColumns, nodeRecords(group.Nodes))
		block.Lines = append([]string{"", "Environment: " + group.Environment.Name}, block.Lines...)
		rep.Blocks = append(rep.Blocks, block)
	}

	if !opts.StatusPages {
		return rep
	}

	records := deployedAppRecords(s.Applications)
	if opts.Apps {
		rep.Blocks = append(rep.Blocks, framedTable(deployedAppColumns, records))
	}

	lines := append([]string{""}, framed(fmt.Sprintf("%-30s", "App Status Summary"))...)
	for _, count := range report.CountBy(records, "state") {
		lines = append(lines, fmt.Sprintf("%-20s%10d", count.Value, count.Count))
	}
	lines = append(lines, "", fmt.Sprintf("%s version : %s state : %s", s.BPMApp.Name, s.BPMApp.Version, s.BPMApp.State))
	rep.Blocks = append(rep.Blocks, report.Block{Lines: lines})

	if opts.NodeStatus {
		rep.Blocks = append(rep.Blocks, nodeStatusBlocks(s, opts.Summary)...)
	}

	return rep
}

func overviewLines(o domain.EnterpriseOverview) []string {
	lines := framed(fmt.Sprintf("%-20s%20s", "Enterprise", o.Name))
	for _, row := range [][2]string{
		{"Admin Version", o.AdminVersion},
		{"Environments", o.Environments},
		{"Hosts", o.Hosts},
		{"Nodes", o.Nodes},
		{"Machines", o.Machines},
		{"Applications", o.Applications},
		{"Resources", o.Resources},
	} {
		lines = append(lines, fmt.Sprintf("%-20s%20s", row[0], row[1]))
	}
	return append(lines, "")
}

func nodeStatusBlocks(s application.AmxSnapshot, summary bool) []report.Block {
	blocks := make([]report.Block, 0, len(s.NodeRollups)+2)
	if !summary {
		blocks = append(blocks, framedTable(componentColumns, componentRecords(s.Components)))
	}

	blocks = append(blocks, report.Block{Lines: append([]string{""}, framed("Node Component Info Summary")...)})
	for _, rollup := range s.NodeRollups {
		lines := append([]string{""}, framed("Node: "+rollup.NodeName)...)
		for _, count := range report.CountBy(componentRecords(rollup.Components), "state") {
			lines = append(lines, fmt.Sprintf("%-20s%10d", count.Value, count.Count))
		}
		if rollup.RunningOK() {
			lines = append(lines, "", "This node is Running OK")
		}
		blocks = append(blocks, report.Block{Lines: lines})
	}
	return blocks
}

// framedTable puts the column titles between two rules as long as the title
// line, the way every amxctl listing starts.
func framedTable(columns []report.Column, records []domain.Record) report.Block {
	return report.Block{
		Lines: framed(report.HeaderRow("", columns)),
		Table: &report.Table{Columns: columns, Records: records, NoHeader: true},
	}
}

func framed(message string) []string {
	return report.Header(message, len(message))
}

func record(pairs ...string) domain.Record {
	r := domain.NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

func environmentRecords(envs []domain.Environment) []domain.Record {
	records := make([]domain.Record, 0, len(envs))
	for _, env := range envs {
		records = append(records, record("name", env.Name, "description", env.Description, "id", env.ID))
	}
	return records
}

func hostRecords(hosts []domain.Host) []domain.Record {
	records := make([]domain.Record, 0, len(hosts))
	for _, host := range hosts {
		records = append(records, record(
			"name", host.Name,
			"version", host.Version,
			"state", host.Status,
			"machine", host.Machine,
			"sync", host.Synchronized,
		))
	}
	return records
}

func nodeRecords(nodes []domain.Node) []domain.Record {
	records := make([]domain.Record, 0, len(nodes))
	for _, node := range nodes {
		records = append(records, record(
			"name", node.Name,
			"host", node.Host,
			"machine", node.Machine,
			"state", node.State,
			"version", node.Version,
			"sync", node.Synchronized,
		))
	}
	return records
}

func deployedAppRecords(apps []domain.Application) []domain.Record {
	records := make([]domain.Record, 0, len(apps))
	for _, a := range apps {
		records = append(records, record(
			"name", a.Name,
			"version", a.Version,
			"environment", a.Environment,
			"folder", a.Folder,
			"deployed", a.LastDeployed,
			"sync", a.Sync,
			"state", a.State,
		))
	}
	return records
}

func componentRecords(components []domain.ComponentRollup) []domain.Record {
	records := make([]domain.Record, 0, len(components))
	for _, c := range components {
		records = append(records, record(
			"path", c.Path,
			"node", c.NodeName,
			"state", c.State,
			"action", c.ActionStatus,
		))
	}
	return records
}
