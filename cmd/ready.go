package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/application"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"
)

const (
	ExitNotStarted    = 10
	ExitPartlyStarted = 20

	progressWidth = 50
)

type readyOptions struct {
	adminURL string
	user     string
	password string
	node     string
}

func newReadyCmd(app *app) *cobra.Command {
	opts := readyOptions{}
	cmd := &cobra.Command{
		Use:   "ready",
		Short: "Check that every application of a BPM node is running",
		Long: "ready exits 0 when every application mapped to the node runs, 20 when some do and 10 when none does. " +
			"It is meant for service managers waiting on a node start.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReady(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.adminURL, "admin-url", "a", "", "administrator server root, e.g. http://host:8120")
	cmd.Flags().StringVarP(&opts.user, "user", "u", "", "administrator user")
	cmd.Flags().StringVarP(&opts.password, "pwd", "p", "", "administrator password")
	cmd.Flags().StringVarP(&opts.node, "node", "n", "", "BPM node name")
	for _, name := range []string{"admin-url", "user", "pwd", "node"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runReady(cmd *cobra.Command, app *app, opts readyOptions) error {
	run, err := app.start(cmd, "ready")
	if err != nil {
		return err
	}
	defer run.close()

	ctx := cmd.Context()
	service := application.NewNodeService(
		run.basicAdminClient(opts.adminURL, opts.user, opts.password),
		app.clock,
		run.logger,
	)

	bar := newProgressLine(cmd.ErrOrStderr(), app.now)
	result, err := service.Readiness(ctx, opts.node, func(done, total int) {
		if done == 0 {
			_ = run.print(fmt.Sprintf("Found %d apps to check", total))
		}
		bar.update(done, total)
	})
	bar.finish()

	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		_ = run.print("ERROR: " + err.Error())
		code := ExitNotStarted
		if len(result.Running) > 0 {
			code = ExitPartlyStarted
		}
		return &ExitError{Code: code, Err: err, Quiet: true}
	}

	lines := []string{fmt.Sprintf("running: %d stopped: %d incomplete: %d ignored: %d",
		len(result.Running), len(result.Stopped), len(result.Incomplete), len(result.Ignored))}
	if result.Ready() {
		return run.print(append(lines, "BPM node ready for application use")...)
	}

	lines = append(lines, "ERROR: BPM node not completly started")
	for _, name := range result.Stopped {
		lines = append(lines, "Stopped application: "+name)
	}
	for _, name := range result.Incomplete {
		lines = append(lines, "Incomplete application: "+name)
	}
	if err := run.print(lines...); err != nil {
		return err
	}
	return &ExitError{Code: result.ExitCode(), Err: fmt.Errorf("node %s not started", opts.node), Quiet: true}
}

// progressLine redraws a static progress bar in place on out.
type progressLine struct {
	out   io.Writer
	bar   progress.Model
	now   func() time.Time
	start time.Time
	drawn bool
}

func newProgressLine(out io.Writer, now func() time.Time) *progressLine {
	return &progressLine{
		out:   out,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth)),
		now:   now,
		start: now(),
	}
}

func (p *progressLine) update(done, total int) {
	percent := 1.0
	if total > 0 {
		percent = float64(done) / float64(total)
	}
	elapsed := int(p.now().Sub(p.start).Seconds())
	_, _ = fmt.Fprintf(p.out, "\rProgress: %s (%d s)", p.bar.ViewAs(percent), elapsed)
	p.drawn = true
}

func (p *progressLine) finish() {
	if p.drawn {
		_, _ = fmt.Fprintln(p.out)
	}
}
