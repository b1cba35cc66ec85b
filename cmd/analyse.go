package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/bpmlog"
	"github.com/bnema/amxbpm-admin-cli/internal/adapters/render/report"
	"github.com/bnema/amxbpm-admin-cli/internal/application"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/spf13/cobra"
)

const (
	analyseWidth       = 100
	analyseMonitorLoop = 30
	transactionStamp   = "2006-01-02 15:04:05.000000"
	defaultBPMLog      = "BPM.log"
)

type analyseOptions struct {
	file       string
	monitor    bool
	resetsOnly bool
	minSeconds int
}

func newAnalyseCmd(app *app) *cobra.Command {
	opts := analyseOptions{}
	cmd := &cobra.Command{
		Use:   "analyse",
		Short: "Pair web service requests and responses in a BPM log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyse(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", defaultBPMLog, "BPM log file to read")
	cmd.Flags().BoolVarP(&opts.monitor, "monitor", "m", false, "re-read the log every 30 seconds until interrupted")
	cmd.Flags().BoolVarP(&opts.resetsOnly, "reset", "r", false, "only show transactions with a connection reset")
	cmd.Flags().IntVarP(&opts.minSeconds, "seconds", "s", 0, "only show transactions lasting at least this many seconds")

	return cmd
}

func runAnalyse(cmd *cobra.Command, app *app, opts analyseOptions) error {
	run, err := app.start(cmd, "analyse")
	if err != nil {
		return err
	}
	defer run.close()

	if _, err := os.Stat(opts.file); err != nil {
		_ = run.print(fmt.Sprintf("The logfile %s does not exist", opts.file))
		return &ExitError{Code: ExitMissingFile, Err: fmt.Errorf("%s: %w", opts.file, domain.ErrLogFileNotFound), Quiet: true}
	}

	if err := run.print(report.Rule(analyseWidth), analyseTitle(run, opts)); err != nil {
		return err
	}

	selectOpts := application.AnalyseOptions{
		MinElapsed: seconds(opts.minSeconds),
		ResetsOnly: opts.resetsOnly,
	}
	poller := run.poller(seconds(analyseMonitorLoop))
	return poller.Run(cmd.Context(), opts.monitor, func(context.Context) error {
		analysis, err := bpmlog.ScanFile(opts.file)
		if err != nil {
			if errors.Is(err, domain.ErrLogFileNotFound) {
				_ = run.print(fmt.Sprintf("The logfile %s does not exist", opts.file))
				return &ExitError{Code: ExitMissingFile, Err: err, Quiet: true}
			}
			return err
		}
		if analysis.Skipped > 0 {
			run.logger.Debugf("Skipped %d malformed lines", analysis.Skipped)
		}

		selected := application.SelectTransactions(analysis.Transactions, analysis.Totals(), selectOpts)
		return run.emit(analyseReport(selected, app.now().Format(stampLayout)))
	})
}

func analyseTitle(run *commandRun, opts analyseOptions) string {
	title := fmt.Sprintf("%s Logfile %s", run.title(), opts.file)
	if opts.minSeconds > 0 {
		title += fmt.Sprintf(" minumum seconds %d", opts.minSeconds)
	}
	if opts.resetsOnly {
		title += " only show reset errors"
	}
	return title
}

func analyseReport(result application.LogReport, stamp string) report.Report {
	rule := report.Rule(analyseWidth)
	lines := []string{
		rule,
		stamp,
		rule,
		"ID          Start                       End                        Response    Elapsed  Reset Error",
		rule,
	}

	for _, tx := range result.Transactions {
		line := fmt.Sprintf("%-10s %27s %27s %8.8s %10.10s",
			tx.ID,
			tx.Start.Format(transactionStamp),
			tx.End.Format(transactionStamp),
			tx.Response,
			domain.FormatSeconds(tx.Elapsed),
		)
		if tx.Reset {
			line += " *reset*"
		}
		lines = append(lines, line)
	}

	totals := result.Totals
	lines = append(lines,
		rule,
		totalLine("Transactions   : ", fmt.Sprint(totals.Count)),
		totalLine("Reset Errors   : ", fmt.Sprint(totals.Resets)),
		totalLine("Avg Trans      : ", domain.FormatSeconds(totals.Average)),
		totalLine("Log Span mm:ss : ", domain.FormatSpan(totals.Span)),
		totalLine("Rate / s       : ", fmt.Sprintf("%.3f", totals.Rate())),
		rule,
		"",
	)

	return report.Report{Blocks: []report.Block{{Lines: lines}}}
}

func totalLine(label, value string) string {
	return fmt.Sprintf("%s %10s", label, value)
}
