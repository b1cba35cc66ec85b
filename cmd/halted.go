package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/bpmrest"
	"github.com/bnema/amxbpm-admin-cli/internal/adapters/render/report"
	"github.com/bnema/amxbpm-admin-cli/internal/application"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const haltedRuleWidth = 80

type haltedOptions struct {
	retry      bool
	ignoreFile string
}

func newHaltedCmd(app *app) *cobra.Command {
	opts := haltedOptions{}
	cmd := &cobra.Command{
		Use:   "halted",
		Short: "List halted process instances and optionally retry them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHalted(cmd, app, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.retry, "retry", "r", false, "retry every halted instance not ignored")
	cmd.Flags().StringVarP(&opts.ignoreFile, "ignore", "i", "", "file of process template names, one per line, never retried")

	return cmd
}

func runHalted(cmd *cobra.Command, app *app, opts haltedOptions) error {
	run, err := app.start(cmd, "halted")
	if err != nil {
		return err
	}
	defer run.close()

	if err := run.print(framed(run.title())...); err != nil {
		return err
	}

	ctx := cmd.Context()
	password, err := run.password(ctx, run.settings.BPM.Password, run.settings.BPM.PasswordRef)
	if err != nil {
		return err
	}

	haltedOpts := application.HaltedOptions{Retry: opts.retry}
	if opts.ignoreFile != "" {
		if haltedOpts.Ignore, err = loadIgnoreFile(opts.ignoreFile, run.logger); err != nil {
			return err
		}
	}

	if err := run.print(framed("Calling " + run.settings.BPM.URL)...); err != nil {
		return err
	}

	processes := bpmrest.Client{
		BaseURL:    run.settings.BPM.URL,
		User:       run.settings.BPM.User,
		Password:   password,
		Query:      run.settings.BPM.HaltedQuery,
		HTTPClient: app.httpClient,
		Logger:     run.logger,
	}
	result, err := application.NewMaintenanceService(nil, processes, run.logger).Halted(ctx, haltedOpts)
	if err != nil {
		if ctx.Err() == nil {
			_ = run.print(framed("No Halted Instances Found")...)
		}
		return err
	}

	run.logger.Info("Found halted instances")
	return run.emit(haltedReport(result, opts.retry))
}

// loadIgnoreFile reads one template name per line. A missing file is
// reported and treated as empty.
func loadIgnoreFile(path string, logger logrus.FieldLogger) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("Ignore file specified, %s does not exist", path)
			return nil, nil
		}
		return nil, fmt.Errorf("open ignore file: %w", err)
	}
	defer file.Close()

	var ignore []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			ignore = append(ignore, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ignore file: %w", err)
	}
	return ignore, nil
}

func haltedReport(result application.HaltedReport, retry bool) report.Report {
	lines := make([]string, 0, len(result.Outcomes)+len(result.Templates)+4)
	for i, outcome := range result.Outcomes {
		status := ""
		if retry {
			status = outcome.String()
		}
		lines = append(lines, strings.TrimRight(fmt.Sprintf("%4d %-15s %-50s %-25s", i+1, outcome.Instance.ID, outcome.Instance.Template, status), " "))
	}

	lines = append(lines, report.Rule(haltedRuleWidth))
	for _, template := range result.Templates {
		lines = append(lines, fmt.Sprintf("%-75s %4d", template.Template, template.Count))
	}
	lines = append(lines, framed(fmt.Sprintf("%-75s %4d", "Halted Total", result.Total()))...)

	return report.Report{Blocks: []report.Block{{Lines: lines}}}
}
