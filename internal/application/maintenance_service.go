package application

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

// MaintenanceService runs the remedial actions: archive clean-up and halted
// instance retries.
type MaintenanceService struct {
	admin     ports.AdminService
	processes ports.ProcessManager
	logger    logrus.FieldLogger
}

func NewMaintenanceService(admin ports.AdminService, processes ports.ProcessManager, logger logrus.FieldLogger) *MaintenanceService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &MaintenanceService{
		admin:     admin,
		processes: processes,
		logger:    logger,
	}
}

// CleanDAAs lists uploaded archives. Unused ones are always reported and
// deleted when opts.Remove is set; used ones are reported with opts.All.
func (s *MaintenanceService) CleanDAAs(ctx context.Context, opts DAAOptions) (DAAReport, error) {
	daas, err := s.admin.UploadedDAAs(ctx)
	if err != nil {
		return DAAReport{}, fmt.Errorf("list uploaded daas: %w", err)
	}

	var report DAAReport
	for _, daa := range daas {
		report.Found++
		if !daa.Used {
			report.Unused++
		}
		if daa.Used && !opts.All {
			continue
		}

		entry := DAAEntry{DAA: daa}
		if !daa.Used && opts.Remove {
			summaries, err := s.admin.DeleteDAA(ctx, daa.ID)
			if err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				s.logger.WithError(err).Errorf("Cannot delete DAA %s", daa.FileName)
				entry.Err = err
			} else {
				entry.Deleted = true
				entry.Summaries = summaries
				report.Deleted++
			}
		}
		report.Entries = append(report.Entries, entry)
	}

	return report, nil
}

// Halted lists halted instances and, with opts.Retry, retries each one whose
// template matches no ignore string.
func (s *MaintenanceService) Halted(ctx context.Context, opts HaltedOptions) (HaltedReport, error) {
	instances, err := s.processes.HaltedInstances(ctx)
	if err != nil {
		return HaltedReport{}, fmt.Errorf("query halted instances: %w", err)
	}

	var report HaltedReport
	index := map[string]int{}
	for _, instance := range instances {
		position, seen := index[instance.Template]
		if !seen {
			position = len(report.Templates)
			index[instance.Template] = position
			report.Templates = append(report.Templates, TemplateCount{Template: instance.Template})
		}
		report.Templates[position].Count++

		outcome := domain.RetryOutcome{Instance: instance}
		if opts.Retry {
			if ignored, ok := matchIgnore(instance.Template, opts.Ignore); ok {
				outcome.Ignored = ignored
			} else {
				code, err := s.processes.RetryInstance(ctx, instance.ID)
				if err != nil && ctx.Err() != nil {
					return report, ctx.Err()
				}
				outcome.Code = code
				outcome.Err = err
				outcome.OK = err == nil && (code == http.StatusOK || code == http.StatusNoContent)
			}
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report, nil
}

func matchIgnore(template string, ignore []string) (string, bool) {
	for _, s := range ignore {
		if s != "" && strings.Contains(template, s) {
			return s, true
		}
	}
	return "", false
}

// SelectTransactions keeps the transactions shown by the log report. Totals
// always cover the whole log.
func SelectTransactions(transactions []domain.Transaction, totals domain.TransactionTotals, opts AnalyseOptions) LogReport {
	selected := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if opts.ResetsOnly && !tx.Reset {
			continue
		}
		if tx.Elapsed < opts.MinElapsed {
			continue
		}
		selected = append(selected, tx)
	}
	return LogReport{Transactions: selected, Totals: totals}
}
