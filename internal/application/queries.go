package application

import (
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
)

const (
	BPMApplication = "amx.bpm.app"
	notAvailable   = "n/a"
)

type EnvironmentNodes struct {
	Environment domain.Environment
	Nodes       []domain.Node
}

// AmxSnapshot is one pass over the enterprise. Fields not requested by the
// options stay empty.
type AmxSnapshot struct {
	Overview     *domain.EnterpriseOverview
	Environments []domain.Environment
	Hosts        []domain.Host
	Nodes        []EnvironmentNodes
	Applications []domain.Application
	// BPMApp carries "n/a" version and state when the server did not list it.
	BPMApp      domain.Application
	Components  []domain.ComponentRollup
	NodeRollups []domain.NodeRollup
}

// TreeEntry is a folder or an application of the folder walk. Level is the
// folder depth, used for indentation only.
type TreeEntry struct {
	Level       int
	Folder      *domain.Folder
	Application *domain.Application
}

type AppTree struct {
	Environment  domain.Environment
	Entries      []TreeEntry
	Applications []domain.Application
	Elapsed      time.Duration
}

type NodeApps struct {
	Applications []domain.Application
	Elapsed      time.Duration
}

// Readiness classifies the applications mapped to one node.
type Readiness struct {
	Total      int
	Running    []string
	Stopped    []string
	Incomplete []string
	Ignored    []string
}

func (r Readiness) Ready() bool {
	return len(r.Running)+len(r.Ignored) == r.Total
}

// ExitCode is 0 when ready, 20 when the node is partly started and 10 when
// nothing runs.
func (r Readiness) ExitCode() int {
	switch {
	case r.Ready():
		return 0
	case len(r.Running) > 0:
		return 20
	default:
		return 10
	}
}

type DAAEntry struct {
	DAA       domain.DAA
	Deleted   bool
	Summaries []string
	Err       error
}

type DAAReport struct {
	Entries []DAAEntry
	Found   int
	Unused  int
	Deleted int
}

type TemplateCount struct {
	Template string
	Count    int
}

type HaltedReport struct {
	// Outcomes has one entry per instance; outcome fields are only set when
	// a retry was requested.
	Outcomes  []domain.RetryOutcome
	Templates []TemplateCount
}

func (r HaltedReport) Total() int {
	return len(r.Outcomes)
}

type LogReport struct {
	Transactions []domain.Transaction
	Totals       domain.TransactionTotals
}
