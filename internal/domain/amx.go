package domain

import (
	"strconv"
	"strings"
)

const (
	StateRunning = "Running"
	StateUnknown = "UNKNOWN"
)

type Environment struct {
	ID          string
	Name        string
	Description string
}

type Host struct {
	Name         string
	Status       string
	Version      string
	Machine      string
	Synchronized string
}

type Node struct {
	ID           string
	Name         string
	Environment  string
	Host         string
	Machine      string
	State        string
	Version      string
	Synchronized string
}

type Folder struct {
	ID    string
	Name  string
	Path  string
	Level int
}

type Application struct {
	ID           string
	Name         string
	Version      string
	Sync         string
	State        string
	Folder       string
	Environment  string
	LastDeployed string
}

func (a Application) IsRunning() bool {
	return a.State == StateRunning
}

// ComponentRollup is one component of an application as seen on a node.
type ComponentRollup struct {
	NodeID       string
	NodeName     string
	Path         string
	State        string
	Version      string
	ActionStatus string
}

// NodeRollup groups component states observed on one node.
type NodeRollup struct {
	NodeName   string
	Components []ComponentRollup
	States     map[string]int
}

// RunningOK reports whether every component on the node is running.
func (n NodeRollup) RunningOK() bool {
	return len(n.States) == 1 && n.States[StateRunning] > 0
}

type DAA struct {
	ID              string
	FileName        string
	TemplateVersion string
	Used            bool
}

type EnterpriseOverview struct {
	Name         string
	AdminVersion string
	Hosts        string
	Nodes        string
	Machines     string
	Resources    string
	Applications string
	Environments string
}

type HaltedInstance struct {
	ID       string
	Template string
}

// RetryOutcome is the result line for one halted instance.
type RetryOutcome struct {
	Instance HaltedInstance
	Ignored  string
	OK       bool
	Code     int
	Err      error
}

func (o RetryOutcome) String() string {
	switch {
	case o.Ignored != "":
		return "ignored, " + o.Ignored + " in " + o.Instance.Template
	case o.OK:
		return "Retry OK"
	case o.Err != nil:
		return "KO " + o.Err.Error()
	default:
		return "Retry KO " + strconv.Itoa(o.Code)
	}
}

type ReleaseUnit struct {
	ComponentID string
	Version     string
}

// MatchesEnvironment reports whether name starts with prefix, or contains it
// when contains is set.
func MatchesEnvironment(name, prefix string, contains bool) bool {
	if contains {
		return strings.Contains(name, prefix)
	}
	return strings.HasPrefix(name, prefix)
}
