package application

import (
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
)

type AmxStatusOptions struct {
	Summary    bool
	Apps       bool
	NodeStatus bool
	// StatusPages is set when the console published an anti-forgery token,
	// which only 4.3 and later administrators do.
	StatusPages bool
}

type AppTreeOptions struct {
	// Visit is called for every application found, in walk order.
	Visit func(domain.Application)
}

type NodeAppsOptions struct {
	Filter     string
	NotRunning bool
	// Visit is called before each application summary is fetched.
	Visit func(domain.Application)
}

type DAAOptions struct {
	All    bool
	Remove bool
}

type HaltedOptions struct {
	Retry  bool
	Ignore []string
}

type AnalyseOptions struct {
	MinElapsed time.Duration
	ResetsOnly bool
}
