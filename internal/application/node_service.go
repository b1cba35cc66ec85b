package application

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

const (
	BPMEnvironmentMarker = "BPM"
	DefaultConnectDelay  = 30 * time.Second
	runningState         = "RUNNING"
	stoppedState         = "STOPPED"
)

var readinessIgnored = []string{"amx.bpm.apacheds", "com.tibco.amx.platform"}

// NodeService inspects the applications mapped to a BPM node over HTTP basic
// authentication.
type NodeService struct {
	nodes        ports.NodeAppService
	clock        ports.Clock
	logger       logrus.FieldLogger
	connectDelay time.Duration
}

func NewNodeService(nodes ports.NodeAppService, clock ports.Clock, logger logrus.FieldLogger) *NodeService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &NodeService{
		nodes:        nodes,
		clock:        clock,
		logger:       logger,
		connectDelay: DefaultConnectDelay,
	}
}

// LocateBPMNode finds the environment whose name contains "BPM" and its
// first node. With wait set, failed environment lookups are retried until
// ctx is done.
func (s *NodeService) LocateBPMNode(ctx context.Context, wait bool) (domain.Environment, domain.Node, error) {
	env, err := s.bpmEnvironment(ctx, wait)
	if err != nil {
		return domain.Environment{}, domain.Node{}, err
	}

	nodes, err := s.nodes.NodeSummaries(ctx, env)
	if err != nil {
		return env, domain.Node{}, fmt.Errorf("list nodes of %s: %w", env.Name, err)
	}
	if len(nodes) == 0 {
		return env, domain.Node{}, fmt.Errorf("environment %s: %w", env.Name, domain.ErrNodeNotFound)
	}

	s.logger.Infof("%s : %s", nodes[0].Name, nodes[0].ID)
	return env, nodes[0], nil
}

func (s *NodeService) bpmEnvironment(ctx context.Context, wait bool) (domain.Environment, error) {
	for {
		envs, err := s.nodes.Environments(ctx)
		if err == nil {
			for _, env := range envs {
				if domain.MatchesEnvironment(env.Name, BPMEnvironmentMarker, true) {
					s.logger.Infof("%s : %s", env.Name, env.ID)
					return env, nil
				}
			}
			s.logger.Info("Could not get BPM Env Info")
			return domain.Environment{}, domain.ErrEnvironmentNotFound
		}

		if ctx.Err() != nil || !wait {
			s.logger.Info("Could not get BPM Env Info")
			return domain.Environment{}, fmt.Errorf("list environments: %w", err)
		}

		s.logger.WithError(err).Warnf("Waiting %s for the administrator", s.connectDelay)
		if err := s.clock.Sleep(ctx, s.connectDelay); err != nil {
			return domain.Environment{}, err
		}
	}
}

// NodeApplications reports every application mapped to node, sorted by
// name. Applications whose summary cannot be read are UNKNOWN.
func (s *NodeService) NodeApplications(ctx context.Context, node domain.Node, opts NodeAppsOptions) (NodeApps, error) {
	start := s.clock.Now()

	mapped, err := s.nodes.ApplicationsOnNode(ctx, node)
	if err != nil {
		return NodeApps{}, fmt.Errorf("applications on %s: %w", node.Name, err)
	}

	apps := make([]domain.Application, 0, len(mapped))
	for _, app := range mapped {
		if opts.Visit != nil {
			opts.Visit(app)
		}

		app.State = domain.StateUnknown
		if app.ID != "" {
			summary, err := s.nodes.ApplicationSummary(ctx, app.ID, "")
			switch {
			case ctx.Err() != nil:
				return NodeApps{}, ctx.Err()
			case err != nil:
				s.logger.WithError(err).Warnf("No summary for %s", app.Name)
			default:
				app.State = summary.State
				app.Folder = summary.Folder
				app.Version = summary.Version
				app.Sync = summary.Sync
			}
		}

		if opts.Filter != "" && !strings.Contains(app.Name, opts.Filter) {
			continue
		}
		if opts.NotRunning && strings.EqualFold(app.State, runningState) {
			continue
		}
		apps = append(apps, app)
	}

	slices.SortStableFunc(apps, func(a, b domain.Application) int {
		return strings.Compare(a.Name, b.Name)
	})

	return NodeApps{Applications: apps, Elapsed: s.clock.Now().Sub(start)}, nil
}

// Readiness checks that every application mapped to the node named nodeName
// runs there. progress is told how many applications have been checked.
// On a lookup failure the applications classified so far are returned with
// the error.
func (s *NodeService) Readiness(ctx context.Context, nodeName string, progress func(done, total int)) (Readiness, error) {
	env, err := s.bpmEnvironment(ctx, false)
	if err != nil {
		return Readiness{}, err
	}

	nodes, err := s.nodes.NodeSummaries(ctx, env)
	if err != nil {
		return Readiness{}, fmt.Errorf("list nodes of %s: %w", env.Name, err)
	}
	index := slices.IndexFunc(nodes, func(n domain.Node) bool { return n.Name == nodeName })
	if index < 0 {
		return Readiness{}, fmt.Errorf("%s: %w", nodeName, domain.ErrNodeNotFound)
	}
	node := nodes[index]

	apps, err := s.nodes.ApplicationsOnNode(ctx, node)
	if err != nil {
		return Readiness{}, fmt.Errorf("applications on %s: %w", node.Name, err)
	}

	result := Readiness{Total: len(apps)}
	if progress != nil {
		progress(0, len(apps))
	}
	for i, app := range apps {
		if app.ID == "" || slices.Contains(readinessIgnored, app.Name) {
			result.Ignored = append(result.Ignored, app.Name)
		} else {
			summary, err := s.nodes.ApplicationSummary(ctx, app.ID, node.Name)
			if err != nil {
				return result, fmt.Errorf("summary of %s: %w", app.Name, err)
			}

			switch strings.ToUpper(summary.State) {
			case runningState:
				result.Running = append(result.Running, app.Name)
			case stoppedState:
				result.Stopped = append(result.Stopped, app.Name)
			default:
				result.Incomplete = append(result.Incomplete, app.Name)
			}
		}

		if progress != nil {
			progress(i+1, len(apps))
		}
	}

	return result, nil
}
