package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

// StatusService reads enterprise and application state over a console
// session.
type StatusService struct {
	admin  ports.AdminService
	status ports.StatusService
	clock  ports.Clock
	logger logrus.FieldLogger
}

func NewStatusService(admin ports.AdminService, status ports.StatusService, clock ports.Clock, logger logrus.FieldLogger) *StatusService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &StatusService{
		admin:  admin,
		status: status,
		clock:  clock,
		logger: logger,
	}
}

func (s *StatusService) AmxStatus(ctx context.Context, opts AmxStatusOptions) (AmxSnapshot, error) {
	snapshot := AmxSnapshot{
		BPMApp: domain.Application{Name: BPMApplication, Version: notAvailable, State: notAvailable},
	}

	if opts.StatusPages && !opts.Summary {
		overview, err := s.status.EnterpriseOverview(ctx)
		if err != nil {
			return snapshot, fmt.Errorf("enterprise overview: %w", err)
		}
		snapshot.Overview = &overview
	}

	envs, err := s.admin.Environments(ctx)
	if err != nil {
		return snapshot, fmt.Errorf("list environments: %w", err)
	}
	snapshot.Environments = envs

	if !opts.Summary {
		hosts, err := s.admin.Hosts(ctx)
		if err != nil {
			return snapshot, fmt.Errorf("list hosts: %w", err)
		}
		snapshot.Hosts = hosts
	}

	for _, env := range envs {
		nodes, err := s.admin.Nodes(ctx, env)
		if err != nil {
			return snapshot, fmt.Errorf("list nodes: %w", err)
		}
		snapshot.Nodes = append(snapshot.Nodes, EnvironmentNodes{Environment: env, Nodes: nodes})
	}

	if !opts.StatusPages {
		return snapshot, nil
	}

	apps, err := s.status.Applications(ctx)
	if err != nil {
		return snapshot, fmt.Errorf("list applications: %w", err)
	}
	snapshot.Applications = apps
	for _, app := range apps {
		if app.Name == BPMApplication {
			snapshot.BPMApp = app
		}
	}

	if !opts.NodeStatus || snapshot.BPMApp.ID == "" {
		return snapshot, nil
	}

	components, err := s.admin.ComponentRollup(ctx, snapshot.BPMApp.ID)
	if err != nil {
		return snapshot, fmt.Errorf("component rollup: %w", err)
	}
	snapshot.Components = components
	snapshot.NodeRollups = RollupByNode(components)

	return snapshot, nil
}

// RollupByNode groups components per node in order of first appearance.
func RollupByNode(components []domain.ComponentRollup) []domain.NodeRollup {
	rollups := make([]domain.NodeRollup, 0, 2)
	index := map[string]int{}
	for _, component := range components {
		position, seen := index[component.NodeName]
		if !seen {
			position = len(rollups)
			index[component.NodeName] = position
			rollups = append(rollups, domain.NodeRollup{NodeName: component.NodeName, States: map[string]int{}})
		}
		rollups[position].Components = append(rollups[position].Components, component)
		rollups[position].States[component.State]++
	}
	return rollups
}

// BPMEnvironment returns the first environment whose name starts with prefix.
func (s *StatusService) BPMEnvironment(ctx context.Context, prefix string) (domain.Environment, error) {
	envs, err := s.admin.Environments(ctx)
	if err != nil {
		return domain.Environment{}, fmt.Errorf("list environments: %w", err)
	}

	for _, env := range envs {
		if domain.MatchesEnvironment(env.Name, prefix, false) {
			return env, nil
		}
	}
	return domain.Environment{}, fmt.Errorf("prefix %q: %w", prefix, domain.ErrEnvironmentNotFound)
}

// AppTree walks the folders of env depth first. The applications of a folder
// follow its sub-folders, and top-level applications come last.
func (s *StatusService) AppTree(ctx context.Context, env domain.Environment, opts AppTreeOptions) (AppTree, error) {
	start := s.clock.Now()
	tree := AppTree{Environment: env}

	folders, apps, err := s.admin.ApplicationView(ctx, env)
	if err != nil {
		return tree, fmt.Errorf("application view of %s: %w", env.Name, err)
	}

	for _, folder := range folders {
		if err := s.walkFolder(ctx, folder, &tree, opts.Visit); err != nil {
			return tree, err
		}
	}
	tree.addApplications(apps, 0, opts.Visit)

	tree.Elapsed = s.clock.Now().Sub(start)
	return tree, nil
}

func (s *StatusService) walkFolder(ctx context.Context, folder domain.Folder, tree *AppTree, visit func(domain.Application)) error {
	entry := folder
	tree.Entries = append(tree.Entries, TreeEntry{Level: folder.Level, Folder: &entry})

	subFolders, apps, err := s.admin.FolderView(ctx, folder)
	if err != nil {
		if errors.Is(err, domain.ErrNoResult) && ctx.Err() == nil {
			s.logger.WithError(err).Warnf("Nothing returned for folder %s", folder.Name)
			return nil
		}
		return fmt.Errorf("folder %s: %w", folder.Name, err)
	}

	for _, sub := range subFolders {
		if err := s.walkFolder(ctx, sub, tree, visit); err != nil {
			return err
		}
	}
	tree.addApplications(apps, folder.Level, visit)
	return nil
}

func (t *AppTree) addApplications(apps []domain.Application, level int, visit func(domain.Application)) {
	for i := range apps {
		app := apps[i]
		if app.Environment == "" {
			app.Environment = t.Environment.Name
		}
		t.Applications = append(t.Applications, app)
		t.Entries = append(t.Entries, TreeEntry{Level: level, Application: &app})
		if visit != nil {
			visit(app)
		}
	}
}

// Indent is the display prefix of an entry at level.
func Indent(level int) string {
	return strings.Repeat("  ", level)
}
