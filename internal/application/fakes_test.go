package application

import (
	"context"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
	"github.com/stretchr/testify/mock"
)

type fakeAdmin struct {
	envs        []domain.Environment
	hosts       []domain.Host
	nodes       map[string][]domain.Node
	topFolders  []domain.Folder
	topApps     []domain.Application
	folders     map[string][]domain.Folder
	folderApps  map[string][]domain.Application
	folderErr   map[string]error
	rollup      []domain.ComponentRollup
	daas        []domain.DAA
	deleteErr   map[string]error
	deleted     []string
	summaries   map[string]domain.Application
	summaryErr  map[string]error
	nodeApps    []domain.Application
	err         error
	summaryNode []string
}

var (
	_ ports.AdminService   = (*fakeAdmin)(nil)
	_ ports.NodeAppService = (*fakeAdmin)(nil)
)

func (f *fakeAdmin) Environments(context.Context) ([]domain.Environment, error) {
	return f.envs, f.err
}

func (f *fakeAdmin) Hosts(context.Context) ([]domain.Host, error) {
	return f.hosts, nil
}

func (f *fakeAdmin) Nodes(_ context.Context, env domain.Environment) ([]domain.Node, error) {
	return f.nodes[env.ID], nil
}

func (f *fakeAdmin) NodeSummaries(_ context.Context, env domain.Environment) ([]domain.Node, error) {
	return f.nodes[env.ID], nil
}

func (f *fakeAdmin) ApplicationView(context.Context, domain.Environment) ([]domain.Folder, []domain.Application, error) {
	return f.topFolders, f.topApps, nil
}

func (f *fakeAdmin) FolderView(_ context.Context, folder domain.Folder) ([]domain.Folder, []domain.Application, error) {
	if err := f.folderErr[folder.ID]; err != nil {
		return nil, nil, err
	}
	subs := make([]domain.Folder, 0, len(f.folders[folder.ID]))
	for _, sub := range f.folders[folder.ID] {
		sub.Level = folder.Level + 1
		subs = append(subs, sub)
	}
	return subs, f.folderApps[folder.ID], nil
}

func (f *fakeAdmin) ComponentRollup(context.Context, string) ([]domain.ComponentRollup, error) {
	return f.rollup, nil
}

func (f *fakeAdmin) UploadedDAAs(context.Context) ([]domain.DAA, error) {
	return f.daas, f.err
}

func (f *fakeAdmin) DeleteDAA(_ context.Context, id string) ([]string, error) {
	if err := f.deleteErr[id]; err != nil {
		return nil, err
	}
	f.deleted = append(f.deleted, id)
	return []string{"Deleted " + id}, nil
}

func (f *fakeAdmin) ApplicationsOnNode(context.Context, domain.Node) ([]domain.Application, error) {
	return f.nodeApps, nil
}

func (f *fakeAdmin) ApplicationSummary(_ context.Context, id string, nodeName string) (domain.Application, error) {
	f.summaryNode = append(f.summaryNode, nodeName)
	if err := f.summaryErr[id]; err != nil {
		return domain.Application{}, err
	}
	return f.summaries[id], nil
}

type fakeStatus struct {
	overview domain.EnterpriseOverview
	apps     []domain.Application
	calls    int
}

func (f *fakeStatus) EnterpriseOverview(context.Context) (domain.EnterpriseOverview, error) {
	f.calls++
	return f.overview, nil
}

func (f *fakeStatus) Applications(context.Context) ([]domain.Application, error) {
	f.calls++
	return f.apps, nil
}

// steppingClock advances by step on every Now call.
type steppingClock struct {
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	current := c.now
	c.now = c.now.Add(c.step)
	return current
}

func (c *steppingClock) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func mockAnyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}
