package ports

import (
	"context"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
)

// AdminService is the typed view of the administrator SOAP services used by
// the status and maintenance commands.
type AdminService interface {
	Environments(ctx context.Context) ([]domain.Environment, error)
	Hosts(ctx context.Context) ([]domain.Host, error)
	Nodes(ctx context.Context, env domain.Environment) ([]domain.Node, error)
	ApplicationView(ctx context.Context, env domain.Environment) ([]domain.Folder, []domain.Application, error)
	FolderView(ctx context.Context, folder domain.Folder) ([]domain.Folder, []domain.Application, error)
	ComponentRollup(ctx context.Context, applicationID string) ([]domain.ComponentRollup, error)
	UploadedDAAs(ctx context.Context) ([]domain.DAA, error)
	DeleteDAA(ctx context.Context, id string) ([]string, error)
}

// StatusService reads the JSON status pages of the administrator console.
type StatusService interface {
	EnterpriseOverview(ctx context.Context) (domain.EnterpriseOverview, error)
	Applications(ctx context.Context) ([]domain.Application, error)
}

// NodeAppService is served over HTTP basic authentication.
type NodeAppService interface {
	Environments(ctx context.Context) ([]domain.Environment, error)
	NodeSummaries(ctx context.Context, env domain.Environment) ([]domain.Node, error)
	ApplicationsOnNode(ctx context.Context, node domain.Node) ([]domain.Application, error)
	// ApplicationSummary reports the state seen on nodeName when the server
	// details it, the overall runtime state otherwise.
	ApplicationSummary(ctx context.Context, applicationID string, nodeName string) (domain.Application, error)
}

type ProcessManager interface {
	HaltedInstances(ctx context.Context) ([]domain.HaltedInstance, error)
	RetryInstance(ctx context.Context, id string) (int, error)
}
