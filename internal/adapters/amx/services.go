package amx

import (
	"context"
	"fmt"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/xmlrecord"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
)

const (
	DefaultNodesPerPage = 999
	SummaryNodesPerPage = 10
)

// AdminClient maps administrator SOAP operations onto domain types. It works
// over either a console session or HTTP basic authentication.
type AdminClient struct {
	Transport    Transport
	NodesPerPage int
}

var (
	_ ports.AdminService   = AdminClient{}
	_ ports.NodeAppService = AdminClient{}
)

func (c AdminClient) Environments(ctx context.Context) ([]domain.Environment, error) {
	doc, err := c.fetch(ctx, getAllEnvCall(), EnvService)
	if err != nil {
		return nil, err
	}

	records, err := doc.Records("//soapenv:Body/ns:getAllEnvResponse/*",
		xmlrecord.Required("name", "types:name"),
		xmlrecord.Required("id", "types:id"),
		xmlrecord.Defaulted("description", "ref:description", ""),
	)
	if err != nil {
		return nil, fmt.Errorf("parse environments: %w", err)
	}

	envs := make([]domain.Environment, 0, len(records))
	for _, r := range records {
		envs = append(envs, domain.Environment{ID: r.Get("id"), Name: r.Get("name"), Description: r.Get("description")})
	}
	return envs, nil
}

func (c AdminClient) Hosts(ctx context.Context) ([]domain.Host, error) {
	doc, err := c.fetch(ctx, getHostsOnMachineCall(), HostService)
	if err != nil {
		return nil, err
	}

	records, err := doc.Records("//soapenv:Body/ns:getHostsOnMachineResponse/*",
		xmlrecord.Required("name", "types:name"),
		xmlrecord.Required("status", "ax:singletonHost/ax:status"),
		xmlrecord.Required("version", "ax:singletonHost/ax:hpaFeatureVersion"),
		xmlrecord.Required("machine", "ax:singletonHost/ax:machineName"),
		xmlrecord.Required("synchronized", "ax:singletonHost/ax:synchronized"),
	)
	if err != nil {
		return nil, fmt.Errorf("parse hosts: %w", err)
	}

	hosts := make([]domain.Host, 0, len(records))
	for _, r := range records {
		hosts = append(hosts, domain.Host{
			Name:         r.Get("name"),
			Status:       r.Get("status"),
			Version:      r.Get("version"),
			Machine:      r.Get("machine"),
			Synchronized: r.Get("synchronized"),
		})
	}
	return hosts, nil
}

// Nodes lists every node of env, pagination markers excluded.
func (c AdminClient) Nodes(ctx context.Context, env domain.Environment) ([]domain.Node, error) {
	perPage := c.NodesPerPage
	if perPage <= 0 {
		perPage = DefaultNodesPerPage
	}

	doc, err := c.fetch(ctx, getNodesInEnvironmentCall(env.ID, env.Name, perPage), NodeService)
	if err != nil {
		return nil, err
	}

	records, err := doc.Records("//soapenv:Body/ns:getNodesInEnvironmentResponse/ns:return/*[not(contains(local-name(), 'pagination'))]",
		xmlrecord.Defaulted("environment", "ax:environment/types:name", env.Name),
		xmlrecord.Required("name", "types:name"),
		xmlrecord.Required("id", "types:id"),
		xmlrecord.Required("host", "ax:hostName"),
		xmlrecord.Required("machine", "ax:machine"),
		xmlrecord.Required("state", "ax:state"),
		xmlrecord.Required("version", "ax:nodeTypeVersion"),
		xmlrecord.Required("synchronized", "ax:synchronized"),
	)
	if err != nil {
		return nil, fmt.Errorf("parse nodes of %s: %w", env.Name, err)
	}

	nodes := make([]domain.Node, 0, len(records))
	for _, r := range records {
		nodes = append(nodes, domain.Node{
			ID:           r.Get("id"),
			Name:         r.Get("name"),
			Environment:  r.Get("environment"),
			Host:         r.Get("host"),
			Machine:      r.Get("machine"),
			State:        r.Get("state"),
			Version:      r.Get("version"),
			Synchronized: r.Get("synchronized"),
		})
	}
	return nodes, nil
}

// NodeSummaries returns the first page of node summaries of env.
func (c AdminClient) NodeSummaries(ctx context.Context, env domain.Environment) ([]domain.Node, error) {
	doc, err := c.fetch(ctx, getNodesInEnvironmentCall(env.ID, env.Name, SummaryNodesPerPage), NodeService)
	if err != nil {
		return nil, err
	}

	records, err := doc.Records("//soapenv:Body/ns:getNodesInEnvironmentResponse/ns:return/*[contains(local-name(), 'nodeSummary')]",
		xmlrecord.Required("name", "types:name"),
		xmlrecord.Required("id", "types:id"),
	)
	if err != nil {
		return nil, fmt.Errorf("parse node summaries of %s: %w", env.Name, err)
	}

	nodes := make([]domain.Node, 0, len(records))
	for _, r := range records {
		nodes = append(nodes, domain.Node{ID: r.Get("id"), Name: r.Get("name"), Environment: env.Name})
	}
	return nodes, nil
}

// ApplicationView returns the top-level folders and applications of env.
func (c AdminClient) ApplicationView(ctx context.Context, env domain.Environment) ([]domain.Folder, []domain.Application, error) {
	doc, err := c.fetch(ctx, getApplicationViewDetailsCall(env.ID), ApplicationService)
	if err != nil {
		return nil, nil, err
	}

	const base = "//soapenv:Body/ns:getApplicationViewDetailsResponse/ns:return/"
	folderRecords, err := doc.Records(base+"ax:appFolderDesc",
		xmlrecord.Required("name", "types:name"),
		xmlrecord.Required("id", "types:id"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("parse application folders: %w", err)
	}

	appRecords, err := doc.Records(base+"ax:appDesc", applicationFields("ax")...)
	if err != nil {
		return nil, nil, fmt.Errorf("parse applications: %w", err)
	}

	folders := make([]domain.Folder, 0, len(folderRecords))
	for _, r := range folderRecords {
		folders = append(folders, domain.Folder{ID: r.Get("id"), Name: r.Get("name")})
	}

	return folders, toApplications(appRecords, env.Name, ""), nil
}

// FolderView returns the sub-folders and applications held by folder.
func (c AdminClient) FolderView(ctx context.Context, folder domain.Folder) ([]domain.Folder, []domain.Application, error) {
	doc, err := c.fetch(ctx, getAppFolderViewCall(folder.ID, folder.Name), ApplicationUIService)
	if err != nil {
		return nil, nil, err
	}

	const base = "//soapenv:Body/ns:getAppFolderViewResponse/ns:return/"
	folderRecords, err := doc.Records(base+"ax:folders",
		xmlrecord.Required("id", "types:id"),
		xmlrecord.Required("name", "types:name"),
		xmlrecord.Defaulted("path", "types:path", ""),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("parse folder %s: %w", folder.Name, err)
	}

	appRecords, err := doc.Records(base+"ax:applications", applicationFields("appx")...)
	if err != nil {
		return nil, nil, fmt.Errorf("parse folder %s applications: %w", folder.Name, err)
	}

	folders := make([]domain.Folder, 0, len(folderRecords))
	for _, r := range folderRecords {
		folders = append(folders, domain.Folder{
			ID:    r.Get("id"),
			Name:  r.Get("name"),
			Path:  r.Get("path"),
			Level: folder.Level + 1,
		})
	}

	return folders, toApplications(appRecords, "", folder.Name), nil
}

func (c AdminClient) ComponentRollup(ctx context.Context, applicationID string) ([]domain.ComponentRollup, error) {
	doc, err := c.fetch(ctx, getApplicationRollupDetailsCall(applicationID), ApplicationService)
	if err != nil {
		return nil, err
	}

	records, err := doc.Records("//soapenv:Body/ns:getApplicationRollupDetailsResponse/ns:return/ax:componentRollupDetails",
		xmlrecord.Required("status", "comp:actionStatus"),
		xmlrecord.Required("node", "comp:nodeId/types:name"),
		xmlrecord.Defaulted("nodeId", "comp:nodeId/types:id", ""),
		xmlrecord.Required("path", "comp:componentPath"),
		xmlrecord.Required("state", "comp:state"),
		xmlrecord.Required("version", "comp:componentVersion"),
	)
	if err != nil {
		return nil, fmt.Errorf("parse component rollup: %w", err)
	}

	components := make([]domain.ComponentRollup, 0, len(records))
	for _, r := range records {
		components = append(components, domain.ComponentRollup{
			NodeID:       r.Get("nodeId"),
			NodeName:     r.Get("node"),
			Path:         r.Get("path"),
			State:        r.Get("state"),
			Version:      r.Get("version"),
			ActionStatus: r.Get("status"),
		})
	}
	return components, nil
}

func (c AdminClient) UploadedDAAs(ctx context.Context) ([]domain.DAA, error) {
	doc, err := c.fetch(ctx, getAllUploadedDAACall(), DAAService)
	if err != nil {
		return nil, err
	}

	records, err := doc.Records("//soapenv:Body/ns:getAllUploadedDAAResponse/*",
		xmlrecord.Required("used", "ax:used"),
		xmlrecord.Required("id", "ax:daaId"),
		xmlrecord.Defaulted("file", "ax:daaFileName", ""),
		xmlrecord.Defaulted("template", "ax:applicationTemplateIdVersion", ""),
	)
	if err != nil {
		return nil, fmt.Errorf("parse uploaded daas: %w", err)
	}

	daas := make([]domain.DAA, 0, len(records))
	for _, r := range records {
		daas = append(daas, domain.DAA{
			ID:              r.Get("id"),
			FileName:        r.Get("file"),
			TemplateVersion: r.Get("template"),
			Used:            r.Get("used") != "false",
		})
	}
	return daas, nil
}

// DeleteDAA removes one archive and returns the server summaries.
func (c AdminClient) DeleteDAA(ctx context.Context, id string) ([]string, error) {
	doc, err := c.fetch(ctx, deleteDAASCall(id), DAAService)
	if err != nil {
		return nil, err
	}

	records, err := doc.Records("//soapenv:Body/ns:deleteDAASResponse/*",
		xmlrecord.Defaulted("summary", "types:summary", ""),
	)
	if err != nil {
		return nil, fmt.Errorf("parse delete daa response: %w", err)
	}

	summaries := make([]string, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, r.Get("summary"))
	}
	return summaries, nil
}

func (c AdminClient) ApplicationsOnNode(ctx context.Context, node domain.Node) ([]domain.Application, error) {
	doc, err := c.fetch(ctx, getApplicationsMappedToNodeCall(node.ID), ApplicationService)
	if err != nil {
		return nil, err
	}

	records, err := doc.Records("//soapenv:Body/ns:getApplicationsMappedToNodeResponse/*",
		xmlrecord.Defaulted("id", "types:id", ""),
		xmlrecord.Required("name", "types:name"),
	)
	if err != nil {
		return nil, fmt.Errorf("parse applications on node %s: %w", node.Name, err)
	}

	apps := make([]domain.Application, 0, len(records))
	for _, r := range records {
		apps = append(apps, domain.Application{ID: r.Get("id"), Name: r.Get("name")})
	}
	return apps, nil
}

func (c AdminClient) ApplicationSummary(ctx context.Context, applicationID string, nodeName string) (domain.Application, error) {
	doc, err := c.fetch(ctx, getApplicationSummaryByIDCall(applicationID), ApplicationService)
	if err != nil {
		return domain.Application{}, err
	}

	elements, err := doc.Elements("//soapenv:Body/ns:getApplicationSummaryByIdResponse/ns:return")
	if err != nil {
		return domain.Application{}, err
	}
	if len(elements) == 0 {
		return domain.Application{}, &domain.FieldMissingError{Field: "return", Path: "getApplicationSummaryByIdResponse"}
	}

	summary := elements[0]
	record, err := summary.Record(
		xmlrecord.Required("state", "ax:runtimeStateEnum"),
		xmlrecord.Defaulted("folder", "ax:folder/types:name", ""),
		xmlrecord.Defaulted("version", "ax:templateVersion", ""),
		xmlrecord.Defaulted("sync", "ax:synchronization", ""),
	)
	if err != nil {
		return domain.Application{}, fmt.Errorf("parse application summary %s: %w", applicationID, err)
	}

	app := domain.Application{
		ID:      applicationID,
		State:   record.Get("state"),
		Folder:  record.Get("folder"),
		Version: record.Get("version"),
		Sync:    record.Get("sync"),
	}

	if nodeName != "" {
		details, err := summary.Children("ax:runtimeStateDetails")
		if err != nil {
			return domain.Application{}, err
		}
		for _, detail := range details {
			node, err := detail.Lookup("ax:node")
			if err != nil {
				return domain.Application{}, err
			}
			if name, ok := node.Get(); !ok || name != nodeName {
				continue
			}
			state, err := detail.Lookup("ax:state")
			if err != nil {
				return domain.Application{}, err
			}
			app.State = state.Or(app.State)
			break
		}
	}

	return app, nil
}

func (c AdminClient) fetch(ctx context.Context, call ServiceCall, service string) (*xmlrecord.Document, error) {
	body, ok := c.Transport.Call(ctx, call)
	if !ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s %s: %w", call.Endpoint, call.Action, domain.ErrNoResult)
	}

	doc, err := xmlrecord.Parse(body, Namespaces(service))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", call.Endpoint, call.Action, err)
	}
	return doc, nil
}

func applicationFields(typesPrefix string) []xmlrecord.Field {
	return []xmlrecord.Field{
		xmlrecord.Required("id", "types:id"),
		xmlrecord.Required("name", "types:name"),
		xmlrecord.Required("state", typesPrefix+":runtimeStateEnum"),
		xmlrecord.Defaulted("sync", typesPrefix+":synchronization", ""),
		xmlrecord.Defaulted("version", typesPrefix+":templateVersion", ""),
	}
}

func toApplications(records []domain.Record, env, folder string) []domain.Application {
	apps := make([]domain.Application, 0, len(records))
	for _, r := range records {
		apps = append(apps, domain.Application{
			ID:          r.Get("id"),
			Name:        r.Get("name"),
			Version:     r.Get("version"),
			Sync:        r.Get("sync"),
			State:       r.Get("state"),
			Folder:      folder,
			Environment: env,
		})
	}
	return apps
}
