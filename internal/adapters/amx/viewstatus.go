package amx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
	"github.com/tidwall/gjson"
)

const (
	searchServicePath     = "/amx/viewstatus/search/searchservice.jsp"
	viewStatusServicePath = "/amx/amxmonitor/viewstatusservice.jsp"
	formContentType       = "application/x-www-form-urlencoded; charset=UTF-8"
)

// StatusClient reads the JSON status pages served to the console. These
// pages exist only on servers that publish an XSRF token.
type StatusClient struct {
	Session        *Session
	RequestTimeout time.Duration
}

var _ ports.StatusService = StatusClient{}

func (c StatusClient) EnterpriseOverview(ctx context.Context) (domain.EnterpriseOverview, error) {
	payload, err := c.call(ctx, searchServicePath, "getEnterpriseOverview")
	if err != nil {
		return domain.EnterpriseOverview{}, err
	}

	result := gjson.GetBytes(payload, "result")
	if !result.Exists() {
		return domain.EnterpriseOverview{}, &domain.FieldMissingError{Field: "result", Path: "getEnterpriseOverview"}
	}

	return domain.EnterpriseOverview{
		Name:         result.Get("enterpriseName").String(),
		AdminVersion: result.Get("adminVersion").String(),
		Hosts:        result.Get("hostsInEnterprise").String(),
		Nodes:        result.Get("nodesInEnterprise").String(),
		Machines:     result.Get("machinesInEnterprise").String(),
		Resources:    result.Get("riInEnterprise").String(),
		Applications: result.Get("applicationsInEnterprise").String(),
		Environments: result.Get("environmentsInEnterprise").String(),
	}, nil
}

func (c StatusClient) Applications(ctx context.Context) ([]domain.Application, error) {
	payload, err := c.call(ctx, viewStatusServicePath, "getApplications")
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(payload, "result")
	if !result.IsArray() {
		return nil, &domain.FieldMissingError{Field: "result", Path: "getApplications"}
	}

	apps := make([]domain.Application, 0, len(result.Array()))
	for _, item := range result.Array() {
		apps = append(apps, domain.Application{
			ID:           item.Get("id").String(),
			Name:         item.Get("name").String(),
			Version:      item.Get("appTemplateVersion").String(),
			Environment:  item.Get("environmentName").String(),
			Folder:       item.Get("appFolderName").String(),
			LastDeployed: item.Get("lastDeployedOn").String(),
			Sync:         item.Get("synchronization").String(),
			State:        item.Get("stateEnum").String(),
		})
	}

	return apps, nil
}

func (c StatusClient) call(ctx context.Context, path, method string) ([]byte, error) {
	if c.Session == nil {
		return nil, domain.ErrNoSession
	}

	requestCtx, cancel := requestContext(ctx, c.RequestTimeout)
	defer cancel()

	form := "methodName=" + url.QueryEscape(method) + "&xsrfToken=" + url.QueryEscape(c.Session.XSRFToken)
	endpoint := strings.TrimRight(c.Session.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, strings.NewReader(form))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", formContentType)
	req.Header.Set("xsrfToken", c.Session.XSRFToken)
	setNoCacheHeaders(req.Header)

	body, err := readResponse(c.Session.client, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: %w: invalid json", method, domain.ErrNoResult)
	}

	return body, nil
}
