// Package bpmrest queries halted process instances through the BPM REST API
// and asks the process manager to retry them.
package bpmrest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/xmlrecord"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

const (
	DefaultHaltedQuery = "SELECT INSTANCE.ID, INSTANCE.NAME, INSTANCE.FAILED_ACTIVITY_NAME, INSTANCE.START_DATE, " +
		"harmonie_case_number, INSTANCE.ACTIVITY_FAULT_NAME, INSTANCE.ACTIVITY_FAULT_DATA FROM process/9999"

	queryPath             = "/bpm/rest/process/query/halted/instance/"
	retryPath             = "/bpm/rest/process/retry/instance/"
	nsProcessManager      = "http://www.tibco.com/bx/2009/management/processManagerType"
	defaultRequestTimeout = 30 * time.Second
	maxResponseBytes      = 16 << 20
)

var namespaces = map[string]string{"proc": nsProcessManager}

type Client struct {
	BaseURL        string
	User           string
	Password       string
	Query          string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Logger         logrus.FieldLogger
}

var _ ports.ProcessManager = Client{}

// HaltedInstances runs the halted-instance query. An empty slice means the
// server answered with no instance.
func (c Client) HaltedInstances(ctx context.Context) ([]domain.HaltedInstance, error) {
	logger := c.logger()

	query := c.Query
	if query == "" {
		query = DefaultHaltedQuery
	}
	endpoint := strings.TrimRight(c.BaseURL, "/") + queryPath + escapeQuery(query)

	resp, err := c.do(ctx, http.MethodGet, endpoint)
	if err != nil {
		logger.WithError(err).Errorf("Error calling %s", endpoint)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Errorf("Response %d connecting to BPM", resp.StatusCode)
		return nil, &domain.StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrTransport, err)
	}
	logger.Debugf("Query executed OK %d", resp.StatusCode)

	doc, err := xmlrecord.Parse(body, namespaces)
	if err != nil {
		return nil, err
	}

	records, err := doc.Records("/*/proc:processInstances/proc:processInstance",
		xmlrecord.Required("template", "proc:processQName/proc:processName"),
		xmlrecord.Required("id", "proc:id"),
	)
	if err != nil {
		return nil, fmt.Errorf("parse halted instances: %w", err)
	}

	instances := make([]domain.HaltedInstance, 0, len(records))
	for _, r := range records {
		instances = append(instances, domain.HaltedInstance{ID: r.Get("id"), Template: r.Get("template")})
	}
	return instances, nil
}

// RetryInstance returns the HTTP status of the retry request.
func (c Client) RetryInstance(ctx context.Context, id string) (int, error) {
	endpoint := strings.TrimRight(c.BaseURL, "/") + retryPath + url.PathEscape(id)

	resp, err := c.do(ctx, http.MethodPut, endpoint)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	return resp.StatusCode, nil
}

func (c Client) do(ctx context.Context, method, endpoint string) (*http.Response, error) {
	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	requestCtx, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.User, c.Password)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

// escapeQuery percent-encodes the query for the path, keeping the process
// path separator literal.
func escapeQuery(query string) string {
	return strings.ReplaceAll(url.PathEscape(query), "%2F", "/")
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
