package amx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	servicesPath      = "/services/"
	basicServicesPath = "/amxadministrator.httpbasic/services/"
	htmlMarker        = "<html>"
	defaultSOAPType   = "text/xml"
)

// Invoker sends a SOAP call and returns the raw response body.
type Invoker interface {
	Do(ctx context.Context, call ServiceCall) ([]byte, error)
}

// Transport is what AdminClient sends its calls through. Failures are
// logged by the transport and reported as an absent body.
type Transport interface {
	Call(ctx context.Context, call ServiceCall) ([]byte, bool)
}

// Caller posts SOAP calls through an authenticated console session.
type Caller struct {
	Session        *Session
	RequestTimeout time.Duration
	Logger         logrus.FieldLogger
}

var (
	_ Invoker   = Caller{}
	_ Transport = Caller{}
)

func (c Caller) Do(ctx context.Context, call ServiceCall) ([]byte, error) {
	if c.Session == nil {
		return nil, domain.ErrNoSession
	}

	endpoint := strings.TrimRight(c.Session.BaseURL, "/") + servicesPath + call.Endpoint
	return send(ctx, c.Session.client, c.RequestTimeout, endpoint, call, func(h http.Header) {
		if c.Session.XSRFToken != "" {
			h.Set("xsrfToken", c.Session.XSRFToken)
		}
	})
}

// Call is Do with failures logged and reported as absent.
func (c Caller) Call(ctx context.Context, call ServiceCall) ([]byte, bool) {
	return callLogged(ctx, c, call, c.Logger)
}

// BasicCaller posts SOAP calls to the HTTP basic authentication endpoint of
// the administrator. BaseURL is the server root, without /amxadministrator.
type BasicCaller struct {
	BaseURL        string
	User           string
	Password       string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Logger         logrus.FieldLogger
}

var (
	_ Invoker   = BasicCaller{}
	_ Transport = BasicCaller{}
)

func (c BasicCaller) Do(ctx context.Context, call ServiceCall) ([]byte, error) {
	endpoint := strings.TrimRight(c.BaseURL, "/") + basicServicesPath + call.Endpoint
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return send(ctx, client, c.RequestTimeout, endpoint, call, func(h http.Header) {
		h.Set("Authorization", basicAuthorization(c.User, c.Password))
	})
}

func (c BasicCaller) Call(ctx context.Context, call ServiceCall) ([]byte, bool) {
	return callLogged(ctx, c, call, c.Logger)
}

func basicAuthorization(user, password string) string {
	req := http.Request{Header: http.Header{}}
	req.SetBasicAuth(user, password)
	return req.Header.Get("Authorization")
}

func callLogged(ctx context.Context, invoker Invoker, call ServiceCall, logger logrus.FieldLogger) ([]byte, bool) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	logger.Debugf("Call %s %s", call.Endpoint, call.Action)
	body, err := invoker.Do(ctx, call)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHTMLResponse):
			logger.Error("Invalid response from server")
		case errors.Is(err, context.Canceled):
			logger.Debug("Call cancelled")
		default:
			logger.WithError(err).Errorf("Error calling %s", call.Endpoint)
		}
		return nil, false
	}

	logger.Debugf("Rtn: %s", body)
	return body, true
}

func send(ctx context.Context, client *http.Client, timeout time.Duration, endpoint string, call ServiceCall, decorate func(http.Header)) ([]byte, error) {
	requestCtx, cancel := requestContext(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, strings.NewReader(call.Body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	contentType := call.ContentType
	if contentType == "" {
		contentType = defaultSOAPType
	}
	req.Header.Set("Content-Type", contentType)
	if call.Action != "" {
		req.Header.Set("SOAPAction", "urn:"+call.Action)
	}
	setNoCacheHeaders(req.Header)
	if decorate != nil {
		decorate(req.Header)
	}

	return readResponse(client, req)
}

// readResponse accepts 200 and 204 bodies unless they carry an HTML page,
// which the administrator serves in place of a payload on session errors.
func readResponse(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return nil, fmt.Errorf("%s: %w", req.URL, &domain.StatusError{Code: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrTransport, err)
	}

	if bytes.Contains(body, []byte(htmlMarker)) {
		return nil, domain.ErrHTMLResponse
	}

	return body, nil
}
