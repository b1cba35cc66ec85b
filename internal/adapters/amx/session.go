package amx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

const (
	browserUserAgent  = "Mozilla/5.0 (compatible; MSIE 9.0; Windows NT 6.1; WOW64; Trident/5.0)"
	ssoCookieName     = "SSO_ID"
	loginPath         = "/j_security_check"
	consolePath       = "/admin.jsp"
	csrfMarker        = "csrfToken"
	maxResponseBytes  = 16 << 20
	DefaultRetryDelay = 30 * time.Second
)

var csrfPattern = regexp.MustCompile(`csrfToken.*;`)

// Session is an authenticated administrator console session. XSRFToken is
// empty on servers whose console does not publish one.
type Session struct {
	BaseURL   string
	XSRFToken string
	client    *http.Client
}

func (s *Session) HTTPClient() *http.Client {
	return s.client
}

type Authenticator struct {
	BaseURL        string
	User           string
	Password       string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	RetryDelay     time.Duration
	Clock          ports.Clock
	Logger         logrus.FieldLogger
}

// Login authenticates against the console form login. With wait set, failed
// attempts are retried every RetryDelay until ctx is done.
func (a Authenticator) Login(ctx context.Context, wait bool) (*Session, error) {
	for {
		session, err := a.loginOnce(ctx)
		if err == nil {
			return session, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		a.logger().WithError(err).Warnf("Login to %s failed", a.BaseURL)
		if !wait {
			return nil, fmt.Errorf("%w: %w", domain.ErrNoSession, err)
		}

		a.logger().Infof("Waiting %s before next login attempt", a.retryDelay())
		if err := a.clock().Sleep(ctx, a.retryDelay()); err != nil {
			return nil, err
		}
	}
}

func (a Authenticator) loginOnce(ctx context.Context) (*Session, error) {
	base, err := url.Parse(strings.TrimRight(a.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse admin url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.New("admin url must use http or https")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	client := &http.Client{Jar: jar}
	if a.HTTPClient != nil {
		client.Transport = a.HTTPClient.Transport
		client.Timeout = a.HTTPClient.Timeout
		client.CheckRedirect = a.HTTPClient.CheckRedirect
	}

	form := url.Values{}
	form.Set("j_username", a.User)
	form.Set("j_password", a.Password)

	status, _, err := a.postForm(ctx, client, base.String()+loginPath, form)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &domain.StatusError{Code: status}
	}
	if !hasCookie(jar, base, ssoCookieName) {
		return nil, domain.ErrSSOCookieMissing
	}
	a.logger().Debug("Got SSO_ID cookie")

	session := &Session{BaseURL: base.String(), client: client}

	_, body, err := a.postForm(ctx, client, base.String()+consolePath, form)
	if err != nil {
		return nil, fmt.Errorf("read console page: %w", err)
	}
	if token := ExtractCSRFToken(string(body)); token != "" {
		session.XSRFToken = token
		a.logger().Info("Response contains csrfToken, AMX BPM 4.3.x server")
	}

	return session, nil
}

func (a Authenticator) postForm(ctx context.Context, client *http.Client, endpoint string, form url.Values) (int, []byte, error) {
	requestCtx, cancel := requestContext(ctx, a.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Referer", a.BaseURL)
	setNoCacheHeaders(req.Header)

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read body: %w", domain.ErrTransport, err)
	}

	return resp.StatusCode, body, nil
}

func (a Authenticator) retryDelay() time.Duration {
	if a.RetryDelay > 0 {
		return a.RetryDelay
	}
	return DefaultRetryDelay
}

func (a Authenticator) clock() ports.Clock {
	if a.Clock != nil {
		return a.Clock
	}
	return ports.SystemClock{}
}

func (a Authenticator) logger() logrus.FieldLogger {
	if a.Logger != nil {
		return a.Logger
	}
	return logrus.StandardLogger()
}

// ExtractCSRFToken returns the quoted value following the csrfToken marker
// of the console page, or "" when the page has none.
func ExtractCSRFToken(page string) string {
	if !strings.Contains(page, csrfMarker) {
		return ""
	}

	match := csrfPattern.FindString(page)
	parts := strings.Split(match, "'")
	if len(parts) < 2 {
		return ""
	}

	return parts[1]
}

func hasCookie(jar http.CookieJar, u *url.URL, name string) bool {
	for _, cookie := range jar.Cookies(u) {
		if cookie.Name == name {
			return true
		}
	}
	return false
}

func setNoCacheHeaders(h http.Header) {
	h.Set("Connection", "keep-alive")
	h.Set("Pragma", "no-cache")
	h.Set("Cache-Control", "no-cache")
}

func requestContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, timeout)
}
