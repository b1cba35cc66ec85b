package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/amx"
	"github.com/bnema/amxbpm-admin-cli/internal/adapters/config"
	"github.com/bnema/amxbpm-admin-cli/internal/adapters/logging"
	"github.com/bnema/amxbpm-admin-cli/internal/adapters/render/report"
	"github.com/bnema/amxbpm-admin-cli/internal/application"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/version"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	commandPrefix = "amxctl-"
	stampLayout   = "2006-01-02 15:04:05"
)

// commandRun is the per-invocation state shared by the tool commands: the
// loaded settings, the command logger and the report output.
type commandRun struct {
	app      *app
	settings config.Settings
	logger   *logging.Logger
	out      io.Writer
	styled   bool
}

func (a *app) start(cmd *cobra.Command, name string) (*commandRun, error) {
	loaded, err := config.Load(viper.New(), a.global.configFile)
	if err != nil {
		return nil, err
	}

	level := logrus.InfoLevel
	if a.global.verbose {
		level = logrus.DebugLevel
	}
	var console io.Writer
	if !a.global.noConsole {
		console = cmd.ErrOrStderr()
	}
	dir := a.global.logDir
	if dir == "" {
		dir = loaded.Settings.Log.Dir
	}

	logger, err := logging.New(logging.Options{
		Name:      commandPrefix + name,
		Dir:       dir,
		Level:     level,
		Console:   console,
		ToggleDir: a.toggleDir,
		Now:       a.now,
	})
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	application.EnterState(logger, domain.PollStart)
	if loaded.File == "" {
		logger.Info("Cannot find amxctrl.toml, using defaults")
	} else {
		logger.Debugf("Settings read from %s", loaded.File)
	}

	out := cmd.OutOrStdout()
	file, isFile := out.(*os.File)

	return &commandRun{
		app:      a,
		settings: loaded.Settings,
		logger:   logger,
		out:      out,
		styled:   isFile && isatty.IsTerminal(file.Fd()),
	}, nil
}

func (r *commandRun) close() {
	if err := r.logger.Close(); err != nil {
		r.logger.WithError(err).Debug("close log file")
	}
}

// emit writes rep to the command output and copies it, unstyled, into the
// log file.
func (r *commandRun) emit(rep report.Report) error {
	text, err := report.Render(rep, report.Options{Styled: r.styled})
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if _, err := io.WriteString(r.out, text); err != nil {
		return err
	}
	r.logger.Record(report.Plain(rep))
	return nil
}

func (r *commandRun) print(lines ...string) error {
	return r.emit(report.Report{Blocks: []report.Block{{Lines: lines}}})
}

// banner frames the tool name, version and start time.
func (r *commandRun) banner(width int) error {
	return r.print(report.Header(r.title(), width)...)
}

func (r *commandRun) title() string {
	return fmt.Sprintf("%s %s %s", r.logger.Name(), version.Version, r.app.now().Format(stampLayout))
}

type sourcedStore interface {
	Lookup(ctx context.Context, key string) (value, source string, err error)
}

func (r *commandRun) password(ctx context.Context, obfuscated, ref string) (string, error) {
	if ref == "" {
		return config.ResolvePassword(ctx, nil, obfuscated, ref)
	}

	store, err := r.app.secretStore()
	if err != nil {
		return "", err
	}
	if sourced, ok := store.(sourcedStore); ok {
		value, source, err := sourced.Lookup(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("resolve password %q: %w", ref, err)
		}
		r.logger.Debugf("Password %s read from %s", ref, source)
		return value, nil
	}
	return config.ResolvePassword(ctx, store, obfuscated, ref)
}

// login opens a console session on the administrator. With wait set the
// login is retried until the server answers.
func (r *commandRun) login(ctx context.Context, wait bool) (*amx.Session, error) {
	password, err := r.password(ctx, r.settings.Admin.Password, r.settings.Admin.PasswordRef)
	if err != nil {
		return nil, err
	}

	application.EnterState(r.logger, domain.PollAuthenticating)
	r.logger.Infof("Connecting to %s", r.settings.Admin.URL)
	auth := amx.Authenticator{
		BaseURL:    r.settings.Admin.URL,
		User:       r.settings.Admin.User,
		Password:   password,
		HTTPClient: r.app.httpClient,
		RetryDelay: r.app.retryDelay,
		Clock:      r.app.clock,
		Logger:     r.logger,
	}
	session, err := auth.Login(ctx, wait)
	if err != nil {
		application.EnterState(r.logger, domain.PollAuthFailed)
		if ctx.Err() == nil {
			r.logger.Error("Cannot connect to admin server")
		}
		return nil, err
	}

	application.EnterState(r.logger, domain.PollAuthenticated)
	r.logger.Debug("Logged In")
	return session, nil
}

func (r *commandRun) adminClient(session *amx.Session) amx.AdminClient {
	return amx.AdminClient{
		Transport: amx.Caller{Session: session, Logger: r.logger},
	}
}

// basicAdminClient talks to the HTTP basic authentication endpoint at
// baseURL, the server root.
func (r *commandRun) basicAdminClient(baseURL, user, password string) amx.AdminClient {
	return amx.AdminClient{
		Transport: amx.BasicCaller{
			BaseURL:    baseURL,
			User:       user,
			Password:   password,
			HTTPClient: r.app.httpClient,
			Logger:     r.logger,
		},
	}
}

func (r *commandRun) poller(interval time.Duration) application.Poller {
	return application.Poller{
		Clock:    r.app.clock,
		Interval: interval,
		Logger:   r.logger,
		Refresh:  r.logger.Refresh,
		Sleeping: func(_ int, d time.Duration) {
			r.logger.Header(fmt.Sprintf("Sleeping %d seconds", int(d.Seconds())))
		},
	}
}

// interval is --loop when given, the [poll] interval of the settings
// otherwise.
func (r *commandRun) interval(cmd *cobra.Command, loop int) time.Duration {
	if flag := cmd.Flags().Lookup("loop"); flag != nil && !flag.Changed {
		return r.settings.Poll.Duration()
	}
	return seconds(loop)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
