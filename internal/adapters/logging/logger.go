// Package logging builds the per-command logger: a console stream on stderr
// and a log file rotated when the date changes, across runs as well.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultMaxBackups = 10
	defaultMaxSizeMB  = 100
)

type Options struct {
	Name       string
	Dir        string
	Level      logrus.Level
	Console    io.Writer
	ToggleDir  string
	MaxBackups int
	Now        func() time.Time
}

// Logger is a logrus logger whose file output can also receive report text
// that is not echoed on the console.
type Logger struct {
	*logrus.Logger
	name   string
	base   logrus.Level
	file   *fileHook
	toggle Toggle
}

func New(opts Options) (*Logger, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("logger name is empty")
	}
	if opts.Level == 0 {
		opts.Level = logrus.InfoLevel
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = DefaultMaxBackups
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := logrus.New()
	logger.SetLevel(opts.Level)
	logger.SetFormatter(consoleFormatter{})
	if opts.Console != nil {
		logger.SetOutput(opts.Console)
	} else {
		logger.SetOutput(io.Discard)
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Warnf("!! LOGDIR %s is not valid !!", dir)
		dir = "."
	}

	path := filepath.Join(dir, opts.Name+".log")
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	hook := &fileHook{
		writer:    rotator,
		rotate:    rotator.Rotate,
		formatter: fileFormatter{name: opts.Name},
		now:       opts.Now,
		day:       lastWritten(path, opts.Now().Location()),
	}
	logger.AddHook(hook)

	l := &Logger{
		Logger: logger,
		name:   opts.Name,
		base:   opts.Level,
		file:   hook,
		toggle: Toggle{Dir: opts.ToggleDir, Name: opts.Name},
	}
	l.Refresh()

	return l, nil
}

// Refresh applies the debug toggle files. It is called once at start and
// again before each poll cycle so that a running loop picks up changes.
func (l *Logger) Refresh() {
	l.toggle.Apply(l.Logger, l.base)
}

// Header logs message framed by rules as long as the message.
func (l *Logger) Header(message string) {
	line := strings.Repeat("=", len(message))
	l.Info(line)
	l.Info(message)
	l.Info(line)
}

// Record copies report text into the log file only, one entry per line.
func (l *Logger) Record(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		entry := logrus.NewEntry(l.Logger)
		entry.Time = l.file.now()
		entry.Level = logrus.InfoLevel
		entry.Message = line
		if err := l.file.Fire(entry); err != nil {
			l.WithError(err).Debug("cannot write report line")
			return
		}
	}
}

func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) Close() error {
	return l.file.Close()
}

// lastWritten is the day path was last modified, so that a run started on a
// later day rotates the file before its first line.
func lastWritten(path string, loc *time.Location) string {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return ""
	}
	return info.ModTime().In(loc).Format(time.DateOnly)
}

// fileHook writes entries to lumberjack and calls Rotate when the date
// changes.
type fileHook struct {
	mu        sync.Mutex
	writer    io.WriteCloser
	rotate    func() error
	formatter logrus.Formatter
	now       func() time.Time
	day       string
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	day := h.now().Format(time.DateOnly)
	if h.day != "" && h.day != day && h.rotate != nil {
		if err := h.rotate(); err != nil {
			return fmt.Errorf("rotate log file: %w", err)
		}
	}
	h.day = day

	_, err = h.writer.Write(line)
	return err
}

func (h *fileHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writer.Close()
}
