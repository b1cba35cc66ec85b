package logging

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Toggle switches a logger to debug while <Dir>/<Name>.debug exists. The
// <Name>.set marker records that the switch happened so that removing the
// debug file restores the base level exactly once.
type Toggle struct {
	Dir  string
	Name string
}

func (t Toggle) Apply(logger *logrus.Logger, base logrus.Level) {
	dir := t.Dir
	if dir == "" {
		dir = "/tmp"
	}
	debugFile := filepath.Join(dir, t.Name+".debug")
	setFile := filepath.Join(dir, t.Name+".set")

	if exists(debugFile) {
		logger.SetLevel(logrus.DebugLevel)
		if exists(setFile) {
			return
		}
		f, err := os.OpenFile(setFile, os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			logger.Error("Cannot create set file")
			return
		}
		_ = f.Close()
		logger.Debug("Log level set to debug")
		return
	}

	if !exists(setFile) {
		return
	}
	logger.Debug("Log level reset to info")
	logger.SetLevel(base)
	if err := os.Remove(setFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error("Cannot remove set file")
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
