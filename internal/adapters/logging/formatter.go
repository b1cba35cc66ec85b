package logging

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const fileTimeLayout = "2006-01-02 15:04:05,000"

// fileFormatter writes time|LEVEL|name|message.
type fileFormatter struct {
	name string
}

func (f fileFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s|%-8s|%-12s|%s", entry.Time.Format(fileTimeLayout), levelName(entry.Level), f.name, entry.Message)
	writeFields(&b, entry.Data)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// consoleFormatter writes LEVEL|message.
type consoleFormatter struct{}

func (consoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%-8s|%s", levelName(entry.Level), entry.Message)
	writeFields(&b, entry.Data)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelName(level logrus.Level) string {
	return strings.ToUpper(level.String())
}

func writeFields(b *bytes.Buffer, data logrus.Fields) {
	if len(data) == 0 {
		return
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(b, " %s=%v", key, data[key])
	}
}
