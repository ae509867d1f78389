package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestTextFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "buffer reloaded",
		Data: logrus.Fields{
			"component": "reconciler",
			"buffer":    3,
		},
	}

	f := &TextFormatter{}
	out, err := f.Format(entry)
	assert.NoError(t, err)

	line := string(out)
	assert.Contains(t, line, "2024-03-01 12:30:00")
	assert.Contains(t, line, "[WARN]")
	assert.Contains(t, line, "[reconciler]")
	assert.Contains(t, line, "buffer reloaded")
	assert.Contains(t, line, "buffer=3")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestTextFormatterSimple(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "tick",
		Data:    logrus.Fields{"component": "scheduler"},
	}

	f := &TextFormatter{Config: FormatConfig{
		DisableTimestamp: true,
		DisableComponent: true,
	}}
	out, err := f.Format(entry)
	assert.NoError(t, err)

	line := string(out)
	assert.Equal(t, "[INFO] tick\n", line)
}

func TestNewLoggerSingleton(t *testing.T) {
	a := NewLogger("test-singleton")
	b := NewLogger("test-singleton")
	assert.Same(t, a, b)
}
