package minitpl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogDebug, "DEBUG"},
		{LogInfo, "INFO"},
		{LogWarn, "WARN"},
		{LogError, "ERROR"},
		{LogOff, "OFF"},
		{LogLevel(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.String())
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogWarn)

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	assert.Empty(t, buf.String())

	logger.Warn("warn %d", 3)
	logger.Error("error %d", 4)
	out := buf.String()
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "error 4")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
}

func TestLoggerOff(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogOff)
	logger.Error("nothing")
	assert.Empty(t, buf.String())
	assert.False(t, logger.IsDebugMode())
}

func TestLoggerSetLevelIsShared(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo)
	child := logger.WithField("template", "a.html")

	logger.SetLevel(LogDebug)
	assert.True(t, child.IsDebugMode())

	child.Debug("parsed")
	assert.Contains(t, buf.String(), "parsed")
	assert.Contains(t, buf.String(), "template=a.html")
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo).WithFields(Fields{"line": 3, "column": 7})
	logger.Info("malformed")

	out := buf.String()
	assert.Contains(t, out, "column=7")
	assert.Contains(t, out, "line=3")
	assert.Less(t, strings.Index(out, "column="), strings.Index(out, "line="), "fields are sorted")
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithFormat(&buf, LogInfo, "json").WithField("template", "index.html")
	logger.Info("rendered %d bytes", 42)

	var entry map[string]any
	require.NoError(t, oj.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rendered 42 bytes", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "index.html", entry["template"])
}

func TestLoggerNilWriter(t *testing.T) {
	logger := NewLogger(nil, LogDebug)
	assert.NotPanics(t, func() { logger.Info("discarded") })
}

func TestDebugTemplate(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo)
	logger.DebugTemplate("${Name}", map[string]string{"Name": "x"})
	assert.Empty(t, buf.String())

	logger.SetLevel(LogDebug)
	logger.DebugTemplate("${Name}", map[string]string{"Name": "x"})
	assert.Contains(t, buf.String(), "Template: ${Name}")
	assert.Contains(t, buf.String(), "Model: map[Name:x]")
}

func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	t.Cleanup(func() { SetLogger(original) })

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogDebug))

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
	WithField("k", "v").Info("field")
	WithFields(Fields{"a": 1}).Info("fields")

	out := buf.String()
	for _, want := range []string{"msg=d", "msg=i", "msg=w", "msg=e", "k=v", "a=1"} {
		assert.Contains(t, out, want)
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogDebug, parseLogLevel("debug"))
	assert.Equal(t, LogWarn, parseLogLevel("warn"))
	assert.Equal(t, LogOff, parseLogLevel("off"))
	assert.Equal(t, LogInfo, parseLogLevel("unknown"))
}

func TestNewLoggerFromConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerFromConfig(&buf, &Config{LogLevel: "warn", LogFormat: "json"})
	logger.Info("hidden")
	logger.Warn("shown")

	var entry map[string]any
	require.NoError(t, oj.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])

	assert.True(t, NewLoggerFromConfig(nil, &Config{LogLevel: "debug"}).IsDebugMode())
}
