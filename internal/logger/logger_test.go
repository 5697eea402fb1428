package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTextLogger(buf *bytes.Buffer, component string, debug bool) Logger {
	return New(component, Options{
		Format:  FormatText,
		Output:  buf,
		Debug:   debug,
		NoColor: true,
	})
}

func TestLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		expectLog bool
	}{
		{name: "logs when debug is enabled", debug: true, expectLog: true},
		{name: "does not log when debug is disabled", debug: false, expectLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := newTextLogger(&buf, "test", tt.debug)
			l.Debug("test message %s", "arg")

			if tt.expectLog {
				assert.Contains(t, buf.String(), "test message arg")
				assert.Contains(t, buf.String(), "component=test")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := newTextLogger(&buf, "populate", false)

	l.Info("info message %d", 42)
	l.Warn("warning message")
	l.Error("error message")

	output := buf.String()
	assert.Contains(t, output, "INF info message 42")
	assert.Contains(t, output, "WRN warning message")
	assert.Contains(t, output, "ERR error message")
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New("telemetry", Options{Format: FormatJSON, Output: &buf})

	l.Warn("could not load sensor data for sensor id %s", "abc")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "could not load sensor data for sensor id abc", record["msg"])
	assert.Equal(t, "telemetry", record["component"])
}

func TestLogger_NoComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newTextLogger(&buf, "", false)

	l.Info("plain")

	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "component=")
}

func TestEnvLogger_DebugEnv(t *testing.T) {
	t.Setenv(DebugEnv, "1")
	l := NewEnvLogger("env")
	require.NotNil(t, l)
}

func TestNoopLogger(t *testing.T) {
	l := Noop()
	assert.NotPanics(t, func() {
		l.Debug("debug")
		l.Info("info")
		l.Warn("warn")
		l.Error("error")
	})
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %s", "msg")
	l.Info("info %s", "msg")
	l.Warn("warn %s", "msg")
	l.Error("error %s", "msg")

	require.Len(t, l.Messages, 4)

	assert.Equal(t, "debug", l.Messages[0].Level)
	assert.Equal(t, "debug msg", l.Messages[0].Message)
	assert.Equal(t, "info", l.Messages[1].Level)
	assert.Equal(t, "warn", l.Messages[2].Level)
	assert.Equal(t, "error", l.Messages[3].Level)
	assert.Equal(t, "error msg", l.Messages[3].Message)
}

func TestBufferLogger_HasLevelAndCount(t *testing.T) {
	l := NewBufferLogger()

	assert.False(t, l.HasLevel("warn"))

	l.Warn("one")
	l.Warn("two")
	l.Error("three")

	assert.True(t, l.HasLevel("warn"))
	assert.Equal(t, 2, l.Count("warn"))
	assert.Equal(t, 1, l.Count("error"))
	assert.Equal(t, 0, l.Count("debug"))
}

func TestBufferLogger_Concurrent(t *testing.T) {
	l := NewBufferLogger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("message %d", i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, l.Count("info"))
}

func TestBufferLogger_Clear(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("test1")
	l.Info("test2")
	require.Len(t, l.Messages, 2)

	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestDefault(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	assert.NotNil(t, Default())

	buf := NewBufferLogger()
	SetDefault(buf)

	assert.Equal(t, buf, Default())
}

func TestLogger_FormatStrings(t *testing.T) {
	var buf bytes.Buffer
	l := newTextLogger(&buf, "fmt", false)

	l.Info("int: %d, string: %s, float: %.2f", 42, "hello", 3.14159)

	output := buf.String()
	assert.True(t, strings.Contains(output, "int: 42"))
	assert.True(t, strings.Contains(output, "string: hello"))
	assert.True(t, strings.Contains(output, "float: 3.14"))
}
