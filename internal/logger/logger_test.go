package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogDebug,
		" DEBUG ": LogDebug,
		"info":    LogInfo,
		"error":   LogError,
		"":        LogInfo,
		"verbose": LogInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestStdErrLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdErrLogger(LogInfo, log.New(&buf, "", 0))

	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Errorf("failed: %s", "boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message written at info level")
	}
	if !strings.Contains(out, "INFO: shown 2") || !strings.Contains(out, "ERROR: failed: boom") {
		t.Errorf("unexpected output: %q", out)
	}

	buf.Reset()
	l.SetLogLevel(LogDebug)
	l.Debugf("now visible")
	if !strings.Contains(buf.String(), "DEBUG: now visible") {
		t.Errorf("debug message missing: %q", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	var l ILogger = &NullLogger{}
	l.Infof("nothing %s", "happens")
}
