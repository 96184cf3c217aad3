package logging

import (
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestGetLevelDefault(t *testing.T) {
	// Neither DEBUG nor LOG_LEVEL is set in the test environment,
	// so the default must be info.
	if lvl := GetLevel(); lvl != LevelInfo && lvl != LevelDebug {
		t.Errorf("GetLevel() = %v, want info (or debug when running under DEBUG)", lvl)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("LOGGING_TEST_INT", "7")
	if got := getEnvInt("LOGGING_TEST_INT", 3); got != 7 {
		t.Errorf("getEnvInt = %d, want 7", got)
	}
	if got := getEnvInt("LOGGING_TEST_MISSING", 3); got != 3 {
		t.Errorf("getEnvInt default = %d, want 3", got)
	}
	t.Setenv("LOGGING_TEST_INT", "bogus")
	if got := getEnvInt("LOGGING_TEST_INT", 3); got != 3 {
		t.Errorf("getEnvInt invalid = %d, want 3", got)
	}
}
