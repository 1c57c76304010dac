package app

import (
	"testing"
)

// TestDetermineLogLevel verifies the level precedence rules.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "default is info",
			config: Config{},
			want:   "info",
		},
		{
			name:   "verbose means debug",
			config: Config{Verbose: true},
			want:   "debug",
		},
		{
			name:   "quiet means warn",
			config: Config{Quiet: true},
			want:   "warn",
		},
		{
			name:   "quiet wins over verbose",
			config: Config{Verbose: true, Quiet: true},
			want:   "warn",
		},
		{
			name:   "explicit level wins over verbose",
			config: Config{Verbose: true, LogLevel: "error"},
			want:   "error",
		},
		{
			name:   "invalid level falls back to info",
			config: Config{LogLevel: "bogus"},
			want:   "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := determineLogLevel(&tt.config)
			if got != tt.want {
				t.Errorf("determineLogLevel() = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestNewLogger verifies a logger is produced for every format.
func TestNewLogger(t *testing.T) {
	for _, format := range []string{"auto", "json"} {
		config := &Config{LogFormat: format}
		logger := NewLogger(config)
		logger.Debug().Msg("should not panic")
	}
}
