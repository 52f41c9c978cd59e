package logging

import (
	"io"
	"os"
	"runtime"
	"time"

	"github.com/hashicorp/go-hclog"
)

// NewLogger creates a new hclog logger with standard settings
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv("CRAFTKIT_JSON_LOG") == "1"

	// ASCII prefix on Windows consoles, emoji elsewhere
	if !jsonFormat {
		prefix := "[CK] "
		if runtime.GOOS != "windows" {
			prefix = "⛏️ "
		}
		output = NewPrefixWriter(prefix, output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// GetLogLevel returns the configured log level from environment
func GetLogLevel() string {
	level := os.Getenv("CRAFTKIT_LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	return level
}

// OrNull returns logger, or a logger that discards everything when logger is nil.
func OrNull(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger
}
