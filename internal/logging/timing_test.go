package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTimeRunsFunctionWhenDisabled(t *testing.T) {
	if err := Init(Config{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ran := false
	Time("noop timing", func() { ran = true })
	if !ran {
		t.Error("Time() did not run the function with logging disabled")
	}
}

func TestStartEndLogsDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	if err := Init(Config{FilePath: path, Level: slog.LevelDebug, MaxSizeMB: 1}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	tc := Start("derive client")
	End(tc)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "derive client") {
		t.Errorf("log file missing timing entry, got: %s", data)
	}
	if !strings.Contains(string(data), "duration") {
		t.Errorf("log file missing duration attribute, got: %s", data)
	}
}
