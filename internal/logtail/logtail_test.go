package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "modedeck.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v, want nil", err)
	}
	if len(lines) != 0 {
		t.Fatalf("Read() = %v, want no lines", lines)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"text info", `time=2025-10-08T21:01:05Z level=INFO msg="snapshot applied"`, "INFO"},
		{"text warn", `time=2025-10-08T21:01:05Z level=WARN msg="mutation not delivered"`, "WARN"},
		{"text offset level", `time=2025-10-08T21:01:05Z level=INFO+2 msg=x`, "INFO"},
		{"json error", `{"time":"2025-10-08T21:01:05Z","level":"ERROR","msg":"poll failed"}`, "ERROR"},
		{"json debug", `{"level":"DEBUG","msg":"mutation queued"}`, "DEBUG"},
		{"no level", "plain text line", ""},
		{"unknown level", "level=LOUD msg=x", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Level(tt.line); got != tt.want {
				t.Errorf("Level(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
