package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		level   string
		verbose bool
		want    logrus.Level
	}{
		{"debug", false, logrus.DebugLevel},
		{"WARN", false, logrus.WarnLevel},
		{"error", false, logrus.ErrorLevel},
		{"", false, logrus.InfoLevel},
		{"bogus", true, logrus.DebugLevel},
		{"warn", true, logrus.DebugLevel},
	}

	for _, tt := range tests {
		if got := New(&bytes.Buffer{}, tt.level, tt.verbose).Level; got != tt.want {
			t.Errorf("level %q verbose %v: got %v, want %v", tt.level, tt.verbose, got, tt.want)
		}
	}
}

func TestNodeField(t *testing.T) {
	var buf bytes.Buffer
	Node(New(&buf, "info", false), 3).Info("ready")

	out := buf.String()
	if !strings.Contains(out, "rank=3") || !strings.Contains(out, "msg=ready") {
		t.Errorf("unexpected log line: %q", out)
	}
}
