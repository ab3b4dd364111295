package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{" WARN ", WarnLevel},
		{"error", ErrorLevel},
		{"info", InfoLevel},
		{"verbose", InfoLevel},
		{"", InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("Should write text with key values", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Level: InfoLevel, Output: &buf})
		l.With("component", "segment").Info("scan finished", "best_k", 3)

		out := buf.String()
		assert.Contains(t, out, "scan finished")
		assert.Contains(t, out, "component=segment")
		assert.Contains(t, out, "best_k=3")
	})

	t.Run("Should drop messages below the level", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Level: WarnLevel, Output: &buf})
		l.Info("hidden")
		l.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("Should emit JSON when enabled", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Level: DebugLevel, Output: &buf, JSON: true})
		l.Debug("gram built", "n", 12)

		assert.Contains(t, buf.String(), `"msg":"gram built"`)
		assert.Contains(t, buf.String(), `"n":12`)
	})
}
