package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelsAndJSON(t *testing.T) {
	var buf bytes.Buffer
	setOutput(&buf, "WARN", true)
	t.Cleanup(func() { Init("info", false) })

	Info("hidden")
	Warn("shown", "board_id", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, float64(7), rec["board_id"])
	assert.Equal(t, "nexusboard", rec["service"])
}

func TestWithContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	setOutput(&buf, "info", true)
	t.Cleanup(func() { Init("info", false) })

	ctx := ContextWithRequestID(context.Background(), "req-1")
	WithContext(ctx).Info("handled")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec["request_id"])

	buf.Reset()
	WithContext(context.Background()).Info("plain")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, buf.String(), "request_id")
}
