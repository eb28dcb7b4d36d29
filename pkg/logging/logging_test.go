package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, true, slog.LevelInfo)

	ctx := AppendCtx(context.Background(), slog.String("request_id", "abc"))
	ctx = AppendCtx(ctx, slog.Int("files", 3))
	log.InfoContext(ctx, "extracted", "images", 2)
	log.DebugContext(ctx, "hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "extracted", rec["msg"])
	assert.Equal(t, "abc", rec["request_id"])
	assert.EqualValues(t, 3, rec["files"])
	assert.EqualValues(t, 2, rec["images"])
}

func TestLogger_WithAttrsKeepsContext(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, false, slog.LevelDebug).With("component", "server")

	log.DebugContext(AppendCtx(context.Background(), slog.String("path", "/health")), "hit")
	out := buf.String()
	assert.Contains(t, out, "component=server")
	assert.Contains(t, out, "path=/health")
}

func TestAppendCtx_DoesNotLeakIntoParent(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("a", "1"))
	_ = AppendCtx(parent, slog.String("b", "2"))
	attrs := parent.Value(slogFields).([]slog.Attr)
	assert.Len(t, attrs, 1)
}

func TestOutput(t *testing.T) {
	var stdout bytes.Buffer
	w, c := Output(&stdout, "")
	assert.Same(t, &stdout, w)
	assert.NoError(t, c.Close())

	path := filepath.Join(t.TempDir(), "dicometa.log")
	w, c = Output(&stdout, path)
	_, err := w.Write([]byte("line\n"))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
	assert.Equal(t, "line\n", stdout.String())
}
