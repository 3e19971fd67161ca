package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel(" DEBUG "))
	require.Equal(t, slog.LevelWarn, parseLevel("warn"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel(""))
	require.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestBuildJSON(t *testing.T) {
	var buf bytes.Buffer
	log := build(&buf, "api", "info", "json")
	log.Debug("hidden")
	log.Info("board built", slog.Int("days", 3))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "api", line["service"])
	require.Equal(t, "board built", line["msg"])
	require.EqualValues(t, 3, line["days"])
}

func TestBuildText(t *testing.T) {
	var buf bytes.Buffer
	build(&buf, "render", "", "").Info("board written")
	require.Contains(t, buf.String(), "service=render")
	require.Contains(t, buf.String(), `msg="board written"`)
}
