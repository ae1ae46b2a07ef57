package telemetry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("verbose")
	require.Error(t, err)
}

func TestLogrusLevel(t *testing.T) {
	require.Equal(t, logrus.DebugLevel, logrusLevel(slog.LevelDebug))
	require.Equal(t, logrus.InfoLevel, logrusLevel(slog.LevelInfo))
	require.Equal(t, logrus.WarnLevel, logrusLevel(slog.LevelWarn))
	require.Equal(t, logrus.ErrorLevel, logrusLevel(slog.LevelError))
}

func TestSetup(t *testing.T) {
	t.Setenv("OTEL_METRICS_EXPORTER", "none")
	t.Setenv("OTEL_TRACES_EXPORTER", "none")
	t.Setenv("OTEL_LOGS_EXPORTER", "none")

	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	ctx := context.Background()
	client, err := Setup(ctx, Config{AppName: "rgeolattice", Level: slog.LevelInfo})
	require.NoError(t, err)
	require.NotNil(t, client)
	require.NotSame(t, previous, slog.Default())

	slog.InfoContext(ctx, "telemetry ready")
	require.NoError(t, client.Flush(ctx))
	client.Shutdown(ctx)
}
