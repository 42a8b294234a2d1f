package log_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/pipeboard/pipeboard/pkg/log"
	"github.com/stretchr/testify/assert"
)

func TestSetup_ParsesLevel(t *testing.T) {
	log.Setup("debug")
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	log.Setup("error")
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelWarn))

	// Unknown levels fall back to info.
	log.Setup("verbose")
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestWithWorkflow_CarriesAttributes(t *testing.T) {
	var buf bytes.Buffer

	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	log.WithWorkflow("session", "CI").Info("opened")

	assert.Contains(t, buf.String(), "module=session")
	assert.Contains(t, buf.String(), "workflow=CI")
}
