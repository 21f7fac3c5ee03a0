package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The default level must be adjustable after Init, since command line flags
// are parsed later than the logger is set up.
func TestSetDebugTogglesDefaultLevel(t *testing.T) {
	Init(false)
	ctx := context.Background()

	assert.False(t, slog.Default().Enabled(ctx, slog.LevelDebug))
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelInfo))

	SetDebug(true)
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelDebug))

	SetDebug(false)
	assert.False(t, slog.Default().Enabled(ctx, slog.LevelDebug))
}
