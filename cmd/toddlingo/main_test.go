package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/at-ishikawa/toddlingo/internal/config"
)

func TestSetupLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(previous)
		debugMode = false
	})

	tests := []struct {
		name      string
		debugMode bool
		level     string
		wantDebug bool
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			level:     "info",
			wantDebug: true,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			level:     "info",
			wantDebug: false,
		},
		{
			name:      "debug level from config",
			debugMode: false,
			level:     "debug",
			wantDebug: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debugMode = tt.debugMode
			setupLogger(config.LogConfig{Level: tt.level, Format: "text"})
			assert.Equal(t, tt.wantDebug, slog.Default().Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "toddlingo", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"languages", "prefetch", "cache", "translations"}, names)
}
