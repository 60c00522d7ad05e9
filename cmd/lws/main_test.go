package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelOf(t *testing.T) {
	testcases := []struct {
		desc      string
		verbosity int
		expected  slog.Level
		wantErr   bool
	}{
		{desc: "system", verbosity: 1, expected: LevelSystem},
		{desc: "error", verbosity: 2, expected: slog.LevelError},
		{desc: "warn", verbosity: 3, expected: slog.LevelWarn},
		{desc: "debug", verbosity: 4, expected: slog.LevelDebug},
		{desc: "too low", verbosity: 0, wantErr: true},
		{desc: "too high", verbosity: 5, wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			level, err := levelOf(tc.verbosity)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestReplaceLevel(t *testing.T) {
	a := replaceLevel(nil, slog.Any(slog.LevelKey, LevelSystem))
	assert.Equal(t, "SYSTEM", a.Value.String())

	a = replaceLevel(nil, slog.Any(slog.LevelKey, slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, a.Value.Any())
}
