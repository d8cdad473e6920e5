package ecslog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOpDiscardsEverything(t *testing.T) {
	log := NoOp()
	assert.NotPanics(t, func() {
		log.Debugw("x")
		log.Infow("y", "k", "v")
		log.Warnw("z")
		log.Errorw("w")
	})
	assert.NoError(t, log.Sync())
}

func TestNewBuildsAConsoleLogger(t *testing.T) {
	log, err := New(LevelDebug, FormatConsole)
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Infow("hello", "k", "v")
}

func TestNewFallsBackToInfoOnBadLevel(t *testing.T) {
	log, err := New(Level("not-a-level"), FormatJSON)
	require.NoError(t, err)
	require.NotNil(t, log)
}
