package mlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(&LogConfig{Level: "loud"})
	require.Error(t, err)

	lg, err := NewLogger(&LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, lg)

	f := filepath.Join(t.TempDir(), "poollist.log")
	lg, err = NewLogger(&LogConfig{Level: "debug", File: f, Production: true})
	require.NoError(t, err)
	lg.Debug("pool stats", zap.Int("nodes", 3))
	require.NoError(t, lg.Sync())

	b, err := os.ReadFile(f)
	require.NoError(t, err)
	require.Contains(t, string(b), `"nodes":3`)
}
