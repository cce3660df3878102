package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/internal/config"
)

func TestNewRejectsNilConfig(t *testing.T) {
	a, err := New(context.Background(), nil, zap.NewNop())
	require.Error(t, err)
	require.Nil(t, a)
}

func TestNewFailsOnBadDatabaseURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{URL: "postgres://%zz"},
		Buffer:   config.BufferConfig{Path: t.TempDir() + "/buffer.db"},
	}

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "postgres")
	require.Nil(t, a)
}
