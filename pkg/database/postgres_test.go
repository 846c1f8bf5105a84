package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis/momentum/pkg/config"
)

func TestNew_NotConfigured(t *testing.T) {
	cfg := &config.Config{}

	db, err := New(context.Background(), cfg)
	assert.Nil(t, db)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestNew_InvalidURL(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{URL: "://bad", MaxConns: 1, MinConns: 1}}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNew_Integration(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, db.Ping(ctx))
	assert.Equal(t, int32(cfg.Database.MaxConns), db.Stats().MaxConns)
}

func TestClose_Nil(t *testing.T) {
	var db *DB
	assert.NotPanics(t, func() { db.Close() })
}
