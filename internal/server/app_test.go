package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/server/config"
	"github.com/dmitrijs2005/loandesk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.StorageDriver = storage.DriverMemory
	c.DashboardAPIURL = ""
	return c
}

func TestNewApp_UnknownDriver(t *testing.T) {
	c := testConfig()
	c.StorageDriver = "floppy"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "storage init error")
}

func TestNewApp_InvalidDashboardURL(t *testing.T) {
	closed := false
	orig := openStore
	openStore = func(ctx context.Context, o storage.Options) (*storage.Observable, func() error, error) {
		return storage.NewObservable(storage.NewMemoryStore()), func() error { closed = true; return nil }, nil
	}
	t.Cleanup(func() { openStore = orig })

	c := testConfig()
	c.DashboardAPIURL = "not a url"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.True(t, closed)
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_InvalidSchedule(t *testing.T) {
	c := testConfig()
	c.SessionPruneSchedule = "every now and then"
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	err = app.Run(context.Background())
	assert.ErrorContains(t, err, "invalid prune schedule")
}

func TestHousekeeping_PrunesSessions(t *testing.T) {
	c := testConfig()
	c.SessionValidity = time.Millisecond
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = app.auth.SignUp(ctx, "jane@example.com", "s3cret")
	require.NoError(t, err)
	_, _, err = app.auth.SignIn(ctx, "jane@example.com", "s3cret")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	app.housekeeping(ctx)

	n, err := app.auth.PruneExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
