package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/threadline-app/threadline/internal/domain/ports"
	"github.com/threadline-app/threadline/internal/infrastructure/config"
	"github.com/threadline-app/threadline/internal/infrastructure/host/socket"
	"github.com/threadline-app/threadline/internal/infrastructure/hostd"
)

// startDaemon brings up a host daemon on a temp socket and returns its
// socket path plus the backing store.
func startDaemon(t *testing.T) (string, *hostd.Store) {
	t.Helper()

	dir := t.TempDir()
	store, err := hostd.NewStore(config.SQLiteConfig{Path: filepath.Join(dir, "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.EnsureSchema(context.Background()))

	socketPath := filepath.Join(dir, "host.sock")
	server, err := hostd.NewServer(socketPath, store, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = server.Start(ctx)
	}()
	t.Cleanup(server.Shutdown)

	return socketPath, store
}

// waitNotification blocks until the client receives a push.
func waitNotification(t *testing.T, client *socket.Client) ports.Notification {
	t.Helper()
	select {
	case n, ok := <-client.Notifications():
		require.True(t, ok, "notification channel closed early")
		return n
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
		return ports.Notification{}
	}
}

// dialEditor connects a socket client to the daemon.
func dialEditor(t *testing.T, socketPath string) *socket.Client {
	t.Helper()

	var client *socket.Client
	var err error
	// The listener comes up asynchronously with Start.
	for i := 0; i < 50; i++ {
		client, err = socket.Dial(socketPath, nil)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}
