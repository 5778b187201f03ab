package draftstore

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/notedraft/internal/config"
)

// startTestNATSServer starts an embedded NATS server with JetStream.
func startTestNATSServer(t *testing.T) *natsserver.Server {
	opts := &natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		NoLog:     true,
		NoSigs:    true,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()

	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})

	return server
}

func newTestKVStore(t *testing.T, opts ...KVOption) *KVStore {
	t.Helper()
	server := startTestNATSServer(t)

	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	s, err := NewKVStore(context.Background(), js, BucketName("drafts", "default"), 0, opts...)
	require.NoError(t, err)
	return s
}

func TestBucketName(t *testing.T) {
	assert.Equal(t, "drafts_default", BucketName("drafts", "default"))
}

func TestKeyEncoding(t *testing.T) {
	for _, key := range []string{"notes_draft", "a/b c_draft", "ü.draft", ".x_draft"} {
		enc := encodeKey(key)
		assert.Regexp(t, `^[-_a-zA-Z0-9]+$`, enc)
		dec, err := decodeKey(enc)
		require.NoError(t, err)
		assert.Equal(t, key, dec)
	}
}

func TestKVStore_Contract(t *testing.T) {
	storeContract(t, newTestKVStore(t))
}

func TestKVStore_RateLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestKVStore(t, WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 2)))

	require.NoError(t, s.Set(ctx, "a_draft", "1"))
	require.NoError(t, s.Set(ctx, "a_draft", "2"))
	require.ErrorIs(t, s.Set(ctx, "a_draft", "3"), ErrQuotaExceeded)

	got, _, err := s.Get(ctx, "a_draft")
	require.NoError(t, err)
	assert.Equal(t, "2", got, "rejected write leaves the previous record")

	require.NoError(t, s.Remove(ctx, "a_draft"), "removals are not rate limited")
}

func TestConnectKV(t *testing.T) {
	server := startTestNATSServer(t)
	ctx := context.Background()

	cfg := config.Default().NATS
	cfg.URL = server.ClientURL()

	s, err := ConnectKV(ctx, cfg, "default", 0, nil)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "notes_draft", "over nats"))
	got, ok, err := s.Get(ctx, "notes_draft")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "over nats", got)

	require.NoError(t, s.Close())
	assert.True(t, s.nc.IsClosed())
}

func TestConnectKV_Unreachable(t *testing.T) {
	cfg := config.Default().NATS
	cfg.URL = "nats://127.0.0.1:1"
	cfg.Timeout = config.Duration(200 * time.Millisecond)

	_, err := ConnectKV(context.Background(), cfg, "default", 0, nil)
	require.ErrorIs(t, err, ErrUnavailable)
}
