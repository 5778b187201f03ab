package draftstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/notedraft/internal/config"
)

// KVStore keeps drafts in a NATS JetStream key/value bucket, one bucket per origin.
//
// Writes are rate limited; a write over budget fails with ErrQuotaExceeded
// and is retried by the caller on its next tick.
type KVStore struct {
	bucket  jetstream.KeyValue
	limiter *rate.Limiter
	logger  *zap.Logger
	nc      *nats.Conn // owned connection, closed by Close; nil if caller-owned
}

// KVOption configures a KVStore.
type KVOption func(*KVStore)

// WithLimiter sets the write limiter. A nil limiter disables limiting.
func WithLimiter(l *rate.Limiter) KVOption {
	return func(s *KVStore) { s.limiter = l }
}

// WithKVLogger sets the logger.
func WithKVLogger(l *zap.Logger) KVOption {
	return func(s *KVStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// BucketName returns the bucket used for origin.
func BucketName(prefix, origin string) string {
	return prefix + "_" + origin
}

// NewKVStore creates or updates the bucket and returns a store on it.
// maxBytes caps the bucket size; zero leaves it unlimited.
func NewKVStore(ctx context.Context, js jetstream.JetStream, bucket string, maxBytes int64, opts ...KVOption) (*KVStore, error) {
	cfg := jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "notedraft field drafts",
		History:     1,
	}
	if maxBytes > 0 {
		cfg.MaxBytes = maxBytes
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: creating bucket %s: %v", ErrUnavailable, bucket, err)
	}

	s := &KVStore{bucket: kv, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ConnectKV dials NATS and opens the bucket for origin. The returned store
// owns the connection.
func ConnectKV(ctx context.Context, cfg config.NATSConfig, origin string, quotaBytes int64, logger *zap.Logger) (*KVStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	natsOpts := []nats.Option{
		nats.Name("notedraft"),
		nats.Timeout(cfg.Timeout.Duration()),
	}
	if cfg.Token.IsSet() {
		natsOpts = append(natsOpts, nats.Token(cfg.Token.Value()))
	}

	nc, err := nats.Connect(cfg.URL, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to nats: %v", ErrUnavailable, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: jetstream: %v", ErrUnavailable, err)
	}

	bucket := BucketName(cfg.BucketPrefix, origin)
	s, err := NewKVStore(ctx, js, bucket, quotaBytes,
		WithLimiter(rate.NewLimiter(rate.Limit(cfg.WritesPerSecond), cfg.Burst)),
		WithKVLogger(logger),
	)
	if err != nil {
		nc.Close()
		return nil, err
	}
	s.nc = nc

	logger.Info("draft bucket ready", zap.String("bucket", bucket), zap.String("url", nc.ConnectedUrlRedacted()))
	return s, nil
}

// encodeKey maps an arbitrary key onto the KV key alphabet.
func encodeKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func decodeKey(k string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(k)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Get implements Store.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.bucket.Get(ctx, encodeKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("getting draft %q: %w", key, err)
	}
	return string(entry.Value()), true, nil
}

// Set implements Store.
func (s *KVStore) Set(ctx context.Context, key, content string) error {
	if s.limiter != nil && !s.limiter.Allow() {
		return ErrQuotaExceeded
	}
	if _, err := s.bucket.PutString(ctx, encodeKey(key), content); err != nil {
		return fmt.Errorf("%w: putting draft %q: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Remove implements Store.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, encodeKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting draft %q: %w", key, err)
	}
	return nil
}

// Keys implements Lister.
func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	lister, err := s.bucket.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer func() { _ = lister.Stop() }()

	var keys []string
	for k := range lister.Keys() {
		key, err := decodeKey(k)
		if err != nil {
			s.logger.Warn("skipping foreign key in draft bucket", zap.String("kv_key", k))
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close drains the owned connection, if any.
func (s *KVStore) Close() error {
	if s.nc == nil {
		return nil
	}
	done := make(chan struct{})
	s.nc.SetClosedHandler(func(*nats.Conn) { close(done) })
	if err := s.nc.Drain(); err != nil {
		s.nc.Close()
		return err
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.nc.Close()
	}
	return nil
}
