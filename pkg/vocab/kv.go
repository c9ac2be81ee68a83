package vocab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// KeyValue is the subset of jetstream.KeyValue used by KVSource
type KeyValue interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
}

// KVSource reads vocabulary documents from a NATS JetStream key-value bucket,
// one key per prefix
type KVSource struct {
	bucket KeyValue
}

func NewKVSource(bucket KeyValue) *KVSource {
	return &KVSource{bucket: bucket}
}

// ConnectKV dials url and opens (or creates) the bucket. The returned close
// function drains the connection.
func ConnectKV(ctx context.Context, url, bucket string) (*KVSource, func(), error) {
	nc, err := nats.Connect(url, nats.Name("curie"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "vocabulary documents keyed by prefix",
	})
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to open bucket %s: %w", bucket, err)
	}

	return NewKVSource(kv), func() { _ = nc.Drain() }, nil
}

func (s *KVSource) Fetch(ctx context.Context, prefix string) (io.ReadCloser, error) {
	entry, err := s.bucket.Get(ctx, prefix)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrInvalidKey) {
			return nil, fmt.Errorf("prefix %q: %w", prefix, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %q from bucket: %w", prefix, err)
	}
	return io.NopCloser(bytes.NewReader(entry.Value())), nil
}

// Put stores the document for prefix in the bucket
func (s *KVSource) Put(ctx context.Context, prefix string, data []byte) error {
	if _, err := s.bucket.Put(ctx, prefix, data); err != nil {
		return fmt.Errorf("failed to put %q into bucket: %w", prefix, err)
	}
	return nil
}
