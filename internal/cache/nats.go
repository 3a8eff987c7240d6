package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
)

// NatsKV is the fastest tier: a replicated in-memory key-value bucket.
type NatsKV struct {
	nc *nats.Conn
	kv nats.KeyValue
}

// NewNatsKV connects the bucket, creating it when absent. Entry TTL is a
// bucket-level property in JetStream KV, so it is fixed at creation time.
func NewNatsKV(url, bucket string, ttl time.Duration) (*NatsKV, error) {
	const op = "cache.NewNatsKV"

	nc, err := nats.Connect(url,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: bucket,
			TTL:    ttl,
		})
	}
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &NatsKV{nc: nc, kv: kv}, nil
}

func (n *NatsKV) Name() types.CacheTier { return types.TierNats }

func (n *NatsKV) Get(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error) {
	const op = "NatsKV.Get"

	entry, err := n.kv.Get(userID.String())
	if errors.Is(err, nats.ErrKeyNotFound) {
		return models.CurrentPosition{}, types.ErrCacheMiss
	}
	if err != nil {
		return models.CurrentPosition{}, fmt.Errorf("%s: %w", op, err)
	}

	var p models.CurrentPosition
	if err := json.Unmarshal(entry.Value(), &p); err != nil {
		return models.CurrentPosition{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (n *NatsKV) Set(ctx context.Context, userID uuid.UUID, p models.CurrentPosition, _ time.Duration) error {
	const op = "NatsKV.Set"

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := n.kv.Put(userID.String(), data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (n *NatsKV) Delete(ctx context.Context, userID uuid.UUID) error {
	const op = "NatsKV.Delete"

	if err := n.kv.Delete(userID.String()); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (n *NatsKV) Ping(ctx context.Context) error {
	const op = "NatsKV.Ping"

	if !n.nc.IsConnected() {
		return fmt.Errorf("%s: %w", op, types.ErrTierUnavailable)
	}
	if _, err := n.kv.Status(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close shuts the NATS connection down.
func (n *NatsKV) Close() {
	n.nc.Close()
}
