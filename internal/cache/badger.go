package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
)

const badgerKeyPrefix = "loc:"

// BadgerStore is the node-local persistent tier. It survives process
// restarts and keeps serving when the network cache is down.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the database at dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	const op = "cache.NewBadgerStore"

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(userID uuid.UUID) []byte {
	return []byte(badgerKeyPrefix + userID.String())
}

func (b *BadgerStore) Name() types.CacheTier { return types.TierBadger }

func (b *BadgerStore) Get(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error) {
	const op = "BadgerStore.Get"

	var p models.CurrentPosition
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return types.ErrCacheMiss
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if errors.Is(err, types.ErrCacheMiss) {
		return models.CurrentPosition{}, types.ErrCacheMiss
	}
	if err != nil {
		return models.CurrentPosition{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (b *BadgerStore) Set(ctx context.Context, userID uuid.UUID, p models.CurrentPosition, ttl time.Duration) error {
	const op = "BadgerStore.Set"

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(badgerKey(userID), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (b *BadgerStore) Delete(ctx context.Context, userID uuid.UUID) error {
	const op = "BadgerStore.Delete"

	err := b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(badgerKey(userID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (b *BadgerStore) Ping(ctx context.Context) error {
	const op = "BadgerStore.Ping"

	if b.db.IsClosed() {
		return fmt.Errorf("%s: %w", op, types.ErrTierUnavailable)
	}
	return nil
}

// Close flushes and closes the database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
