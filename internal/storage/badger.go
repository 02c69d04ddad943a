package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/dgraph-io/badger/v4"
)

type Badger struct {
	db *badger.DB
}

// OpenBadger opens (or creates) an embedded badger database in dir.
// An empty dir opens an in-memory instance.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	return &Badger{
		db: db,
	}, nil
}

func (b *Badger) Get(ctx context.Context, key string) ([]byte, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "storage.badger.get")
	defer span.End()

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("badger get %s: %w", key, err)
	}

	return value, nil
}

func (b *Badger) Set(ctx context.Context, key string, value []byte) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "storage.badger.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}

	return nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}
