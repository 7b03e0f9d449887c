package store

import (
	"context"
	"time"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/dgraph-io/badger/v3"
)

// BadgerStore is the single persistence layer shared by the token
// registry, the exchange and the asset ledger. Every mutating ledger
// operation commits its whole write set in one badger transaction.
type BadgerStore struct {
	db    *badger.DB
	clock *Clock
}

func OpenBadger(ctx context.Context, path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			lsm, vlog := db.Size()
			logger.Verbosef("Badger LSM %d VLOG %d\n", lsm, vlog)
			if lsm > 1024*1024*8 || vlog > 1024*1024*32 {
				err := db.RunValueLogGC(0.5)
				logger.Printf("Badger RunValueLogGC %v\n", err)
			}
			time.Sleep(5 * time.Minute)
		}
	}()

	bs := &BadgerStore{db: db}
	bs.clock, err = NewClock(bs)
	if err != nil {
		db.Close()
		return nil, err
	}
	return bs, nil
}

func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}

func (bs *BadgerStore) Badger() *badger.DB {
	return bs.db
}

func (bs *BadgerStore) WriteProperty(key, val []byte) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

func (bs *BadgerStore) ReadProperty(key []byte) ([]byte, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
