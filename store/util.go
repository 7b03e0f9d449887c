package store

import (
	"encoding/binary"

	"github.com/atelier-labs/atelier/ledger"
	"github.com/dgraph-io/badger/v3"
	"github.com/vmihailenco/msgpack/v4"
)

func MsgpackMarshalPanic(val interface{}) []byte {
	b, err := msgpack.Marshal(val)
	if err != nil {
		panic(err)
	}
	return b
}

func MsgpackUnmarshal(data []byte, val interface{}) error {
	return msgpack.Unmarshal(data, val)
}

func idToBytes(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

func (bs *BadgerStore) readUint(txn *badger.Txn, key string) (uint64, error) {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(val), nil
}

func (bs *BadgerStore) writeUint(txn *badger.Txn, key string, val uint64) error {
	return txn.Set([]byte(key), idToBytes(val))
}

// stampEvent fills CreatedAt from the monotonic clock and bounds the
// memo before the event joins a transaction.
func (bs *BadgerStore) stampEvent(ev *ledger.Event) {
	if ev == nil {
		return
	}
	if len(ev.Memo) > ledger.MaxEventMemoSize {
		ev.Memo = ev.Memo[:ledger.MaxEventMemoSize]
	}
	ev.CreatedAt = bs.clock.Now()
}

func (bs *BadgerStore) appendEvent(txn *badger.Txn, seqKey, prefix string, ev *ledger.Event) error {
	if ev == nil {
		return nil
	}
	seq, err := bs.readUint(txn, seqKey)
	if err != nil {
		return err
	}
	ev.ID = seq + 1
	if err := bs.writeUint(txn, seqKey, ev.ID); err != nil {
		return err
	}
	key := append([]byte(prefix), idToBytes(ev.ID)...)
	return txn.Set(key, MsgpackMarshalPanic(ev))
}

func (bs *BadgerStore) listEvents(seqPrefix string, offset uint64, limit int) ([]*ledger.Event, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(seqPrefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	start := append([]byte(seqPrefix), idToBytes(offset)...)
	var evs []*ledger.Event
	for it.Seek(start); it.Valid(); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		var ev ledger.Event
		if err := MsgpackUnmarshal(val, &ev); err != nil {
			return nil, err
		}
		evs = append(evs, &ev)
		if len(evs) == limit {
			break
		}
	}
	return evs, nil
}
