package store

import (
	"fmt"

	"github.com/atelier-labs/atelier/ledger"
	"github.com/atelier-labs/atelier/registry"
	"github.com/dgraph-io/badger/v3"
)

const (
	keyRegistryControl  = "REGISTRY:CONTROL"
	keyRegistryEventSeq = "REGISTRY:EVENT:SEQUENCE"
	keyTokenTotal       = "REGISTRY:TOKEN:TOTAL"
	keyCreatorCount     = "REGISTRY:CREATOR:COUNT"

	prefixTokenPayload  = "REGISTRY:TOKEN:PAYLOAD:"
	prefixCreatorMember = "REGISTRY:CREATOR:MEMBER:"
	prefixCreatorMinted = "REGISTRY:CREATOR:MINTED:"
	prefixRegistryEvent = "REGISTRY:EVENT:PAYLOAD:"
)

func (bs *BadgerStore) ReadRegistryControl() (*ledger.Control, error) {
	val, err := bs.ReadProperty([]byte(keyRegistryControl))
	if err != nil || val == nil {
		return nil, err
	}
	var c ledger.Control
	err = MsgpackUnmarshal(val, &c)
	return &c, err
}

func (bs *BadgerStore) WriteRegistryControl(c *ledger.Control, ev *ledger.Event) error {
	bs.stampEvent(ev)
	return bs.db.Update(func(txn *badger.Txn) error {
		err := txn.Set([]byte(keyRegistryControl), MsgpackMarshalPanic(c))
		if err != nil {
			return err
		}
		return bs.appendEvent(txn, keyRegistryEventSeq, prefixRegistryEvent, ev)
	})
}

func (bs *BadgerStore) IsCreatorRegistered(creator ledger.Address) (bool, error) {
	val, err := bs.ReadProperty([]byte(prefixCreatorMember + creator.String()))
	return val != nil, err
}

// WriteCreator appends to the whitelist. Membership and capacity are
// re-checked inside the transaction so the set stays bounded even if
// callers race a stale read.
func (bs *BadgerStore) WriteCreator(creator ledger.Address, ev *ledger.Event) error {
	bs.stampEvent(ev)
	return bs.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixCreatorMember + creator.String())
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("creator %s: %w", creator, ledger.ErrAlreadyExists)
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		count, err := bs.readUint(txn, keyCreatorCount)
		if err != nil {
			return err
		}
		if count >= registry.MaxCreators {
			return fmt.Errorf("creator registry full at %d: %w", count, ledger.ErrLimitExceeded)
		}
		if err := txn.Set(key, []byte{1}); err != nil {
			return err
		}
		if err := bs.writeUint(txn, keyCreatorCount, count+1); err != nil {
			return err
		}
		return bs.appendEvent(txn, keyRegistryEventSeq, prefixRegistryEvent, ev)
	})
}

func (bs *BadgerStore) ReadCreatorMintCount(creator ledger.Address) (uint64, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readUint(txn, prefixCreatorMinted+creator.String())
}

func (bs *BadgerStore) CountCreators() (uint64, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readUint(txn, keyCreatorCount)
}

func (bs *BadgerStore) ReadToken(id uint64) (*registry.Token, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readToken(txn, id)
}

func (bs *BadgerStore) ReadTotalMinted() (uint64, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readUint(txn, keyTokenTotal)
}

// WriteMint commits a new token, the total counter, the creator's
// mint counter and the mint event as one unit.
func (bs *BadgerStore) WriteMint(t *registry.Token, ev *ledger.Event) error {
	bs.stampEvent(ev)
	return bs.db.Update(func(txn *badger.Txn) error {
		if err := bs.writeToken(txn, t); err != nil {
			return err
		}
		if err := bs.writeUint(txn, keyTokenTotal, t.ID); err != nil {
			return err
		}
		minted, err := bs.readUint(txn, prefixCreatorMinted+t.Creator.String())
		if err != nil {
			return err
		}
		if err := bs.writeUint(txn, prefixCreatorMinted+t.Creator.String(), minted+1); err != nil {
			return err
		}
		return bs.appendEvent(txn, keyRegistryEventSeq, prefixRegistryEvent, ev)
	})
}

func (bs *BadgerStore) WriteToken(t *registry.Token, ev *ledger.Event) error {
	bs.stampEvent(ev)
	return bs.db.Update(func(txn *badger.Txn) error {
		if err := bs.writeToken(txn, t); err != nil {
			return err
		}
		return bs.appendEvent(txn, keyRegistryEventSeq, prefixRegistryEvent, ev)
	})
}

func (bs *BadgerStore) ListRegistryEvents(offset uint64, limit int) ([]*ledger.Event, error) {
	return bs.listEvents(prefixRegistryEvent, offset, limit)
}

func (bs *BadgerStore) readToken(txn *badger.Txn, id uint64) (*registry.Token, error) {
	key := append([]byte(prefixTokenPayload), idToBytes(id)...)
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var t registry.Token
	err = MsgpackUnmarshal(val, &t)
	return &t, err
}

func (bs *BadgerStore) writeToken(txn *badger.Txn, t *registry.Token) error {
	key := append([]byte(prefixTokenPayload), idToBytes(t.ID)...)
	return txn.Set(key, MsgpackMarshalPanic(t))
}
