package store

import (
	"fmt"

	"github.com/atelier-labs/atelier/ledger"
	"github.com/dgraph-io/badger/v3"
)

const prefixAssetBalance = "ASSET:BALANCE:"

func (bs *BadgerStore) ReadBalance(addr ledger.Address) (uint64, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readUint(txn, prefixAssetBalance+addr.String())
}

func (bs *BadgerStore) AddBalance(addr ledger.Address, amount uint64) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return bs.addBalance(txn, addr, amount)
	})
}

func (bs *BadgerStore) MoveBalance(from, to ledger.Address, amount uint64) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		if err := bs.subBalance(txn, from, amount); err != nil {
			return err
		}
		return bs.addBalance(txn, to, amount)
	})
}

func (bs *BadgerStore) addBalance(txn *badger.Txn, addr ledger.Address, amount uint64) error {
	key := prefixAssetBalance + addr.String()
	bal, err := bs.readUint(txn, key)
	if err != nil {
		return err
	}
	if bal+amount < bal {
		return fmt.Errorf("balance of %s overflows: %w", addr, ledger.ErrInvalidInput)
	}
	return bs.writeUint(txn, key, bal+amount)
}

func (bs *BadgerStore) subBalance(txn *badger.Txn, addr ledger.Address, amount uint64) error {
	key := prefixAssetBalance + addr.String()
	bal, err := bs.readUint(txn, key)
	if err != nil {
		return err
	}
	if bal < amount {
		return fmt.Errorf("balance %d of %s below %d: %w", bal, addr, amount, ledger.ErrInsufficientFunds)
	}
	return bs.writeUint(txn, key, bal-amount)
}
