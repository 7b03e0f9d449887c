package store

import (
	"fmt"

	"github.com/atelier-labs/atelier/exchange"
	"github.com/atelier-labs/atelier/ledger"
	"github.com/dgraph-io/badger/v3"
)

const (
	keyExchangeControl  = "EXCHANGE:CONTROL"
	keyExchangeParams   = "EXCHANGE:PARAMS"
	keyExchangeEventSeq = "EXCHANGE:EVENT:SEQUENCE"

	prefixListingPayload = "EXCHANGE:LISTING:PAYLOAD:"
	prefixApproval       = "EXCHANGE:APPROVAL:"
	prefixExchangeEvent  = "EXCHANGE:EVENT:PAYLOAD:"
)

func (bs *BadgerStore) ReadExchangeControl() (*ledger.Control, error) {
	val, err := bs.ReadProperty([]byte(keyExchangeControl))
	if err != nil || val == nil {
		return nil, err
	}
	var c ledger.Control
	err = MsgpackUnmarshal(val, &c)
	return &c, err
}

func (bs *BadgerStore) WriteExchangeControl(c *ledger.Control, ev *ledger.Event) error {
	bs.stampEvent(ev)
	return bs.db.Update(func(txn *badger.Txn) error {
		err := txn.Set([]byte(keyExchangeControl), MsgpackMarshalPanic(c))
		if err != nil {
			return err
		}
		return bs.appendEvent(txn, keyExchangeEventSeq, prefixExchangeEvent, ev)
	})
}

func (bs *BadgerStore) ReadExchangeParams() (*exchange.Params, error) {
	val, err := bs.ReadProperty([]byte(keyExchangeParams))
	if err != nil || val == nil {
		return nil, err
	}
	var p exchange.Params
	err = MsgpackUnmarshal(val, &p)
	return &p, err
}

func (bs *BadgerStore) WriteExchangeParams(p *exchange.Params, ev *ledger.Event) error {
	bs.stampEvent(ev)
	return bs.db.Update(func(txn *badger.Txn) error {
		err := txn.Set([]byte(keyExchangeParams), MsgpackMarshalPanic(p))
		if err != nil {
			return err
		}
		return bs.appendEvent(txn, keyExchangeEventSeq, prefixExchangeEvent, ev)
	})
}

func (bs *BadgerStore) ReadListing(tokenID uint64) (*exchange.Listing, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readListing(txn, tokenID)
}

func (bs *BadgerStore) WriteListing(l *exchange.Listing, ev *ledger.Event) error {
	bs.stampEvent(ev)
	return bs.db.Update(func(txn *badger.Txn) error {
		key := append([]byte(prefixListingPayload), idToBytes(l.TokenID)...)
		if err := txn.Set(key, MsgpackMarshalPanic(l)); err != nil {
			return err
		}
		return bs.appendEvent(txn, keyExchangeEventSeq, prefixExchangeEvent, ev)
	})
}

func (bs *BadgerStore) DeleteListing(tokenID uint64, ev *ledger.Event) error {
	bs.stampEvent(ev)
	return bs.db.Update(func(txn *badger.Txn) error {
		key := append([]byte(prefixListingPayload), idToBytes(tokenID)...)
		if err := txn.Delete(key); err != nil {
			return err
		}
		return bs.appendEvent(txn, keyExchangeEventSeq, prefixExchangeEvent, ev)
	})
}

func (bs *BadgerStore) IsOperatorApproved(tokenID uint64, operator ledger.Address) (bool, error) {
	val, err := bs.ReadProperty(approvalKey(tokenID, operator))
	return val != nil, err
}

func (bs *BadgerStore) WriteApproval(tokenID uint64, operator ledger.Address, ev *ledger.Event) error {
	bs.stampEvent(ev)
	return bs.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(approvalKey(tokenID, operator), []byte{1}); err != nil {
			return err
		}
		return bs.appendEvent(txn, keyExchangeEventSeq, prefixExchangeEvent, ev)
	})
}

func (bs *BadgerStore) DeleteApproval(tokenID uint64, operator ledger.Address, ev *ledger.Event) error {
	bs.stampEvent(ev)
	return bs.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(approvalKey(tokenID, operator)); err != nil {
			return err
		}
		return bs.appendEvent(txn, keyExchangeEventSeq, prefixExchangeEvent, ev)
	})
}

// SettleSale commits the three value legs, the ownership change, the
// listing removal and the sold event in one transaction. The buyer's
// balance check happens inside the transaction, so an underfunded
// buyer aborts every leg.
func (bs *BadgerStore) SettleSale(s *exchange.Sale, ev *ledger.Event) error {
	bs.stampEvent(ev)
	return bs.db.Update(func(txn *badger.Txn) error {
		if err := bs.subBalance(txn, s.Buyer, s.Price); err != nil {
			return err
		}
		if s.Fee > 0 {
			if err := bs.addBalance(txn, s.FeeAddress, s.Fee); err != nil {
				return err
			}
		}
		if s.Royalty > 0 {
			if err := bs.addBalance(txn, s.Creator, s.Royalty); err != nil {
				return err
			}
		}
		if s.SellerAmount > 0 {
			if err := bs.addBalance(txn, s.Seller, s.SellerAmount); err != nil {
				return err
			}
		}
		t, err := bs.readToken(txn, s.TokenID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("token %d: %w", s.TokenID, ledger.ErrNotFound)
		}
		t.Owner = s.Buyer
		if err := bs.writeToken(txn, t); err != nil {
			return err
		}
		l, err := bs.readListing(txn, s.TokenID)
		if err != nil {
			return err
		}
		if l == nil {
			return fmt.Errorf("token %d not listed: %w", s.TokenID, ledger.ErrNotFound)
		}
		key := append([]byte(prefixListingPayload), idToBytes(s.TokenID)...)
		if err := txn.Delete(key); err != nil {
			return err
		}
		return bs.appendEvent(txn, keyExchangeEventSeq, prefixExchangeEvent, ev)
	})
}

func (bs *BadgerStore) ListExchangeEvents(offset uint64, limit int) ([]*ledger.Event, error) {
	return bs.listEvents(prefixExchangeEvent, offset, limit)
}

func (bs *BadgerStore) readListing(txn *badger.Txn, tokenID uint64) (*exchange.Listing, error) {
	key := append([]byte(prefixListingPayload), idToBytes(tokenID)...)
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
	var l exchange.Listing
	err = MsgpackUnmarshal(val, &l)
	return &l, err
}

func approvalKey(tokenID uint64, operator ledger.Address) []byte {
	key := append([]byte(prefixApproval), idToBytes(tokenID)...)
	return append(key, []byte(operator.String())...)
}
