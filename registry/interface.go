package registry

import (
	"github.com/atelier-labs/atelier/ledger"
)

const (
	MaxCreators        = 1000
	MaxMintsPerCreator = 1000
	MaxURISize         = 256
)

// Token is a minted fashion item. Creator never changes after mint.
type Token struct {
	ID      uint64
	Owner   ledger.Address
	URI     string
	Creator ledger.Address
}

// Metadata is the token view exposed to other ledgers.
type Metadata struct {
	URI     string
	Creator ledger.Address
}

type Store interface {
	ReadRegistryControl() (*ledger.Control, error)
	WriteRegistryControl(c *ledger.Control, ev *ledger.Event) error

	IsCreatorRegistered(creator ledger.Address) (bool, error)
	WriteCreator(creator ledger.Address, ev *ledger.Event) error
	ReadCreatorMintCount(creator ledger.Address) (uint64, error)

	ReadToken(id uint64) (*Token, error)
	ReadTotalMinted() (uint64, error)
	WriteMint(t *Token, ev *ledger.Event) error
	WriteToken(t *Token, ev *ledger.Event) error

	ListRegistryEvents(offset uint64, limit int) ([]*ledger.Event, error)
}
