package exchange

import (
	"github.com/atelier-labs/atelier/ledger"
	"github.com/atelier-labs/atelier/registry"
)

// Basis point math: percentages are integer units of 1/10000.
const (
	FeeDenominator            = 10000
	MaxPlatformFeePercent     = 500
	DefaultPlatformFeePercent = 200
	DefaultMaxRoyaltyPercent  = 1000
)

// Listing is an active sale offer. A token has at most one listing,
// relisting overwrites it.
type Listing struct {
	TokenID        uint64
	Price          uint64
	Seller         ledger.Address
	RoyaltyPercent uint64
}

// Params are the admin-tunable marketplace parameters.
type Params struct {
	FeeAddress        ledger.Address
	FeePercent        uint64
	MaxRoyaltyPercent uint64
}

// Sale is the precomputed settlement of a buy: three value legs and
// one ownership leg, committed as a single unit by the store. All
// amounts derive from the same listing and metadata snapshot.
type Sale struct {
	TokenID      uint64
	Buyer        ledger.Address
	Seller       ledger.Address
	Creator      ledger.Address
	FeeAddress   ledger.Address
	Price        uint64
	Fee          uint64
	Royalty      uint64
	SellerAmount uint64
}

// TokenLedger is the exchange's read view of the token registry,
// always consulted live, never cached. The ownership write of a sale
// goes through Store.SettleSale so it shares the sale's transaction.
type TokenLedger interface {
	GetOwner(tokenID uint64) (ledger.Address, bool, error)
	GetMetadata(tokenID uint64) (*registry.Metadata, bool, error)
}

type Store interface {
	ReadExchangeControl() (*ledger.Control, error)
	WriteExchangeControl(c *ledger.Control, ev *ledger.Event) error

	ReadExchangeParams() (*Params, error)
	WriteExchangeParams(p *Params, ev *ledger.Event) error

	ReadListing(tokenID uint64) (*Listing, error)
	WriteListing(l *Listing, ev *ledger.Event) error
	DeleteListing(tokenID uint64, ev *ledger.Event) error

	IsOperatorApproved(tokenID uint64, operator ledger.Address) (bool, error)
	WriteApproval(tokenID uint64, operator ledger.Address, ev *ledger.Event) error
	DeleteApproval(tokenID uint64, operator ledger.Address, ev *ledger.Event) error

	SettleSale(s *Sale, ev *ledger.Event) error

	ListExchangeEvents(offset uint64, limit int) ([]*ledger.Event, error)
}
