package ledger

import "time"

const (
	EventCreatorRegistered = "creator-registered"
	EventAdminTransferred  = "admin-transferred"
	EventPausedSet         = "paused-set"
	EventMinted            = "nft-minted"
	EventTransferred       = "nft-transferred"
	EventMetadataUpdated   = "metadata-updated"
	EventListed            = "nft-listed"
	EventDelisted          = "nft-delisted"
	EventSold              = "nft-sold"
	EventOperatorApproved  = "operator-approved"
	EventOperatorRevoked   = "operator-revoked"
	EventFeeAddressSet     = "fee-address-set"
	EventFeePercentSet     = "fee-percent-set"
	EventRoyaltyCapSet     = "royalty-cap-set"
)

// MaxEventMemoSize bounds the payload string of an event record.
const MaxEventMemoSize = 256

// Event is one entry of a ledger's append-only log. The store assigns
// ID and CreatedAt when the entry is committed. TokenID is 0 for
// events not tied to a token. The log is observational only, it is
// never consulted for authorization.
type Event struct {
	ID        uint64
	Type      string
	TokenID   uint64
	Caller    Address
	Memo      string
	CreatedAt time.Time
}
