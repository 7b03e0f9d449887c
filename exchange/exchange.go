package exchange

import (
	"fmt"
	"sync"

	"github.com/atelier-labs/atelier/ledger"
)

// Exchange is the marketplace ledger. It reads token state through an
// injected TokenLedger and settles sales through its store, which
// commits all legs of a buy in one transaction.
type Exchange struct {
	mtx    sync.Mutex
	store  Store
	tokens TokenLedger
}

func NewExchange(store Store, tokens TokenLedger) *Exchange {
	return &Exchange{store: store, tokens: tokens}
}

// InitAdmin sets the ledger admin and default parameters if none are
// recorded yet. The platform fee initially accrues to the admin until
// SetPlatformFeeAddress points it elsewhere.
func (e *Exchange) InitAdmin(admin ledger.Address) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if admin.IsZero() {
		return fmt.Errorf("zero admin: %w", ledger.ErrInvalidInput)
	}
	ctrl, err := e.store.ReadExchangeControl()
	if err != nil {
		return err
	}
	if ctrl != nil {
		return nil
	}
	ctrl = &ledger.Control{Admin: admin}
	ev := &ledger.Event{Type: ledger.EventAdminTransferred, Caller: admin, Memo: admin.String()}
	if err := e.store.WriteExchangeControl(ctrl, ev); err != nil {
		return err
	}
	params, err := e.store.ReadExchangeParams()
	if err != nil {
		return err
	}
	if params != nil {
		return nil
	}
	params = &Params{
		FeeAddress:        admin,
		FeePercent:        DefaultPlatformFeePercent,
		MaxRoyaltyPercent: DefaultMaxRoyaltyPercent,
	}
	pev := &ledger.Event{Type: ledger.EventFeeAddressSet, Caller: admin, Memo: admin.String()}
	return e.store.WriteExchangeParams(params, pev)
}

func (e *Exchange) TransferAdmin(caller, newAdmin ledger.Address) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	ctrl, err := e.store.ReadExchangeControl()
	if err != nil {
		return err
	}
	if err := ctrl.RequireAdmin(caller); err != nil {
		return err
	}
	if newAdmin.IsZero() {
		return fmt.Errorf("zero admin: %w", ledger.ErrInvalidInput)
	}
	ctrl.Admin = newAdmin
	ev := &ledger.Event{Type: ledger.EventAdminTransferred, Caller: caller, Memo: newAdmin.String()}
	return e.store.WriteExchangeControl(ctrl, ev)
}

func (e *Exchange) SetPaused(caller ledger.Address, flag bool) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	ctrl, err := e.store.ReadExchangeControl()
	if err != nil {
		return err
	}
	if err := ctrl.RequireAdmin(caller); err != nil {
		return err
	}
	ctrl.Paused = flag
	ev := &ledger.Event{Type: ledger.EventPausedSet, Caller: caller, Memo: fmt.Sprint(flag)}
	return e.store.WriteExchangeControl(ctrl, ev)
}

func (e *Exchange) SetPlatformFeeAddress(caller, addr ledger.Address) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	params, err := e.requireAdminParams(caller)
	if err != nil {
		return err
	}
	if addr.IsZero() {
		return fmt.Errorf("zero fee address: %w", ledger.ErrInvalidInput)
	}
	params.FeeAddress = addr
	ev := &ledger.Event{Type: ledger.EventFeeAddressSet, Caller: caller, Memo: addr.String()}
	return e.store.WriteExchangeParams(params, ev)
}

func (e *Exchange) SetPlatformFeePercent(caller ledger.Address, percent uint64) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	params, err := e.requireAdminParams(caller)
	if err != nil {
		return err
	}
	if percent > MaxPlatformFeePercent {
		return fmt.Errorf("fee percent %d above ceiling %d: %w", percent, MaxPlatformFeePercent, ledger.ErrInvalidInput)
	}
	params.FeePercent = percent
	ev := &ledger.Event{Type: ledger.EventFeePercentSet, Caller: caller, Memo: fmt.Sprint(percent)}
	return e.store.WriteExchangeParams(params, ev)
}

func (e *Exchange) SetMaxRoyaltyPercent(caller ledger.Address, percent uint64) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	params, err := e.requireAdminParams(caller)
	if err != nil {
		return err
	}
	if percent > FeeDenominator {
		return fmt.Errorf("royalty cap %d above denominator: %w", percent, ledger.ErrInvalidInput)
	}
	params.MaxRoyaltyPercent = percent
	ev := &ledger.Event{Type: ledger.EventRoyaltyCapSet, Caller: caller, Memo: fmt.Sprint(percent)}
	return e.store.WriteExchangeParams(params, ev)
}

// ApproveOperator lets operator list the token on the owner's behalf.
// The grant sticks to the token, not the owner: a later ownership
// change does not clear it until the new owner revokes.
func (e *Exchange) ApproveOperator(caller ledger.Address, tokenID uint64, operator ledger.Address) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.requireActive(); err != nil {
		return err
	}
	if err := e.requireOwner(caller, tokenID); err != nil {
		return err
	}
	if operator.IsZero() {
		return fmt.Errorf("zero operator: %w", ledger.ErrInvalidInput)
	}
	ev := &ledger.Event{Type: ledger.EventOperatorApproved, TokenID: tokenID, Caller: caller, Memo: operator.String()}
	return e.store.WriteApproval(tokenID, operator, ev)
}

func (e *Exchange) RevokeOperator(caller ledger.Address, tokenID uint64, operator ledger.Address) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.requireActive(); err != nil {
		return err
	}
	if err := e.requireOwner(caller, tokenID); err != nil {
		return err
	}
	ev := &ledger.Event{Type: ledger.EventOperatorRevoked, TokenID: tokenID, Caller: caller, Memo: operator.String()}
	return e.store.DeleteApproval(tokenID, operator, ev)
}

// List creates or overwrites the listing for a token. The caller must
// be the current owner or hold an approval for the token.
func (e *Exchange) List(caller ledger.Address, tokenID, price, royaltyPercent uint64) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.requireActive(); err != nil {
		return err
	}
	if price == 0 {
		return fmt.Errorf("zero price: %w", ledger.ErrInvalidInput)
	}
	params, err := e.store.ReadExchangeParams()
	if err != nil {
		return err
	}
	if params == nil {
		params = &Params{FeePercent: DefaultPlatformFeePercent, MaxRoyaltyPercent: DefaultMaxRoyaltyPercent}
	}
	if royaltyPercent > params.MaxRoyaltyPercent {
		return fmt.Errorf("royalty %d above cap %d: %w", royaltyPercent, params.MaxRoyaltyPercent, ledger.ErrInvalidInput)
	}
	owner, ok, err := e.tokens.GetOwner(tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("token %d: %w", tokenID, ledger.ErrNotFound)
	}
	if owner != caller {
		approved, err := e.store.IsOperatorApproved(tokenID, caller)
		if err != nil {
			return err
		}
		if !approved {
			return fmt.Errorf("caller %s is neither owner nor operator of token %d: %w", caller, tokenID, ledger.ErrUnauthorized)
		}
	}
	l := &Listing{TokenID: tokenID, Price: price, Seller: caller, RoyaltyPercent: royaltyPercent}
	ev := &ledger.Event{Type: ledger.EventListed, TokenID: tokenID, Caller: caller, Memo: fmt.Sprintf("price %d royalty %d", price, royaltyPercent)}
	return e.store.WriteListing(l, ev)
}

func (e *Exchange) Delist(caller ledger.Address, tokenID uint64) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.requireActive(); err != nil {
		return err
	}
	l, err := e.store.ReadListing(tokenID)
	if err != nil {
		return err
	}
	if l == nil {
		return fmt.Errorf("token %d not listed: %w", tokenID, ledger.ErrNotFound)
	}
	if l.Seller != caller {
		return fmt.Errorf("caller %s is not seller of token %d: %w", caller, tokenID, ledger.ErrUnauthorized)
	}
	ev := &ledger.Event{Type: ledger.EventDelisted, TokenID: tokenID, Caller: caller}
	return e.store.DeleteListing(tokenID, ev)
}

// Buy settles an active listing. Fee and royalty truncate toward zero
// and the seller receives the remainder, so the three legs always sum
// to the listed price. Every leg, the ownership change and the listing
// removal commit atomically; a buyer without the funds aborts the
// whole call.
func (e *Exchange) Buy(caller ledger.Address, tokenID uint64) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.requireActive(); err != nil {
		return err
	}
	l, err := e.store.ReadListing(tokenID)
	if err != nil {
		return err
	}
	if l == nil {
		return fmt.Errorf("token %d not listed: %w", tokenID, ledger.ErrNotFound)
	}
	params, err := e.store.ReadExchangeParams()
	if err != nil {
		return err
	}
	if params == nil {
		params = &Params{FeePercent: DefaultPlatformFeePercent, MaxRoyaltyPercent: DefaultMaxRoyaltyPercent}
	}
	meta, ok, err := e.tokens.GetMetadata(tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("token %d: %w", tokenID, ledger.ErrNotFound)
	}

	fee := basisPoints(l.Price, params.FeePercent)
	royalty := basisPoints(l.Price, l.RoyaltyPercent)
	if fee+royalty > l.Price {
		return fmt.Errorf("fee %d and royalty %d exceed price %d: %w", fee, royalty, l.Price, ledger.ErrInvalidInput)
	}
	s := &Sale{
		TokenID:      tokenID,
		Buyer:        caller,
		Seller:       l.Seller,
		Creator:      meta.Creator,
		FeeAddress:   params.FeeAddress,
		Price:        l.Price,
		Fee:          fee,
		Royalty:      royalty,
		SellerAmount: l.Price - fee - royalty,
	}
	ev := &ledger.Event{Type: ledger.EventSold, TokenID: tokenID, Caller: caller, Memo: fmt.Sprintf("price %d fee %d royalty %d", s.Price, s.Fee, s.Royalty)}
	return e.store.SettleSale(s, ev)
}

// basisPoints takes percent/10000 of price without overflowing the
// intermediate product, for any percent up to FeeDenominator.
func basisPoints(price, percent uint64) uint64 {
	return price/FeeDenominator*percent + price%FeeDenominator*percent/FeeDenominator
}

func (e *Exchange) GetListing(tokenID uint64) (*Listing, bool, error) {
	l, err := e.store.ReadListing(tokenID)
	if err != nil || l == nil {
		return nil, false, err
	}
	return l, true, nil
}

func (e *Exchange) GetPlatformFeeAddress() (ledger.Address, error) {
	params, err := e.store.ReadExchangeParams()
	if err != nil || params == nil {
		return ledger.ZeroAddress, err
	}
	return params.FeeAddress, nil
}

func (e *Exchange) GetPlatformFeePercent() (uint64, error) {
	params, err := e.store.ReadExchangeParams()
	if err != nil {
		return 0, err
	}
	if params == nil {
		return DefaultPlatformFeePercent, nil
	}
	return params.FeePercent, nil
}

func (e *Exchange) GetMaxRoyaltyPercent() (uint64, error) {
	params, err := e.store.ReadExchangeParams()
	if err != nil {
		return 0, err
	}
	if params == nil {
		return DefaultMaxRoyaltyPercent, nil
	}
	return params.MaxRoyaltyPercent, nil
}

func (e *Exchange) GetAdmin() (ledger.Address, error) {
	ctrl, err := e.store.ReadExchangeControl()
	if err != nil || ctrl == nil {
		return ledger.ZeroAddress, err
	}
	return ctrl.Admin, nil
}

func (e *Exchange) IsPaused() (bool, error) {
	ctrl, err := e.store.ReadExchangeControl()
	if err != nil || ctrl == nil {
		return false, err
	}
	return ctrl.Paused, nil
}

func (e *Exchange) IsApproved(tokenID uint64, operator ledger.Address) (bool, error) {
	return e.store.IsOperatorApproved(tokenID, operator)
}

func (e *Exchange) Events(offset uint64, limit int) ([]*ledger.Event, error) {
	return e.store.ListExchangeEvents(offset, limit)
}

func (e *Exchange) requireActive() error {
	ctrl, err := e.store.ReadExchangeControl()
	if err != nil {
		return err
	}
	return ctrl.RequireActive()
}

func (e *Exchange) requireOwner(caller ledger.Address, tokenID uint64) error {
	owner, ok, err := e.tokens.GetOwner(tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("token %d: %w", tokenID, ledger.ErrNotFound)
	}
	if owner != caller {
		return fmt.Errorf("caller %s does not own token %d: %w", caller, tokenID, ledger.ErrUnauthorized)
	}
	return nil
}

func (e *Exchange) requireAdminParams(caller ledger.Address) (*Params, error) {
	ctrl, err := e.store.ReadExchangeControl()
	if err != nil {
		return nil, err
	}
	if err := ctrl.RequireAdmin(caller); err != nil {
		return nil, err
	}
	params, err := e.store.ReadExchangeParams()
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &Params{FeePercent: DefaultPlatformFeePercent, MaxRoyaltyPercent: DefaultMaxRoyaltyPercent}
	}
	return params, nil
}
