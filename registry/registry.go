package registry

import (
	"fmt"
	"sync"

	"github.com/atelier-labs/atelier/ledger"
)

// Registry is the token ledger. All mutating operations serialize on a
// single writer lock and commit their write set in one store
// transaction, so each call either applies fully or not at all.
type Registry struct {
	mtx   sync.Mutex
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// InitAdmin sets the ledger admin if none is recorded yet.
func (r *Registry) InitAdmin(admin ledger.Address) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if admin.IsZero() {
		return fmt.Errorf("zero admin: %w", ledger.ErrInvalidInput)
	}
	ctrl, err := r.store.ReadRegistryControl()
	if err != nil {
		return err
	}
	if ctrl != nil {
		return nil
	}
	ctrl = &ledger.Control{Admin: admin}
	ev := &ledger.Event{Type: ledger.EventAdminTransferred, Caller: admin, Memo: admin.String()}
	return r.store.WriteRegistryControl(ctrl, ev)
}

func (r *Registry) RegisterCreator(caller, creator ledger.Address) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	ctrl, err := r.store.ReadRegistryControl()
	if err != nil {
		return err
	}
	if err := ctrl.RequireAdmin(caller); err != nil {
		return err
	}
	if creator.IsZero() {
		return fmt.Errorf("zero creator: %w", ledger.ErrInvalidInput)
	}
	ev := &ledger.Event{Type: ledger.EventCreatorRegistered, Caller: caller, Memo: creator.String()}
	return r.store.WriteCreator(creator, ev)
}

func (r *Registry) TransferAdmin(caller, newAdmin ledger.Address) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	ctrl, err := r.store.ReadRegistryControl()
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
	return r.store.WriteRegistryControl(ctrl, ev)
}

func (r *Registry) SetPaused(caller ledger.Address, flag bool) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	ctrl, err := r.store.ReadRegistryControl()
	if err != nil {
		return err
	}
	if err := ctrl.RequireAdmin(caller); err != nil {
		return err
	}
	ctrl.Paused = flag
	ev := &ledger.Event{Type: ledger.EventPausedSet, Caller: caller, Memo: fmt.Sprint(flag)}
	return r.store.WriteRegistryControl(ctrl, ev)
}

// Mint assigns the next sequential token ID to a new token owned by
// recipient and returns it. The caller must be a registered creator.
func (r *Registry) Mint(caller, recipient ledger.Address, uri string) (uint64, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	ctrl, err := r.store.ReadRegistryControl()
	if err != nil {
		return 0, err
	}
	if err := ctrl.RequireActive(); err != nil {
		return 0, err
	}
	registered, err := r.store.IsCreatorRegistered(caller)
	if err != nil {
		return 0, err
	}
	if !registered {
		return 0, fmt.Errorf("creator %s not registered: %w", caller, ledger.ErrUnauthorized)
	}
	if recipient.IsZero() {
		return 0, fmt.Errorf("zero recipient: %w", ledger.ErrInvalidInput)
	}
	if uri == "" || len(uri) > MaxURISize {
		return 0, fmt.Errorf("invalid uri: %w", ledger.ErrInvalidInput)
	}
	count, err := r.store.ReadCreatorMintCount(caller)
	if err != nil {
		return 0, err
	}
	if count >= MaxMintsPerCreator {
		return 0, fmt.Errorf("creator %s minted %d: %w", caller, count, ledger.ErrLimitExceeded)
	}
	total, err := r.store.ReadTotalMinted()
	if err != nil {
		return 0, err
	}
	t := &Token{ID: total + 1, Owner: recipient, URI: uri, Creator: caller}
	ev := &ledger.Event{Type: ledger.EventMinted, TokenID: t.ID, Caller: caller, Memo: uri}
	if err := r.store.WriteMint(t, ev); err != nil {
		return 0, err
	}
	return t.ID, nil
}

// Transfer reassigns ownership. A missing token fails the owner check
// the same way a foreign token does.
func (r *Registry) Transfer(caller ledger.Address, tokenID uint64, recipient ledger.Address) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	ctrl, err := r.store.ReadRegistryControl()
	if err != nil {
		return err
	}
	if err := ctrl.RequireActive(); err != nil {
		return err
	}
	t, err := r.store.ReadToken(tokenID)
	if err != nil {
		return err
	}
	if t == nil || t.Owner != caller {
		return fmt.Errorf("caller %s does not own token %d: %w", caller, tokenID, ledger.ErrUnauthorized)
	}
	if recipient.IsZero() {
		return fmt.Errorf("zero recipient: %w", ledger.ErrInvalidInput)
	}
	t.Owner = recipient
	ev := &ledger.Event{Type: ledger.EventTransferred, TokenID: tokenID, Caller: caller, Memo: recipient.String()}
	return r.store.WriteToken(t, ev)
}

// UpdateMetadata replaces a token's URI. Only the original creator may
// edit metadata, current ownership is irrelevant.
func (r *Registry) UpdateMetadata(caller ledger.Address, tokenID uint64, newURI string) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	ctrl, err := r.store.ReadRegistryControl()
	if err != nil {
		return err
	}
	if err := ctrl.RequireActive(); err != nil {
		return err
	}
	t, err := r.store.ReadToken(tokenID)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("token %d: %w", tokenID, ledger.ErrNotFound)
	}
	if t.Creator != caller {
		return fmt.Errorf("caller %s is not creator of token %d: %w", caller, tokenID, ledger.ErrUnauthorized)
	}
	if newURI == "" || len(newURI) > MaxURISize {
		return fmt.Errorf("invalid uri: %w", ledger.ErrInvalidInput)
	}
	t.URI = newURI
	ev := &ledger.Event{Type: ledger.EventMetadataUpdated, TokenID: tokenID, Caller: caller, Memo: newURI}
	return r.store.WriteToken(t, ev)
}

func (r *Registry) GetMetadata(tokenID uint64) (*Metadata, bool, error) {
	t, err := r.store.ReadToken(tokenID)
	if err != nil || t == nil {
		return nil, false, err
	}
	return &Metadata{URI: t.URI, Creator: t.Creator}, true, nil
}

func (r *Registry) GetOwner(tokenID uint64) (ledger.Address, bool, error) {
	t, err := r.store.ReadToken(tokenID)
	if err != nil || t == nil {
		return ledger.ZeroAddress, false, err
	}
	return t.Owner, true, nil
}

func (r *Registry) GetTotalMinted() (uint64, error) {
	return r.store.ReadTotalMinted()
}

func (r *Registry) GetAdmin() (ledger.Address, error) {
	ctrl, err := r.store.ReadRegistryControl()
	if err != nil || ctrl == nil {
		return ledger.ZeroAddress, err
	}
	return ctrl.Admin, nil
}

func (r *Registry) IsPaused() (bool, error) {
	ctrl, err := r.store.ReadRegistryControl()
	if err != nil || ctrl == nil {
		return false, err
	}
	return ctrl.Paused, nil
}

func (r *Registry) GetCreatorMintCount(creator ledger.Address) (uint64, error) {
	return r.store.ReadCreatorMintCount(creator)
}

func (r *Registry) IsCreatorRegistered(creator ledger.Address) (bool, error) {
	return r.store.IsCreatorRegistered(creator)
}

func (r *Registry) Events(offset uint64, limit int) ([]*ledger.Event, error) {
	return r.store.ListRegistryEvents(offset, limit)
}
