package registry_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/atelier-labs/atelier/ledger"
	"github.com/atelier-labs/atelier/registry"
	"github.com/atelier-labs/atelier/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*registry.Registry, ledger.Address) {
	db, err := store.OpenBadger(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	admin := ledger.NewAddress()
	r := registry.NewRegistry(db)
	require.NoError(t, r.InitAdmin(admin))
	return r, admin
}

func TestMintSequence(t *testing.T) {
	r, admin := newTestRegistry(t)
	creator := ledger.NewAddress()
	owner := ledger.NewAddress()
	require.NoError(t, r.RegisterCreator(admin, creator))

	for i := uint64(1); i <= 5; i++ {
		id, err := r.Mint(creator, owner, fmt.Sprintf("ipfs://look-%d", i))
		require.NoError(t, err)
		assert.Equal(t, i, id)
	}

	total, err := r.GetTotalMinted()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), total)

	count, err := r.GetCreatorMintCount(creator)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)

	got, ok, err := r.GetOwner(3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, owner, got)

	meta, ok, err := r.GetMetadata(3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ipfs://look-3", meta.URI)
	assert.Equal(t, creator, meta.Creator)
}

func TestMintValidation(t *testing.T) {
	r, admin := newTestRegistry(t)
	creator := ledger.NewAddress()
	owner := ledger.NewAddress()
	require.NoError(t, r.RegisterCreator(admin, creator))

	_, err := r.Mint(ledger.NewAddress(), owner, "ipfs://x")
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	_, err = r.Mint(creator, ledger.ZeroAddress, "ipfs://x")
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = r.Mint(creator, owner, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	total, err := r.GetTotalMinted()
	require.NoError(t, err)
	assert.Zero(t, total)
	count, err := r.GetCreatorMintCount(creator)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMintCreatorCap(t *testing.T) {
	r, admin := newTestRegistry(t)
	creator := ledger.NewAddress()
	owner := ledger.NewAddress()
	require.NoError(t, r.RegisterCreator(admin, creator))

	for i := 0; i < registry.MaxMintsPerCreator; i++ {
		_, err := r.Mint(creator, owner, "ipfs://look")
		require.NoError(t, err)
	}

	_, err := r.Mint(creator, owner, "ipfs://look")
	assert.ErrorIs(t, err, ledger.ErrLimitExceeded)

	total, err := r.GetTotalMinted()
	require.NoError(t, err)
	assert.Equal(t, uint64(registry.MaxMintsPerCreator), total)
	count, err := r.GetCreatorMintCount(creator)
	require.NoError(t, err)
	assert.Equal(t, uint64(registry.MaxMintsPerCreator), count)

	// Another creator is unaffected by a full sibling.
	other := ledger.NewAddress()
	require.NoError(t, r.RegisterCreator(admin, other))
	id, err := r.Mint(other, owner, "ipfs://look")
	require.NoError(t, err)
	assert.Equal(t, uint64(registry.MaxMintsPerCreator+1), id)
}

func TestRegisterCreator(t *testing.T) {
	r, admin := newTestRegistry(t)
	creator := ledger.NewAddress()

	err := r.RegisterCreator(ledger.NewAddress(), creator)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	err = r.RegisterCreator(admin, ledger.ZeroAddress)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	require.NoError(t, r.RegisterCreator(admin, creator))
	registered, err := r.IsCreatorRegistered(creator)
	require.NoError(t, err)
	assert.True(t, registered)

	err = r.RegisterCreator(admin, creator)
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)
}

func TestTransfer(t *testing.T) {
	r, admin := newTestRegistry(t)
	creator := ledger.NewAddress()
	alice := ledger.NewAddress()
	bob := ledger.NewAddress()
	require.NoError(t, r.RegisterCreator(admin, creator))

	first, err := r.Mint(creator, alice, "ipfs://gown")
	require.NoError(t, err)
	second, err := r.Mint(creator, alice, "ipfs://coat")
	require.NoError(t, err)

	err = r.Transfer(bob, first, bob)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	err = r.Transfer(alice, 999, bob)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	err = r.Transfer(alice, first, ledger.ZeroAddress)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	require.NoError(t, r.Transfer(alice, first, bob))
	owner, ok, err := r.GetOwner(first)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, bob, owner)

	owner, ok, err = r.GetOwner(second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, alice, owner)
}

func TestUpdateMetadata(t *testing.T) {
	r, admin := newTestRegistry(t)
	creator := ledger.NewAddress()
	alice := ledger.NewAddress()
	bob := ledger.NewAddress()
	require.NoError(t, r.RegisterCreator(admin, creator))

	id, err := r.Mint(creator, alice, "ipfs://v1")
	require.NoError(t, err)

	err = r.UpdateMetadata(alice, id, "ipfs://v2")
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	err = r.UpdateMetadata(creator, 999, "ipfs://v2")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	err = r.UpdateMetadata(creator, id, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	require.NoError(t, r.UpdateMetadata(creator, id, "ipfs://v2"))

	// The creator keeps metadata rights after the token changes hands.
	require.NoError(t, r.Transfer(alice, id, bob))
	require.NoError(t, r.UpdateMetadata(creator, id, "ipfs://v3"))
	err = r.UpdateMetadata(bob, id, "ipfs://v4")
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	meta, ok, err := r.GetMetadata(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ipfs://v3", meta.URI)
}

func TestAdminControl(t *testing.T) {
	r, admin := newTestRegistry(t)
	creator := ledger.NewAddress()
	alice := ledger.NewAddress()
	bob := ledger.NewAddress()
	require.NoError(t, r.RegisterCreator(admin, creator))
	id, err := r.Mint(creator, alice, "ipfs://x")
	require.NoError(t, err)

	err = r.SetPaused(alice, true)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	require.NoError(t, r.SetPaused(admin, true))
	paused, err := r.IsPaused()
	require.NoError(t, err)
	assert.True(t, paused)

	_, err = r.Mint(creator, alice, "ipfs://x")
	assert.ErrorIs(t, err, ledger.ErrPaused)
	err = r.Transfer(alice, id, bob)
	assert.ErrorIs(t, err, ledger.ErrPaused)
	err = r.UpdateMetadata(creator, id, "ipfs://y")
	assert.ErrorIs(t, err, ledger.ErrPaused)

	// Admin control and reads stay available while paused.
	require.NoError(t, r.RegisterCreator(admin, ledger.NewAddress()))
	_, err = r.GetTotalMinted()
	require.NoError(t, err)

	require.NoError(t, r.SetPaused(admin, false))
	_, err = r.Mint(creator, alice, "ipfs://x")
	require.NoError(t, err)

	err = r.TransferAdmin(admin, ledger.ZeroAddress)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	next := ledger.NewAddress()
	require.NoError(t, r.TransferAdmin(admin, next))
	got, err := r.GetAdmin()
	require.NoError(t, err)
	assert.Equal(t, next, got)

	err = r.SetPaused(admin, true)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestRegistryEvents(t *testing.T) {
	r, admin := newTestRegistry(t)
	creator := ledger.NewAddress()
	alice := ledger.NewAddress()
	require.NoError(t, r.RegisterCreator(admin, creator))
	id, err := r.Mint(creator, alice, "ipfs://x")
	require.NoError(t, err)

	evs, err := r.Events(0, 10)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	assert.Equal(t, ledger.EventAdminTransferred, evs[0].Type)
	assert.Equal(t, ledger.EventCreatorRegistered, evs[1].Type)
	assert.Equal(t, ledger.EventMinted, evs[2].Type)
	assert.Equal(t, id, evs[2].TokenID)
	assert.Equal(t, creator, evs[2].Caller)
	for i, ev := range evs {
		assert.Equal(t, uint64(i+1), ev.ID)
	}

	// A failed operation appends nothing.
	_, err = r.Mint(alice, alice, "ipfs://x")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	evs, err = r.Events(0, 10)
	require.NoError(t, err)
	assert.Len(t, evs, 3)
}
