package store_test

import (
	"context"
	"testing"

	"github.com/atelier-labs/atelier/ledger"
	"github.com/atelier-labs/atelier/registry"
	"github.com/atelier-labs/atelier/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty(t *testing.T) {
	db, err := store.OpenBadger(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	val, err := db.ReadProperty([]byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, db.WriteProperty([]byte("k"), []byte("v")))
	val, err = db.ReadProperty([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}

func TestCreatorCapacity(t *testing.T) {
	db, err := store.OpenBadger(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < registry.MaxCreators; i++ {
		require.NoError(t, db.WriteCreator(ledger.NewAddress(), nil))
	}
	count, err := db.CountCreators()
	require.NoError(t, err)
	assert.Equal(t, uint64(registry.MaxCreators), count)

	err = db.WriteCreator(ledger.NewAddress(), nil)
	assert.ErrorIs(t, err, ledger.ErrLimitExceeded)

	count, err = db.CountCreators()
	require.NoError(t, err)
	assert.Equal(t, uint64(registry.MaxCreators), count)
}

func TestWriteCreatorDuplicate(t *testing.T) {
	db, err := store.OpenBadger(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	creator := ledger.NewAddress()
	require.NoError(t, db.WriteCreator(creator, nil))
	err = db.WriteCreator(creator, nil)
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)
}

func TestEventSequence(t *testing.T) {
	db, err := store.OpenBadger(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	caller := ledger.NewAddress()
	for i := 0; i < 5; i++ {
		ev := &ledger.Event{Type: ledger.EventCreatorRegistered, Caller: caller}
		require.NoError(t, db.WriteCreator(ledger.NewAddress(), ev))
	}

	evs, err := db.ListRegistryEvents(0, 100)
	require.NoError(t, err)
	require.Len(t, evs, 5)
	for i, ev := range evs {
		assert.Equal(t, uint64(i+1), ev.ID)
		if i > 0 {
			assert.True(t, ev.CreatedAt.After(evs[i-1].CreatedAt))
		}
	}

	evs, err = db.ListRegistryEvents(4, 100)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, uint64(4), evs[0].ID)

	evs, err = db.ListRegistryEvents(0, 2)
	require.NoError(t, err)
	assert.Len(t, evs, 2)
}

func TestEventMemoBound(t *testing.T) {
	db, err := store.OpenBadger(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	memo := make([]byte, 2*ledger.MaxEventMemoSize)
	for i := range memo {
		memo[i] = 'x'
	}
	ev := &ledger.Event{Type: ledger.EventCreatorRegistered, Memo: string(memo)}
	require.NoError(t, db.WriteCreator(ledger.NewAddress(), ev))

	evs, err := db.ListRegistryEvents(0, 1)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Len(t, evs[0].Memo, ledger.MaxEventMemoSize)
}

func TestTokenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db, err := store.OpenBadger(context.Background(), dir)
	require.NoError(t, err)

	creator := ledger.NewAddress()
	owner := ledger.NewAddress()
	tk := &registry.Token{ID: 1, Owner: owner, URI: "ipfs://x", Creator: creator}
	require.NoError(t, db.WriteMint(tk, nil))

	got, err := db.ReadToken(1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tk, got)

	missing, err := db.ReadToken(2)
	require.NoError(t, err)
	assert.Nil(t, missing)

	// State survives a reopen.
	require.NoError(t, db.Close())
	db, err = store.OpenBadger(context.Background(), dir)
	require.NoError(t, err)
	defer db.Close()

	got, err = db.ReadToken(1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, owner, got.Owner)
	total, err := db.ReadTotalMinted()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	minted, err := db.ReadCreatorMintCount(creator)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), minted)
}
