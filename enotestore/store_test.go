package enotestore

import (
	"testing"

	"github.com/btcsuite/spwallet/inputselect"
	"github.com/btcsuite/spwallet/pkg/spunit"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// keyImage returns a key image unique to n.
func keyImage(n int) inputselect.KeyImage {
	var ki inputselect.KeyImage
	ki[0] = byte(n)
	ki[1] = byte(n >> 8)
	ki[31] = 1

	return ki
}

// newRecord returns an unspent on-chain record with its own onetime
// address.
func newRecord(n int, kind inputselect.Kind,
	amount spunit.Amount) ContextualRecord {

	var addr OnetimeAddress
	addr[0] = byte(n)
	addr[1] = byte(n >> 8)

	return ContextualRecord{
		Record: inputselect.Record{
			Kind:     kind,
			Amount:   amount,
			KeyImage: keyImage(n),
		},
		OnetimeAddress: addr,
		Origin:         OriginOnchain,
		BlockHeight:    int32(n),
	}
}

// TestStoreAddRecord checks that records are kept in insertion order per
// kind and that duplicates are rejected.
func TestStoreAddRecord(t *testing.T) {
	t.Parallel()

	store := NewStore()
	require.NoError(t, store.AddRecord(
		newRecord(1, inputselect.KindLegacy, 5),
	))
	require.NoError(t, store.AddRecord(
		newRecord(2, inputselect.KindSeraphis, 7),
	))
	require.NoError(t, store.AddRecord(
		newRecord(3, inputselect.KindLegacy, 1),
	))

	err := store.AddRecord(newRecord(1, inputselect.KindSeraphis, 9))
	require.ErrorIs(t, err, ErrDuplicateRecord)

	legacy := store.Records(inputselect.KindLegacy)
	require.Len(t, legacy, 2)
	require.Equal(t, keyImage(1), legacy[0].KeyImage)
	require.Equal(t, keyImage(3), legacy[1].KeyImage)

	seraphis := store.Records(inputselect.KindSeraphis)
	require.Len(t, seraphis, 1)
	require.Equal(t, spunit.Amount(7), seraphis[0].Amount)

	rec, err := store.Record(keyImage(2))
	require.NoError(t, err)
	require.Equal(t, inputselect.KindSeraphis, rec.Kind)

	_, err = store.Record(keyImage(4))
	require.ErrorIs(t, err, ErrRecordNotFound)
}

// TestStoreSpentStatus checks that spent records leave the balance and that
// returned records are copies.
func TestStoreSpentStatus(t *testing.T) {
	t.Parallel()

	store := NewStore()
	require.NoError(t, store.AddRecord(
		newRecord(1, inputselect.KindLegacy, 5),
	))
	require.NoError(t, store.AddRecord(
		newRecord(2, inputselect.KindLegacy, 3),
	))

	balance := store.Balance(inputselect.KindLegacy, AllOrigins())
	require.Zero(t, balance.Cmp(spunit.NewWideAmount(8)))

	require.NoError(t, store.SetSpentStatus(keyImage(1), true))
	balance = store.Balance(inputselect.KindLegacy, AllOrigins())
	require.Zero(t, balance.Cmp(spunit.NewWideAmount(3)))

	err := store.SetSpentStatus(keyImage(9), true)
	require.ErrorIs(t, err, ErrRecordNotFound)

	records := store.Records(inputselect.KindLegacy)
	records[1].Spent = true
	balance = store.Balance(inputselect.KindLegacy, AllOrigins())
	require.Zero(t, balance.Cmp(spunit.NewWideAmount(3)))

	// Only on-chain records count when the origins are restricted.
	offchain := newRecord(3, inputselect.KindLegacy, 100)
	offchain.Origin = OriginOffchain
	require.NoError(t, store.AddRecord(offchain))

	balance = store.Balance(
		inputselect.KindLegacy, fn.NewSet(OriginOnchain),
	)
	require.Zero(t, balance.Cmp(spunit.NewWideAmount(3)))
}

// TestLegacyHasHighestAmount checks the duplicate onetime address rule.
func TestLegacyHasHighestAmount(t *testing.T) {
	t.Parallel()

	store := NewStore()

	// Three records share a onetime address. The largest is unconfirmed.
	shared := []ContextualRecord{
		newRecord(1, inputselect.KindLegacy, 5),
		newRecord(2, inputselect.KindLegacy, 9),
		newRecord(3, inputselect.KindLegacy, 9),
		newRecord(4, inputselect.KindLegacy, 20),
	}
	for i := range shared {
		shared[i].OnetimeAddress = OnetimeAddress{0xaa}
	}
	shared[3].Origin = OriginUnconfirmed

	for _, rec := range shared {
		require.NoError(t, store.AddRecord(rec))
	}
	require.NoError(t, store.AddRecord(
		newRecord(5, inputselect.KindLegacy, 1),
	))
	require.NoError(t, store.AddRecord(
		newRecord(6, inputselect.KindSeraphis, 1),
	))

	onchain := fn.NewSet(OriginOnchain)

	testCases := []struct {
		name        string
		keyImage    inputselect.KeyImage
		origins     fn.Set[OriginStatus]
		expected    bool
		expectedErr error
	}{
		{
			name:     "lower duplicate",
			keyImage: keyImage(1),
			origins:  onchain,
			expected: false,
		},
		{
			name:     "tied highest duplicate",
			keyImage: keyImage(2),
			origins:  onchain,
			expected: true,
		},
		{
			name:     "other tied highest duplicate",
			keyImage: keyImage(3),
			origins:  onchain,
			expected: true,
		},
		{
			name:     "unconfirmed duplicate counts",
			keyImage: keyImage(2),
			origins:  AllOrigins(),
			expected: false,
		},
		{
			name:     "unconfirmed duplicate is highest",
			keyImage: keyImage(4),
			origins:  AllOrigins(),
			expected: true,
		},
		{
			name:        "origin excluded",
			keyImage:    keyImage(4),
			origins:     onchain,
			expectedErr: ErrOriginNotAllowed,
		},
		{
			name:     "no duplicates",
			keyImage: keyImage(5),
			origins:  onchain,
			expected: true,
		},
		{
			name:        "seraphis record",
			keyImage:    keyImage(6),
			origins:     onchain,
			expectedErr: ErrRecordNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			highest, err := store.LegacyHasHighestAmount(
				tc.keyImage, tc.origins,
			)
			require.ErrorIs(t, err, tc.expectedErr)
			require.Equal(t, tc.expected, highest)
		})
	}
}
