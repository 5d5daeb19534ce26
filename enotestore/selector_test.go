package enotestore

import (
	"testing"

	"github.com/btcsuite/spwallet/inputselect"
	"github.com/btcsuite/spwallet/outputctx"
	"github.com/btcsuite/spwallet/pkg/spunit"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// flatFee charges rate per input and output.
var flatFee = inputselect.FeeCalculatorFunc(func(rate spunit.FeePerWeight,
	legacy, seraphis, outputs int) spunit.Amount {

	return spunit.Amount(rate.Val()) *
		spunit.Amount(legacy+seraphis+outputs)
})

// drain repeatedly asks the selector for a record and adds it to the
// candidates until it runs out, returning the amounts in proposal order.
func drain(t *testing.T, selector inputselect.InputSelector,
	added *inputselect.InputSet) []spunit.Amount {

	t.Helper()

	var (
		candidates = inputselect.NewInputSet()
		amounts    []spunit.Amount
	)
	for {
		rec := selector.TrySelect(
			spunit.NewWideAmount(0), added, candidates,
		)
		if rec.IsNone() {
			return amounts
		}

		r := rec.UnsafeFromSome()
		require.False(t, added.Contains(r.KeyImage))
		require.False(t, candidates.Contains(r.KeyImage))

		candidates.Insert(r)
		amounts = append(amounts, r.Amount)
	}
}

func fillStore(t *testing.T, legacy, seraphis []spunit.Amount) *Store {
	t.Helper()

	store := NewStore()
	n := 0
	for _, amount := range legacy {
		n++
		require.NoError(t, store.AddRecord(
			newRecord(n, inputselect.KindLegacy, amount),
		))
	}
	for _, amount := range seraphis {
		n++
		require.NoError(t, store.AddRecord(
			newRecord(n, inputselect.KindSeraphis, amount),
		))
	}

	return store
}

// TestSimpleSelector checks that the simple selector walks the store in
// order, legacy first, skipping spent and already seen records.
func TestSimpleSelector(t *testing.T) {
	t.Parallel()

	store := fillStore(
		t, []spunit.Amount{3, 1, 2}, []spunit.Amount{9, 8},
	)
	require.NoError(t, store.SetSpentStatus(keyImage(2), true))

	added := inputselect.NewInputSetFromRecords(inputselect.Record{
		Kind:     inputselect.KindSeraphis,
		Amount:   9,
		KeyImage: keyImage(4),
	})

	amounts := drain(t, NewSimpleSelector(store), added)
	require.Equal(t, []spunit.Amount{3, 2, 8}, amounts)
}

// TestSelectorStrategies checks the proposal order of each strategy.
func TestSelectorStrategies(t *testing.T) {
	t.Parallel()

	legacy := []spunit.Amount{3, 1, 7, 2}
	seraphis := []spunit.Amount{4, 10}

	store := fillStore(t, legacy, seraphis)

	ordered := drain(t, NewSelector(store, SelectorConfig{
		Strategy: ArrangeOrdered,
	}), inputselect.NewInputSet())
	require.Equal(t, []spunit.Amount{3, 1, 7, 2, 4, 10}, ordered)

	largest := drain(t, NewSelector(store, SelectorConfig{
		Strategy: ArrangeLargestFirst,
	}), inputselect.NewInputSet())
	require.Equal(t, []spunit.Amount{7, 3, 2, 1, 10, 4}, largest)

	// At rate 2 each input costs 2, so records worth 2 or less are
	// dropped by the random strategy.
	random := drain(t, NewSelector(store, SelectorConfig{
		Strategy: ArrangeRandom,
		FeeRate:  2,
		FeeCalc:  flatFee,
	}), inputselect.NewInputSet())
	require.ElementsMatch(t, []spunit.Amount{3, 7, 4, 10}, random)

	// Legacy records are always proposed before seraphis records.
	require.ElementsMatch(t, []spunit.Amount{3, 7}, random[:2])
}

// TestSelectorFilters checks the origin filter and the legacy duplicate
// rule.
func TestSelectorFilters(t *testing.T) {
	t.Parallel()

	store := NewStore()

	// Two legacy records share a onetime address.
	low := newRecord(1, inputselect.KindLegacy, 4)
	high := newRecord(2, inputselect.KindLegacy, 6)
	low.OnetimeAddress = OnetimeAddress{0xbb}
	high.OnetimeAddress = OnetimeAddress{0xbb}

	offchain := newRecord(3, inputselect.KindSeraphis, 5)
	offchain.Origin = OriginOffchain

	for _, rec := range []ContextualRecord{
		low, high, offchain, newRecord(4, inputselect.KindSeraphis, 1),
	} {
		require.NoError(t, store.AddRecord(rec))
	}

	amounts := drain(t, NewSelector(store, SelectorConfig{}),
		inputselect.NewInputSet())
	require.Equal(t, []spunit.Amount{6, 5, 1}, amounts)

	amounts = drain(t, NewSelector(store, SelectorConfig{
		Origins: fn.NewSet(OriginOnchain),
	}), inputselect.NewInputSet())
	require.Equal(t, []spunit.Amount{6, 1}, amounts)

	// Once the larger duplicate is spent, the smaller one is still not
	// proposed since the spent record keeps its origin.
	require.NoError(t, store.SetSpentStatus(keyImage(2), true))
	amounts = drain(t, NewSelector(store, SelectorConfig{}),
		inputselect.NewInputSet())
	require.Equal(t, []spunit.Amount{5, 1}, amounts)
}

// TestSelectorSharedAddress checks that at most one of several legacy records
// sharing a onetime address is ever proposed in a selection, even when they
// are tied for the highest amount.
func TestSelectorSharedAddress(t *testing.T) {
	t.Parallel()

	store := NewStore()

	first := newRecord(1, inputselect.KindLegacy, 5)
	second := newRecord(2, inputselect.KindLegacy, 5)
	first.OnetimeAddress = OnetimeAddress{0xcc}
	second.OnetimeAddress = OnetimeAddress{0xcc}

	for _, rec := range []ContextualRecord{
		first, second, newRecord(3, inputselect.KindLegacy, 2),
	} {
		require.NoError(t, store.AddRecord(rec))
	}

	selectors := map[string]inputselect.InputSelector{
		"simple":  NewSimpleSelector(store),
		"ordered": NewSelector(store, SelectorConfig{}),
		"largest": NewSelector(store, SelectorConfig{
			Strategy: ArrangeLargestFirst,
		}),
	}

	for name, selector := range selectors {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			amounts := drain(t, selector, inputselect.NewInputSet())
			require.ElementsMatch(t, []spunit.Amount{5, 2}, amounts)

			// A duplicate already in the added set blocks the
			// other one.
			added := inputselect.NewInputSetFromRecords(
				second.Record,
			)
			amounts = drain(t, selector, added)
			require.Equal(t, []spunit.Amount{2}, amounts)
		})
	}
}

// TestSelectorSharedAddressSelection checks that input selection cannot
// fund a payment by spending two records with the same onetime address.
func TestSelectorSharedAddressSelection(t *testing.T) {
	t.Parallel()

	store := NewStore()
	for n := 1; n <= 2; n++ {
		rec := newRecord(n, inputselect.KindLegacy, 5)
		rec.OnetimeAddress = OnetimeAddress{0xdd}
		require.NoError(t, store.AddRecord(rec))
	}

	outputs := outputctx.NewSimple([]spunit.Amount{8}, 1)

	for _, selector := range []inputselect.InputSelector{
		NewSimpleSelector(store),
		NewSelector(store, SelectorConfig{}),
	} {
		_, err := inputselect.TryGetInputSet(
			outputs, 2, selector, 0, flatFee,
		)
		require.ErrorIs(t, err, inputselect.ErrNoInputSet)
	}

	// With one output of 5 the first duplicate alone is enough.
	outputs = outputctx.NewSimple([]spunit.Amount{5}, 1)
	selection, err := inputselect.TryGetInputSet(
		outputs, 2, NewSelector(store, SelectorConfig{}), 0, flatFee,
	)
	require.NoError(t, err)
	require.Len(t, selection.LegacyRecords(), 1)
}

// TestInputYieldsPositively checks the economical input filter.
func TestInputYieldsPositively(t *testing.T) {
	t.Parallel()

	rec := inputselect.Record{Kind: inputselect.KindSeraphis, Amount: 10}

	require.True(t, inputYieldsPositively(rec, 9, flatFee))
	require.False(t, inputYieldsPositively(rec, 10, flatFee))
	require.True(t, inputYieldsPositively(rec, 0, flatFee))
}
