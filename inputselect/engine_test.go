package inputselect

import (
	"testing"

	"github.com/btcsuite/spwallet/pkg/spunit"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// simpleCalc charges the rate once per input and output.
var simpleCalc = FeeCalculatorFunc(func(rate spunit.FeePerWeight,
	legacy, seraphis, outputs int) spunit.Amount {

	return spunit.Amount(rate.Val()) *
		spunit.Amount(legacy+seraphis+outputs)
})

// sliceSelector hands out the given records in order, skipping those the
// selection has already seen. Every call is checked against the input
// limit.
func sliceSelector(t *testing.T, maxInputs int,
	records ...Record) InputSelector {

	return InputSelectorFunc(func(_ spunit.WideAmount, added,
		candidates *InputSet) fn.Option[Record] {

		require.LessOrEqual(t, added.TotalCount(), maxInputs)

		for _, rec := range records {
			if added.Contains(rec.KeyImage) ||
				candidates.Contains(rec.KeyImage) {

				continue
			}

			return fn.Some(rec)
		}

		return fn.None[Record]()
	})
}

// TestTrySelectInputsZeroMax checks that a zero input limit is a contract
// violation.
func TestTrySelectInputsZeroMax(t *testing.T) {
	t.Parallel()

	fees := feeModel{calc: simpleCalc, rate: 1, numOutputs: 1}

	requireContractViolation(t, func() {
		trySelectInputs(
			spunit.NewWideAmount(1), 0, sliceSelector(t, 0),
			fees, nil,
		)
	})
}

// TestExcludeUseless checks that seeded records that do not pay for
// themselves are dropped before the solution check.
func TestExcludeUseless(t *testing.T) {
	t.Parallel()

	fees := feeModel{calc: simpleCalc, rate: 1, numOutputs: 1}
	e := &engine{
		outputAmount: spunit.NewWideAmount(0),
		maxInputs:    4,
		fees:         fees,
		added: NewInputSetFromRecords(
			testRecord(KindLegacy, 0, 0),
			testRecord(KindLegacy, 1, 1),
			testRecord(KindSeraphis, 1, 0),
			testRecord(KindSeraphis, 5, 1),
		),
		candidates: NewInputSet(),
	}

	e.excludeUseless()
	require.Equal(t, []spunit.Amount{5},
		amounts(e.added.Records(KindSeraphis)))
	require.Zero(t, e.added.Count(KindLegacy))
	require.Equal(t, 3, e.candidates.TotalCount())

	// The remaining record pays for itself and stays.
	e.excludeUseless()
	require.Equal(t, 1, e.added.TotalCount())
	require.Equal(t, 3, e.candidates.TotalCount())
}

// TestTrySelectInputsSeeded checks that a seeded set that already solves
// the target is returned as is.
func TestTrySelectInputsSeeded(t *testing.T) {
	t.Parallel()

	fees := feeModel{calc: simpleCalc, rate: 1, numOutputs: 1}
	seed := NewInputSetFromRecords(testRecord(KindSeraphis, 10, 0))

	added, ok := trySelectInputs(
		spunit.NewWideAmount(8), 1, sliceSelector(t, 1), fees, seed,
	)
	require.True(t, ok)
	require.Equal(t, []spunit.Amount{10},
		amounts(added.Records(KindSeraphis)))
}

// TestSwapCandidate checks that the swap pass upgrades the worst added
// record with the best candidate when the input limit is reached.
func TestSwapCandidate(t *testing.T) {
	t.Parallel()

	fees := feeModel{calc: simpleCalc, rate: 1, numOutputs: 1}
	e := &engine{
		outputAmount: spunit.NewWideAmount(10),
		maxInputs:    2,
		fees:         fees,
		added: NewInputSetFromRecords(
			testRecord(KindLegacy, 3, 0),
			testRecord(KindSeraphis, 4, 0),
		),
		candidates: NewInputSetFromRecords(
			testRecord(KindSeraphis, 9, 1),
			testRecord(KindLegacy, 2, 1),
		),
	}

	// The cap blocks adding, so the legacy 3 is swapped for the
	// seraphis 9 since legacy for legacy does not pay off.
	require.False(t, e.addCandidate())
	require.True(t, e.swapCandidate())

	require.Zero(t, e.added.Count(KindLegacy))
	require.Equal(t, []spunit.Amount{4, 9},
		amounts(e.added.Records(KindSeraphis)))
	require.Equal(t, []spunit.Amount{2, 3},
		amounts(e.candidates.Records(KindLegacy)))
	require.True(t, e.isSolved())
}

// TestAddRange checks that a run of candidates that only pays off together
// is added at once.
func TestAddRange(t *testing.T) {
	t.Parallel()

	// The fee only steps up every second input. With one input added,
	// a single 2 does not cover the next step of 3 but a pair of 2s
	// does.
	stepped := FeeCalculatorFunc(func(rate spunit.FeePerWeight, legacy,
		seraphis, outputs int) spunit.Amount {

		units := (legacy+seraphis)/2 + outputs
		return spunit.Amount(rate.Val()) * spunit.Amount(units)
	})
	fees := feeModel{calc: stepped, rate: 3, numOutputs: 1}

	newEngine := func(maxInputs int) *engine {
		return &engine{
			outputAmount: spunit.NewWideAmount(20),
			maxInputs:    maxInputs,
			fees:         fees,
			added: NewInputSetFromRecords(
				testRecord(KindLegacy, 5, 0),
			),
			candidates: NewInputSetFromRecords(
				testRecord(KindLegacy, 2, 1),
				testRecord(KindLegacy, 1, 2),
				testRecord(KindLegacy, 2, 3),
			),
		}
	}

	e := newEngine(3)
	require.False(t, e.addCandidate())
	require.True(t, e.addRange())
	require.Equal(t, []spunit.Amount{2, 2, 5},
		amounts(e.added.Records(KindLegacy)))
	require.Equal(t, []spunit.Amount{1},
		amounts(e.candidates.Records(KindLegacy)))

	// The added set is full now.
	require.False(t, e.addRange())

	// A limit that leaves room for only one more input fails the range.
	e = newEngine(2)
	require.False(t, e.addRange())
	require.Equal(t, 1, e.added.TotalCount())
}

// TestTrySelectInputsNonMonotone checks that a fee calculator that breaks
// monotonicity mid-selection is reported.
func TestTrySelectInputsNonMonotone(t *testing.T) {
	t.Parallel()

	fees := feeModel{calc: decreasingCalc, rate: 1, numOutputs: 1}

	requireContractViolation(t, func() {
		trySelectInputs(
			spunit.NewWideAmount(1000), 3,
			sliceSelector(t, 3,
				testRecord(KindLegacy, 5, 0),
				testRecord(KindLegacy, 6, 1),
			),
			fees, nil,
		)
	})
}

// shrinkingOutputs is an output set that claims to need fewer outputs with
// change than without.
type shrinkingOutputs struct {
	total      spunit.Amount
	noChange   int
	withChange int
}

func (o shrinkingOutputs) TotalAmount() spunit.WideAmount {
	return spunit.NewWideAmount(o.total)
}

func (o shrinkingOutputs) NumOutputsNoChange() int {
	return o.noChange
}

func (o shrinkingOutputs) NumOutputsWithChange() int {
	return o.withChange
}

// TestTryGetInputSetChangeFeeDrop checks that a change output lowering the
// fee is a contract violation once a selection leaves change.
func TestTryGetInputSetChangeFeeDrop(t *testing.T) {
	t.Parallel()

	outputs := shrinkingOutputs{total: 3, noChange: 3, withChange: 1}
	selector := sliceSelector(t, 2, testRecord(KindLegacy, 100, 0))

	requireContractViolation(t, func() {
		_, _ = TryGetInputSet(outputs, 2, selector, 1, simpleCalc)
	})

	// An exact selection never prices the change output.
	exact := sliceSelector(t, 2, testRecord(KindLegacy, 7, 0))
	selection, err := TryGetInputSet(outputs, 2, exact, 1, simpleCalc)
	require.NoError(t, err)
	require.True(t, selection.Change.IsZero())
	require.Equal(t, spunit.Amount(4), selection.Fee)
}
