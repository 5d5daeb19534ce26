// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inputselect

import (
	"github.com/btcsuite/spwallet/pkg/spunit"
	"github.com/davecgh/go-spew/spew"
)

// swapPair is a kind of added record to give up and a kind of candidate to
// take in exchange.
type swapPair struct {
	removed Kind
	added   Kind
}

// swapPairs is the order in which swaps are attempted.
var swapPairs = [...]swapPair{
	{removed: KindLegacy, added: KindLegacy},
	{removed: KindLegacy, added: KindSeraphis},
	{removed: KindSeraphis, added: KindLegacy},
	{removed: KindSeraphis, added: KindSeraphis},
}

// engine holds the state of a single selection run: the fee model, the
// limits and the two pools the passes move records between.
type engine struct {
	outputAmount spunit.WideAmount
	maxInputs    int
	selector     InputSelector
	fees         feeModel

	// added is the tentative solution.
	added *InputSet

	// candidates holds records obtained from the selector that are not
	// part of the solution.
	candidates *InputSet
}

// trySelectInputs runs the local search until the added set covers the
// output amount plus its own fee, or until no pass can make progress. The
// initial set seeds the added pool and is consumed. On success the final
// added set is returned.
func trySelectInputs(outputAmount spunit.WideAmount, maxInputs int,
	selector InputSelector, fees feeModel,
	initial *InputSet) (*InputSet, bool) {

	assertContract(maxInputs > 0, "zero inputs were allowed")

	if initial == nil {
		initial = NewInputSet()
	}

	e := &engine{
		outputAmount: outputAmount,
		maxInputs:    maxInputs,
		selector:     selector,
		fees:         fees,
		added:        initial,
		candidates:   NewInputSet(),
	}

	for {
		// Cleanup has precedence over the solution check.
		e.excludeUseless()

		assertContract(e.added.TotalCount() <= e.maxInputs,
			"%d inputs selected with a limit of %d",
			e.added.TotalCount(), e.maxInputs)

		if e.isSolved() {
			log.Tracef("Selection solved with %d inputs: %v",
				e.added.TotalCount(), newLogClosure(func() string {
					return spew.Sdump(e.added.Records(KindLegacy),
						e.added.Records(KindSeraphis))
				}))

			return e.added, true
		}

		// Adding is tried before swapping so that fresh candidates
		// land in the added set instead of displacing what is already
		// there.
		if e.addCandidate() {
			continue
		}

		if e.swapCandidate() {
			continue
		}

		if e.acquireCandidate() {
			continue
		}

		if e.addRange() {
			continue
		}

		log.Tracef("Selection failed with %d added and %d candidate "+
			"inputs", e.added.TotalCount(), e.candidates.TotalCount())

		return nil, false
	}
}

// isSolved returns true if the added set covers the output amount plus its
// own fee.
func (e *engine) isSolved() bool {
	need := e.outputAmount.Add(e.fees.feeOf(e.added))

	return e.added.TotalAmount().Cmp(need) >= 0
}

// excludeUseless moves added records that do not pay for their own marginal
// fee back into the candidates. Records are removed one per kind per round
// until a full round removes nothing.
func (e *engine) excludeUseless() {
	initialCount := e.added.TotalCount()
	if initialCount == 0 {
		return
	}

	for {
		before := e.added.TotalCount()
		for _, kind := range Kinds {
			e.excludeUselessOfKind(kind)
		}

		if e.added.TotalCount() >= before {
			break
		}
	}

	if excluded := initialCount - e.added.TotalCount(); excluded > 0 {
		log.Tracef("Excluded %d useless inputs", excluded)
	}
}

func (e *engine) excludeUselessOfKind(kind Kind) {
	if e.added.Count(kind) == 0 {
		return
	}

	removeFee := e.fees.diffFeeOfRemoving(e.added, kind)
	if e.added.WorstAmount(kind) > removeFee {
		return
	}

	moveWorst(kind, e.added, e.candidates)
}

// addCandidate moves the best candidate of the first kind whose best
// candidate exceeds the marginal fee of adding it.
func (e *engine) addCandidate() bool {
	if e.added.TotalCount() >= e.maxInputs ||
		e.candidates.TotalCount() == 0 {

		return false
	}

	for _, kind := range Kinds {
		if e.candidates.Count(kind) == 0 {
			continue
		}

		addFee := e.fees.diffFeeOfAdding(e.added, kind)
		best := e.candidates.BestAmount(kind)
		if addFee >= best {
			continue
		}

		log.Tracef("Adding %v candidate with amount %d", kind, best)

		return moveBest(kind, e.candidates, e.added)
	}

	return false
}

// swapCandidate performs at most one swap of the worst added record of one
// kind for the best candidate of another, trying the pairs in order.
func (e *engine) swapCandidate() bool {
	if e.added.TotalCount() == 0 || e.candidates.TotalCount() == 0 {
		return false
	}

	for _, pair := range swapPairs {
		if e.trySwap(pair) {
			return true
		}
	}

	return false
}

// trySwap swaps the worst added record of the pair's removed kind for the
// best candidate of its added kind if that raises the net value of the
// added set.
func (e *engine) trySwap(pair swapPair) bool {
	if e.added.Count(pair.removed) == 0 ||
		e.candidates.Count(pair.added) == 0 {

		return false
	}

	removeFee := e.fees.diffFeeOfRemoving(e.added, pair.removed)
	replaceFee := e.fees.diffFeeOfReplacing(
		e.added, pair.removed, pair.added,
	)

	// The swap pays off when
	//   best - replaceFee > worst - removeFee
	// which is rearranged to avoid subtraction.
	worst := e.added.WorstAmount(pair.removed)
	best := e.candidates.BestAmount(pair.added)

	cost := spunit.NewWideAmount(worst).Add(replaceFee)
	reward := spunit.NewWideAmount(best).Add(removeFee)
	if cost.Cmp(reward) >= 0 {
		return false
	}

	log.Tracef("Swapping %v input with amount %d for %v candidate "+
		"with amount %d", pair.removed, worst, pair.added, best)

	worstRec, _ := e.added.removeWorst(pair.removed)
	bestRec, _ := e.candidates.removeBest(pair.added)
	e.added.Insert(bestRec)
	e.candidates.Insert(worstRec)

	return true
}

// acquireCandidate asks the selector for a new candidate.
func (e *engine) acquireCandidate() bool {
	desired := e.outputAmount.Add(e.fees.feeOf(e.added))

	rec := e.selector.TrySelect(desired, e.added, e.candidates)
	if rec.IsNone() {
		return false
	}

	rec.WhenSome(func(r Record) {
		log.Tracef("Acquired candidate %v", r)
		e.candidates.Insert(r)
	})

	return true
}

// addRange tries to move a run of the highest candidates of a single kind
// into the added set when no single candidate is worth adding on its own.
// Mixed-kind runs are not searched.
func (e *engine) addRange() bool {
	if e.added.TotalCount() >= e.maxInputs {
		return false
	}

	for _, kind := range Kinds {
		if e.addRangeOfKind(kind) {
			return true
		}
	}

	return false
}

func (e *engine) addRangeOfKind(kind Kind) bool {
	initialCount := e.added.TotalCount()
	counts := countsOf(e.added)
	currentFee := e.fees.fee(counts)

	var (
		rangeSum  spunit.WideAmount
		rangeSize int
		found     bool
	)
	e.candidates.Descend(kind, func(rec Record) bool {
		rangeSum = rangeSum.Add(rec.Amount)
		rangeSize++

		if initialCount+rangeSize > e.maxInputs {
			return false
		}

		counts[kind]++
		rangeFee := e.fees.fee(counts)

		assertContract(rangeFee >= currentFee,
			"range fee %d is lower than current fee %d", rangeFee,
			currentFee)

		diff := spunit.NewWideAmount(rangeFee - currentFee)
		if rangeSum.Cmp(diff) > 0 {
			found = true
			return false
		}

		return true
	})
	if !found {
		return false
	}

	log.Tracef("Adding range of %d %v candidates", rangeSize, kind)

	for i := 0; i < rangeSize; i++ {
		assertContract(moveBest(kind, e.candidates, e.added),
			"candidate range of %v smaller than expected", kind)
	}

	return true
}
