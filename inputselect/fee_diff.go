// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inputselect

import (
	"errors"
	"fmt"

	"github.com/btcsuite/spwallet/pkg/spunit"
)

// feeUnavailable is returned by the fee difference helpers when the
// requested removal is impossible because the set holds no record of the
// kind. It is larger than any amount, so comparisons against it never favor
// the impossible move.
const feeUnavailable = spunit.MaxAmount

// ErrContractViolation is the panic value (wrapped) used when an internal
// invariant of input selection is broken, or when a caller supplied a fee
// calculator or argument that breaks its contract. It always indicates a
// bug and is never returned as an error.
var ErrContractViolation = errors.New("input selection contract violation")

// assertContract panics with an error wrapping ErrContractViolation if cond
// is false.
func assertContract(cond bool, format string, args ...any) {
	if cond {
		return
	}

	err := fmt.Errorf("%w: %s", ErrContractViolation,
		fmt.Sprintf(format, args...))
	log.Criticalf("Input selection bug: %v", err)

	panic(err)
}

// inputCounts is the number of records of each kind in a set.
type inputCounts [numKinds]int

// countsOf returns the per-kind record counts of the set.
func countsOf(set *InputSet) inputCounts {
	var counts inputCounts
	for _, kind := range Kinds {
		counts[kind] = set.Count(kind)
	}

	return counts
}

// feeModel binds a fee calculator to a fee rate and an output count, which
// are fixed for the duration of one engine run.
type feeModel struct {
	calc       FeeCalculator
	rate       spunit.FeePerWeight
	numOutputs int
}

// fee returns the fee of a transaction with the given input counts.
func (m feeModel) fee(counts inputCounts) spunit.Amount {
	return m.calc.ComputeFee(
		m.rate, counts[KindLegacy], counts[KindSeraphis], m.numOutputs,
	)
}

// feeOf returns the fee of a transaction spending every record in the set.
func (m feeModel) feeOf(set *InputSet) spunit.Amount {
	return m.fee(countsOf(set))
}

// diffFeeOfRemoving returns how much the fee drops when one record of the
// given kind is removed from the set, or feeUnavailable if the set holds no
// record of that kind.
func (m feeModel) diffFeeOfRemoving(set *InputSet, kind Kind) spunit.Amount {
	if set.Count(kind) == 0 {
		return feeUnavailable
	}

	counts := countsOf(set)
	initialFee := m.fee(counts)

	counts[kind]--
	feeAfterRemoval := m.fee(counts)

	assertContract(initialFee >= feeAfterRemoval,
		"fee %d before removing a %v input is lower than fee %d after",
		initialFee, kind, feeAfterRemoval)

	return initialFee - feeAfterRemoval
}

// diffFeeOfAdding returns how much the fee grows when one record of the
// given kind is added to the set.
func (m feeModel) diffFeeOfAdding(set *InputSet, kind Kind) spunit.Amount {
	counts := countsOf(set)
	initialFee := m.fee(counts)

	counts[kind]++
	feeAfterAdding := m.fee(counts)

	assertContract(feeAfterAdding >= initialFee,
		"fee %d after adding a %v input is lower than fee %d before",
		feeAfterAdding, kind, initialFee)

	return feeAfterAdding - initialFee
}

// diffFeeOfReplacing returns how much the fee grows when a record of kind
// added is inserted into the set after one record of kind removed has been
// taken out of it. It returns feeUnavailable if the set holds no record of
// the removed kind.
func (m feeModel) diffFeeOfReplacing(set *InputSet, removed,
	added Kind) spunit.Amount {

	if set.Count(removed) == 0 {
		return feeUnavailable
	}

	counts := countsOf(set)
	counts[removed]--
	feeAfterRemoval := m.fee(counts)

	counts[added]++
	feeAfterReplacing := m.fee(counts)

	assertContract(feeAfterReplacing >= feeAfterRemoval,
		"fee %d after replacing a %v input with a %v input is lower "+
			"than fee %d after the removal", feeAfterReplacing,
		removed, added, feeAfterRemoval)

	return feeAfterReplacing - feeAfterRemoval
}
