// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inputselect

import (
	"github.com/btcsuite/spwallet/pkg/spunit"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// FeeCalculator computes the fee of a transaction from its shape.
//
// Implementations must be non-decreasing in each of numLegacyInputs,
// numSeraphisInputs and numOutputs when the other arguments are held fixed.
// Input selection checks this wherever it takes a fee difference and panics
// with ErrContractViolation if it does not hold.
type FeeCalculator interface {
	// ComputeFee returns the fee of a transaction with the given number
	// of inputs of each kind and outputs at the given fee rate.
	ComputeFee(feePerWeight spunit.FeePerWeight, numLegacyInputs,
		numSeraphisInputs, numOutputs int) spunit.Amount
}

// FeeCalculatorFunc is an adapter to allow the use of ordinary functions as
// a FeeCalculator.
type FeeCalculatorFunc func(feePerWeight spunit.FeePerWeight,
	numLegacyInputs, numSeraphisInputs, numOutputs int) spunit.Amount

// ComputeFee calls f(feePerWeight, numLegacyInputs, numSeraphisInputs,
// numOutputs).
func (f FeeCalculatorFunc) ComputeFee(feePerWeight spunit.FeePerWeight,
	numLegacyInputs, numSeraphisInputs, numOutputs int) spunit.Amount {

	return f(feePerWeight, numLegacyInputs, numSeraphisInputs, numOutputs)
}

// OutputSetContext summarizes the outputs of the transaction being funded.
type OutputSetContext interface {
	// TotalAmount returns the sum of all output amounts.
	TotalAmount() spunit.WideAmount

	// NumOutputsNoChange returns the number of outputs the transaction
	// will have if the inputs exactly cover the outputs and the fee.
	NumOutputsNoChange() int

	// NumOutputsWithChange returns the number of outputs the transaction
	// will have if there is a non-zero change amount.
	NumOutputsWithChange() int
}

// InputSelector hands out new input candidates.
type InputSelector interface {
	// TrySelect returns a record that is in neither the added nor the
	// candidate set, or None if no such record is available. The desired
	// total is the amount the added set currently needs to reach, and is
	// only a hint.
	TrySelect(desiredTotal spunit.WideAmount, added,
		candidates *InputSet) fn.Option[Record]
}

// InputSelectorFunc is an adapter to allow the use of ordinary functions as
// an InputSelector.
type InputSelectorFunc func(desiredTotal spunit.WideAmount, added,
	candidates *InputSet) fn.Option[Record]

// TrySelect calls f(desiredTotal, added, candidates).
func (f InputSelectorFunc) TrySelect(desiredTotal spunit.WideAmount, added,
	candidates *InputSet) fn.Option[Record] {

	return f(desiredTotal, added, candidates)
}

// A compile time check to ensure the adapters implement the interfaces.
var _ FeeCalculator = (FeeCalculatorFunc)(nil)
var _ InputSelector = (InputSelectorFunc)(nil)
