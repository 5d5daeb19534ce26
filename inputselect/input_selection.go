// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package inputselect chooses the inputs that fund a transaction from a pool
// of legacy and seraphis records.
//
// Selection is a deterministic local search. Records are pulled from an
// InputSelector one at a time into a candidate pool, and moved between the
// candidate pool and the added pool (the tentative solution) by a fixed
// sequence of passes until the added pool covers the outputs plus its own
// fee. The fee depends on the number of inputs of each kind, so every move
// is priced with the marginal fee it causes.
//
// The search is a heuristic. It can miss solutions that exist, for example
// when only a combination of records that are each worth less than their
// marginal fee would cover the outputs.
package inputselect

import (
	"errors"
	"fmt"

	"github.com/btcsuite/spwallet/pkg/spunit"
)

// ErrNoInputSet is returned when no set of inputs covering the outputs and
// the fee could be found within the input limit.
var ErrNoInputSet = errors.New("no input set found")

// Selection is the result of a successful input selection.
type Selection struct {
	// Inputs is the selected input set.
	Inputs *InputSet

	// Fee is the fee of the transaction spending the inputs.
	Fee spunit.Amount

	// Change is the amount left over after paying the outputs and the
	// fee. It is zero only if the inputs cover them exactly.
	Change spunit.WideAmount

	// NumOutputs is the number of outputs the fee was computed for.
	NumOutputs int
}

// LegacyRecords returns the selected legacy records ordered by amount.
func (s *Selection) LegacyRecords() []Record {
	return s.Inputs.Records(KindLegacy)
}

// SeraphisRecords returns the selected seraphis records ordered by amount.
func (s *Selection) SeraphisRecords() []Record {
	return s.Inputs.Records(KindSeraphis)
}

// TryGetInputSet selects inputs for a transaction with the given outputs.
//
// A transaction with a non-zero change amount needs more outputs, and so a
// higher fee, than one without change. Selection is first run for the
// no-change output count. If the result happens to cover the outputs and the
// fee exactly, it is returned with zero change. Otherwise the fee is
// recomputed with a change output, and if the inputs no longer leave a
// positive change, selection is run again from the current inputs with the
// change output counted and a target one unit higher.
//
// ErrNoInputSet is returned if either run fails. The function panics with
// ErrContractViolation if maxInputs is zero or the fee calculator is not
// monotone.
func TryGetInputSet(outputCtx OutputSetContext, maxInputs int,
	selector InputSelector, feeRate spunit.FeePerWeight,
	feeCalc FeeCalculator) (*Selection, error) {

	outputAmount := outputCtx.TotalAmount()
	numOutputsNoChange := outputCtx.NumOutputsNoChange()

	feesNoChange := feeModel{
		calc:       feeCalc,
		rate:       feeRate,
		numOutputs: numOutputsNoChange,
	}
	inputs, ok := trySelectInputs(
		outputAmount, maxInputs, selector, feesNoChange, nil,
	)
	if !ok {
		return nil, fmt.Errorf("%w: covering %v with no change "+
			"(max inputs %d)", ErrNoInputSet, outputAmount,
			maxInputs)
	}

	total := inputs.TotalAmount()
	zeroChangeFee := feesNoChange.feeOf(inputs)
	if total.Cmp(outputAmount.Add(zeroChangeFee)) == 0 {
		log.Debugf("Selected %d inputs with zero change, fee=%d",
			inputs.TotalCount(), zeroChangeFee)

		return &Selection{
			Inputs:     inputs,
			Fee:        zeroChangeFee,
			NumOutputs: numOutputsNoChange,
		}, nil
	}

	numOutputsWithChange := outputCtx.NumOutputsWithChange()
	feesWithChange := feeModel{
		calc:       feeCalc,
		rate:       feeRate,
		numOutputs: numOutputsWithChange,
	}
	changeFee := feesWithChange.feeOf(inputs)

	assertContract(zeroChangeFee <= changeFee,
		"adding a change output reduced the fee from %d to %d",
		zeroChangeFee, changeFee)

	if total.Cmp(outputAmount.Add(changeFee)) <= 0 {
		log.Debugf("Inputs worth %v do not leave change with fee %d, "+
			"reselecting", total, changeFee)

		// The target is raised by one to force a non-zero change.
		inputs, ok = trySelectInputs(
			outputAmount.Add(1), maxInputs, selector,
			feesWithChange, inputs,
		)
		if !ok {
			return nil, fmt.Errorf("%w: covering %v with change "+
				"(max inputs %d)", ErrNoInputSet,
				outputAmount, maxInputs)
		}

		total = inputs.TotalAmount()
		changeFee = feesWithChange.feeOf(inputs)
	}

	need := outputAmount.Add(changeFee)
	assertContract(total.Cmp(need) > 0,
		"inputs worth %v leave no change over %v", total, need)

	log.Debugf("Selected %d legacy and %d seraphis inputs worth %v, "+
		"fee=%d", inputs.Count(KindLegacy), inputs.Count(KindSeraphis),
		total, changeFee)

	return &Selection{
		Inputs:     inputs,
		Fee:        changeFee,
		Change:     total.SubWide(need),
		NumOutputs: numOutputsWithChange,
	}, nil
}
