// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package feecalc provides fee calculators for input selection.
//
// Trivial, Simple and InputsStepped are flat models that count inputs and
// outputs directly. They are useful for simulation and tests since the
// resulting fees are easy to reason about. Weighted prices a transaction by
// an estimated weight and is the model a wallet would normally use.
package feecalc

import (
	"github.com/btcsuite/spwallet/inputselect"
	"github.com/btcsuite/spwallet/pkg/spunit"
)

// A compile time check to ensure the calculators implement the
// inputselect.FeeCalculator interface.
var _ inputselect.FeeCalculator = (*Trivial)(nil)
var _ inputselect.FeeCalculator = (*Simple)(nil)
var _ inputselect.FeeCalculator = (*InputsStepped)(nil)
var _ inputselect.FeeCalculator = (*Weighted)(nil)

// Trivial charges the fee rate itself as the fee, no matter the shape of the
// transaction.
type Trivial struct{}

// ComputeFee returns the fee rate as an amount.
func (Trivial) ComputeFee(feePerWeight spunit.FeePerWeight, _, _,
	_ int) spunit.Amount {

	return spunit.Amount(feePerWeight.Val())
}

// Simple charges the fee rate once per input and once per output.
type Simple struct{}

// ComputeFee returns rate * (inputs + outputs).
func (Simple) ComputeFee(feePerWeight spunit.FeePerWeight, numLegacyInputs,
	numSeraphisInputs, numOutputs int) spunit.Amount {

	units := numLegacyInputs + numSeraphisInputs + numOutputs

	return feePerWeight.FeeForWeight(spunit.NewWeightUnit(uint64(units)))
}

// InputsStepped charges the fee rate once per output and once per full step
// of inputs, so that the fee only grows every StepSize inputs.
type InputsStepped struct {
	// StepSize is the number of inputs per fee step. Zero is treated as
	// one.
	StepSize int
}

// NewInputsStepped returns a stepped calculator with the given step size.
func NewInputsStepped(stepSize int) *InputsStepped {
	return &InputsStepped{StepSize: stepSize}
}

// ComputeFee returns rate * (floor(inputs / step) + outputs).
func (s InputsStepped) ComputeFee(feePerWeight spunit.FeePerWeight,
	numLegacyInputs, numSeraphisInputs, numOutputs int) spunit.Amount {

	step := s.StepSize
	if step <= 0 {
		step = 1
	}

	units := (numLegacyInputs+numSeraphisInputs)/step + numOutputs

	return feePerWeight.FeeForWeight(spunit.NewWeightUnit(uint64(units)))
}
