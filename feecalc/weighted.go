// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package feecalc

import (
	"errors"
	"fmt"

	"github.com/btcsuite/spwallet/pkg/spunit"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrZeroOutputWeight is returned when a weight parameter set gives
	// outputs no weight.
	ErrZeroOutputWeight = errors.New("output weight must be positive")

	// ErrZeroInputWeight is returned when a weight parameter set gives
	// one of the input kinds no weight.
	ErrZeroInputWeight = errors.New("input weight must be positive")
)

// WeightParams describes the size of a transaction in weight units.
type WeightParams struct {
	// BaseWeight is the weight of a transaction with no inputs and no
	// outputs.
	BaseWeight spunit.WeightUnit

	// LegacyInputWeight is the weight added by one legacy input,
	// including its ring membership proof.
	LegacyInputWeight spunit.WeightUnit

	// SeraphisInputWeight is the weight added by one seraphis input,
	// including its membership proof.
	SeraphisInputWeight spunit.WeightUnit

	// OutputWeight is the weight added by one output.
	OutputWeight spunit.WeightUnit
}

// DefaultWeightParams is a rough estimate of a squashed seraphis
// transaction with a legacy ring size of 16 and a reference set of 128.
var DefaultWeightParams = WeightParams{
	BaseWeight:          spunit.NewWeightUnit(200),
	LegacyInputWeight:   spunit.NewWeightUnit(1_360),
	SeraphisInputWeight: spunit.NewWeightUnit(2_100),
	OutputWeight:        spunit.NewWeightUnit(140),
}

// Validate checks that every per-item weight is positive.
func (p WeightParams) Validate() error {
	if p.OutputWeight.Val() == 0 {
		return ErrZeroOutputWeight
	}

	if p.LegacyInputWeight.Val() == 0 {
		return fmt.Errorf("%w: legacy", ErrZeroInputWeight)
	}

	if p.SeraphisInputWeight.Val() == 0 {
		return fmt.Errorf("%w: seraphis", ErrZeroInputWeight)
	}

	return nil
}

// Weight returns the estimated weight of a transaction with the given shape.
func (p WeightParams) Weight(numLegacyInputs, numSeraphisInputs,
	numOutputs int) spunit.WeightUnit {

	return p.BaseWeight.
		Add(p.LegacyInputWeight.Mul(uint64(numLegacyInputs))).
		Add(p.SeraphisInputWeight.Mul(uint64(numSeraphisInputs))).
		Add(p.OutputWeight.Mul(uint64(numOutputs)))
}

// Weighted prices a transaction by its estimated weight. If fee levels are
// set, the raw fee is rounded up to the next level so that the fee does not
// leak the exact fee rate. Both steps are monotone, so the calculator is
// monotone in each count.
type Weighted struct {
	params WeightParams
	levels fn.Option[*spunit.FeeLevels]
}

// NewWeighted returns a weighted calculator with exact fees.
func NewWeighted(params WeightParams) (*Weighted, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Weighted{
		params: params,
		levels: fn.None[*spunit.FeeLevels](),
	}, nil
}

// NewDiscretizedWeighted returns a weighted calculator whose fees are
// rounded up to the given levels.
func NewDiscretizedWeighted(params WeightParams,
	levels *spunit.FeeLevels) (*Weighted, error) {

	w, err := NewWeighted(params)
	if err != nil {
		return nil, err
	}

	if levels != nil {
		w.levels = fn.Some(levels)
	}

	return w, nil
}

// ComputeFee returns the fee of a transaction with the given shape.
func (w *Weighted) ComputeFee(feePerWeight spunit.FeePerWeight,
	numLegacyInputs, numSeraphisInputs, numOutputs int) spunit.Amount {

	weight := w.params.Weight(
		numLegacyInputs, numSeraphisInputs, numOutputs,
	)
	fee := feePerWeight.FeeForWeight(weight)

	w.levels.WhenSome(func(l *spunit.FeeLevels) {
		fee = l.RoundUp(fee)
	})

	return fee
}
