// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spunit

import (
	"fmt"

	"github.com/holiman/uint256"
)

// ZeroFeePerWeight is a fee rate of 0 per weight unit.
var ZeroFeePerWeight = FeePerWeight(0)

// FeePerWeight is a fee rate expressed in atomic units per weight unit.
type FeePerWeight uint64

// Val returns the raw fee rate.
func (f FeePerWeight) Val() uint64 {
	return uint64(f)
}

// FeeForWeight calculates the fee resulting from this fee rate and the given
// weight. The product is computed at 256 bits and saturates at MaxAmount, so
// that a fee never wraps around to a small value.
func (f FeePerWeight) FeeForWeight(weight WeightUnit) Amount {
	var fee uint256.Int
	fee.Mul(uint256.NewInt(uint64(f)), uint256.NewInt(weight.wu))

	if !fee.IsUint64() {
		return MaxAmount
	}

	return Amount(fee.Uint64())
}

// FeeForKWeight calculates the fee resulting from this fee rate and the given
// weight in kilo-weight-units.
func (f FeePerWeight) FeeForKWeight(kwu uint64) Amount {
	return f.FeeForWeight(NewKWeightUnit(kwu))
}

// String returns a human-readable string of the fee rate.
func (f FeePerWeight) String() string {
	return fmt.Sprintf("%d/wu", uint64(f))
}
