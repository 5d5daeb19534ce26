// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package spunit provides a set of types for dealing with enote amounts, fee
// rates and transaction weights.
package spunit

import (
	"fmt"
	"math"
)

const (
	// AtomicUnitsPerCoin is the number of atomic units in one whole coin.
	AtomicUnitsPerCoin = 1_000_000_000_000

	// coinDecimals is the number of decimal places used when formatting an
	// amount in whole coins.
	coinDecimals = 12
)

// MaxAmount is the largest amount that can be expressed by a single enote.
const MaxAmount = Amount(math.MaxUint64)

// Amount represents a quantity of atomic units. A single enote amount, and
// any fee, always fits in an Amount. Sums of many amounts must use a
// WideAmount.
type Amount uint64

// ToCoin returns the amount as a floating point number of whole coins. It is
// lossy and must only be used for display.
func (a Amount) ToCoin() float64 {
	return float64(a) / AtomicUnitsPerCoin
}

// String returns the amount formatted in whole coins with full precision.
func (a Amount) String() string {
	whole := uint64(a) / AtomicUnitsPerCoin
	frac := uint64(a) % AtomicUnitsPerCoin

	return fmt.Sprintf("%d.%0*d XMR", whole, coinDecimals, frac)
}
