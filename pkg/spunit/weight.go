// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spunit

import "fmt"

// kilo is a generic multiplier for kilo units.
const kilo = 1000

// WeightUnit expresses the weight of a transaction, which is what fee rates
// are charged against.
type WeightUnit struct {
	wu uint64
}

// NewWeightUnit creates a new WeightUnit from a uint64 value.
func NewWeightUnit(val uint64) WeightUnit {
	return WeightUnit{wu: val}
}

// NewKWeightUnit creates a new WeightUnit from a number of kilo-weight-units.
func NewKWeightUnit(val uint64) WeightUnit {
	return WeightUnit{wu: val * kilo}
}

// Val returns the weight in weight units.
func (w WeightUnit) Val() uint64 {
	return w.wu
}

// Add returns the sum of two weights.
func (w WeightUnit) Add(other WeightUnit) WeightUnit {
	return WeightUnit{wu: w.wu + other.wu}
}

// Mul returns the weight multiplied by n.
func (w WeightUnit) Mul(n uint64) WeightUnit {
	return WeightUnit{wu: w.wu * n}
}

// String returns the string representation of the weight unit.
func (w WeightUnit) String() string {
	return fmt.Sprintf("%d wu", w.wu)
}
