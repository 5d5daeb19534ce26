// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spunit

import (
	"errors"

	"github.com/holiman/uint256"
)

// ErrAmountUnderflow is the panic value used when a wide subtraction would
// produce a negative amount.
var ErrAmountUnderflow = errors.New("wide amount underflow")

// WideAmount is an accumulator for sums of Amounts. It is backed by a 256-bit
// unsigned integer so that adding any realistic number of 64-bit amounts (and
// fees) together can never overflow.
//
// The zero value is a valid amount of zero.
type WideAmount struct {
	v uint256.Int
}

// NewWideAmount creates a new WideAmount holding a single amount.
func NewWideAmount(a Amount) WideAmount {
	var w WideAmount
	w.v.SetUint64(uint64(a))

	return w
}

// Add returns w + a.
func (w WideAmount) Add(a Amount) WideAmount {
	w.v.AddUint64(&w.v, uint64(a))

	return w
}

// AddWide returns w + other.
func (w WideAmount) AddWide(other WideAmount) WideAmount {
	w.v.Add(&w.v, &other.v)

	return w
}

// SubWide returns w - other. It panics with ErrAmountUnderflow if other is
// larger than w, since callers only subtract amounts they have already
// compared.
func (w WideAmount) SubWide(other WideAmount) WideAmount {
	if w.v.Lt(&other.v) {
		panic(ErrAmountUnderflow)
	}

	w.v.Sub(&w.v, &other.v)

	return w
}

// Cmp compares w and other and returns -1, 0 or +1.
func (w WideAmount) Cmp(other WideAmount) int {
	return w.v.Cmp(&other.v)
}

// IsZero returns true if the amount is zero.
func (w WideAmount) IsZero() bool {
	return w.v.IsZero()
}

// ToAmount narrows the wide amount to an Amount. The boolean is false if the
// value does not fit in 64 bits.
func (w WideAmount) ToAmount() (Amount, bool) {
	if !w.v.IsUint64() {
		return MaxAmount, false
	}

	return Amount(w.v.Uint64()), true
}

// String returns the amount as a decimal number of atomic units.
func (w WideAmount) String() string {
	return w.v.Dec()
}
