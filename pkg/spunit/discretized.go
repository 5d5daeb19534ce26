// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spunit

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultFeeLevelFactor is the ratio between two consecutive fee
	// levels.
	DefaultFeeLevelFactor = 1.5

	// DefaultFeeSigFigs is the number of significant digits each fee level
	// is rounded to.
	DefaultFeeSigFigs = 2

	// minFeeLevelFactor is the smallest factor accepted. Anything smaller
	// would need more levels than a DiscretizedFee can encode.
	minFeeLevelFactor = 0.01
)

var (
	// ErrInvalidFeeLevels is returned when a fee level table cannot be
	// generated from the given parameters.
	ErrInvalidFeeLevels = errors.New("invalid fee level parameters")

	// DefaultFeeLevels is the fee level table generated from the default
	// factor and significant figures.
	DefaultFeeLevels = mustFeeLevels(
		DefaultFeeLevelFactor, DefaultFeeSigFigs,
	)
)

// DiscretizedFee is the compact encoding of a fee level. The zero value
// encodes a fee of zero.
type DiscretizedFee uint8

// FeeLevels is a table of the valid discretized fee values. Raw fees are
// rounded up to the next level so that fees leak less information about the
// transaction that paid them.
type FeeLevels struct {
	encodings []DiscretizedFee
	values    []Amount
	byLevel   map[DiscretizedFee]Amount
}

// roundToSigFigs keeps only the leading sigFigs digits of value, rounding
// the remainder to the nearest integer.
func roundToSigFigs(value float64, sigFigs uint) float64 {
	limit := math.Pow(10, float64(sigFigs))

	scale := 0
	for value >= limit {
		value /= 10
		scale++
	}

	value = math.Round(value)
	for ; scale > 0; scale-- {
		value *= 10
	}

	return value
}

// NewFeeLevels generates the fee level table for the given factor and number
// of significant figures. The table always contains a zero level and a
// MaxAmount level.
func NewFeeLevels(factor float64, sigFigs uint) (*FeeLevels, error) {
	if factor <= minFeeLevelFactor || sigFigs == 0 {
		return nil, fmt.Errorf("%w: factor=%v, sig_figs=%d",
			ErrInvalidFeeLevels, factor, sigFigs)
	}

	levels := &FeeLevels{
		byLevel: make(map[DiscretizedFee]Amount),
	}
	levels.add(0, 0)

	// The first encoding is taken by the zero level.
	const offset = 1
	maxLevel := math.MaxUint8 - offset - 2

	// float64(math.MaxUint64) is exactly 2^64, so any value strictly
	// below it converts to a uint64 without wrapping.
	ceiling := float64(math.MaxUint64)

	var (
		level   = 0
		prevFee = MaxAmount
	)
	for {
		value := roundToSigFigs(math.Pow(factor, float64(level)), sigFigs)
		if value >= ceiling {
			break
		}

		if level > maxLevel {
			return nil, fmt.Errorf("%w: too many fee levels",
				ErrInvalidFeeLevels)
		}

		fee := Amount(value)
		if fee != prevFee {
			levels.add(DiscretizedFee(level+offset), fee)
			prevFee = fee
		}

		level++
	}

	levels.add(DiscretizedFee(level+offset), MaxAmount)

	// At least one encoding must be left over to signal an invalid fee.
	if _, ok := levels.byLevel[math.MaxUint8]; ok {
		return nil, fmt.Errorf("%w: no invalid encoding left",
			ErrInvalidFeeLevels)
	}

	return levels, nil
}

// mustFeeLevels is NewFeeLevels for package level tables built from
// constants.
func mustFeeLevels(factor float64, sigFigs uint) *FeeLevels {
	levels, err := NewFeeLevels(factor, sigFigs)
	if err != nil {
		panic(err)
	}

	return levels
}

func (l *FeeLevels) add(encoding DiscretizedFee, value Amount) {
	l.encodings = append(l.encodings, encoding)
	l.values = append(l.values, value)
	l.byLevel[encoding] = value
}

// NumLevels returns the number of valid fee levels.
func (l *FeeLevels) NumLevels() int {
	return len(l.encodings)
}

// Discretize returns the encoding of the smallest fee level that is at least
// the raw fee.
func (l *FeeLevels) Discretize(raw Amount) DiscretizedFee {
	// Values are recorded in increasing order, and the last level is
	// MaxAmount, so the search always succeeds.
	for i, value := range l.values {
		if value >= raw {
			return l.encodings[i]
		}
	}

	return math.MaxUint8
}

// Value returns the fee value of an encoding. The boolean is false for an
// invalid encoding.
func (l *FeeLevels) Value(fee DiscretizedFee) (Amount, bool) {
	value, ok := l.byLevel[fee]

	return value, ok
}

// RoundUp returns the fee value of the level the raw fee discretizes to.
func (l *FeeLevels) RoundUp(raw Amount) Amount {
	value, ok := l.Value(l.Discretize(raw))
	if !ok {
		return MaxAmount
	}

	return value
}
