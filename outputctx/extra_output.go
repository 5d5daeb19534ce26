// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package outputctx

import (
	"errors"
	"fmt"

	"github.com/btcsuite/spwallet/pkg/spunit"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrNoOutputs is returned for a proposal set without outputs. A
	// transfer to oneself should use a self-spend proposal rather than
	// rely on the change output.
	ErrNoOutputs = errors.New("output set has no outputs")

	// ErrTooManySelfSends is returned when more self-send types are given
	// than there are outputs.
	ErrTooManySelfSends = errors.New("more self-send outputs than outputs")

	// ErrDoubleChange is returned when a single change output is
	// proposed and the transaction has a non-zero change, since a
	// two-output transaction may not carry two change outputs.
	ErrDoubleChange = errors.New("change output already proposed")

	// ErrSharedPubkeySameSelfSend is returned when two self-sends of the
	// same type share an enote ephemeral pubkey.
	ErrSharedPubkeySameSelfSend = errors.New("two same-type self-sends " +
		"share an enote ephemeral pubkey")

	// ErrSharedPubkeyNoSelfSend is returned when two normal outputs share
	// an enote ephemeral pubkey, which leaves no room for the self-send
	// every transaction needs.
	ErrSharedPubkeyNoSelfSend = errors.New("two normal outputs share an " +
		"enote ephemeral pubkey")

	// ErrSharedPubkeyChange is returned when two outputs sharing an enote
	// ephemeral pubkey would need a change output.
	ErrSharedPubkeyChange = errors.New("outputs sharing an enote " +
		"ephemeral pubkey cannot take a change output")

	// ErrDuplicatePubkeys is returned when a set of more than two outputs
	// does not have unique enote ephemeral pubkeys.
	ErrDuplicatePubkeys = errors.New("enote ephemeral pubkeys of a " +
		"3+ output set are not unique")
)

// SelfSendType is the purpose of an output sent back to the wallet.
type SelfSendType uint8

const (
	// SelfSendDummy is a zero-amount self-send.
	SelfSendDummy SelfSendType = 0

	// SelfSendChange is a change output.
	SelfSendChange SelfSendType = 1

	// SelfSendSelfSpend is a deliberate transfer to oneself.
	SelfSendSelfSpend SelfSendType = 2
)

// String returns the string representation of a self-send type.
func (t SelfSendType) String() string {
	switch t {
	case SelfSendDummy:
		return "dummy"

	case SelfSendChange:
		return "change"

	case SelfSendSelfSpend:
		return "self-spend"

	default:
		return fmt.Sprintf("unknown self-send type %d", uint8(t))
	}
}

// ExtraOutputType is the kind of output that must be added to a proposal set
// to finish it.
type ExtraOutputType uint8

const (
	// ExtraNormalDummy is a zero-amount output to a random recipient with
	// its own enote ephemeral pubkey.
	ExtraNormalDummy ExtraOutputType = iota

	// ExtraNormalSelfSendDummy is a zero-amount self-send with its own
	// enote ephemeral pubkey.
	ExtraNormalSelfSendDummy

	// ExtraNormalChange is a change output with its own enote ephemeral
	// pubkey.
	ExtraNormalChange

	// ExtraSpecialDummy is a zero-amount output to a random recipient
	// sharing the other output's enote ephemeral pubkey.
	ExtraSpecialDummy

	// ExtraSpecialSelfSendDummy is a zero-amount self-send sharing the
	// other output's enote ephemeral pubkey.
	ExtraSpecialSelfSendDummy

	// ExtraSpecialChange is a change output sharing the other output's
	// enote ephemeral pubkey.
	ExtraSpecialChange
)

// String returns the string representation of an extra output type.
func (t ExtraOutputType) String() string {
	switch t {
	case ExtraNormalDummy:
		return "normal dummy"

	case ExtraNormalSelfSendDummy:
		return "normal self-send dummy"

	case ExtraNormalChange:
		return "normal change"

	case ExtraSpecialDummy:
		return "special dummy"

	case ExtraSpecialSelfSendDummy:
		return "special self-send dummy"

	case ExtraSpecialChange:
		return "special change"

	default:
		return fmt.Sprintf("unknown extra output type %d", uint8(t))
	}
}

// AdditionalOutputType returns the output that has to be added to a set of
// numOutputs proposals so that the final transaction is well formed for the
// given change amount, or None if the set is already final.
//
// A finished transaction has at least two outputs and at least one
// self-send. A two-output transaction shares a single enote ephemeral pubkey
// between its outputs, and a larger one has a unique pubkey per output.
func AdditionalOutputType(numOutputs int, selfSendTypes []SelfSendType,
	pubkeysUnique bool,
	change spunit.Amount) (fn.Option[ExtraOutputType], error) {

	none := fn.None[ExtraOutputType]()

	if numOutputs == 0 {
		return none, ErrNoOutputs
	}

	if len(selfSendTypes) > numOutputs {
		return none, fmt.Errorf("%w: %d self-sends, %d outputs",
			ErrTooManySelfSends, len(selfSendTypes), numOutputs)
	}

	switch {
	case numOutputs == 1:
		switch {
		case change == 0 && len(selfSendTypes) == 1:
			return fn.Some(ExtraSpecialDummy), nil

		case change == 0:
			return fn.Some(ExtraSpecialSelfSendDummy), nil

		case len(selfSendTypes) == 1 &&
			selfSendTypes[0] == SelfSendChange:

			return none, ErrDoubleChange

		default:
			return fn.Some(ExtraSpecialChange), nil
		}

	case numOutputs == 2 && pubkeysUnique:
		switch {
		case change > 0:
			return fn.Some(ExtraNormalChange), nil

		case len(selfSendTypes) > 0:
			return fn.Some(ExtraNormalDummy), nil

		default:
			return fn.Some(ExtraNormalSelfSendDummy), nil
		}

	case numOutputs == 2:
		switch {
		case change > 0:
			return none, ErrSharedPubkeyChange

		case len(selfSendTypes) == 2 &&
			selfSendTypes[0] == selfSendTypes[1]:

			return none, fmt.Errorf("%w: both %v",
				ErrSharedPubkeySameSelfSend, selfSendTypes[0])

		case len(selfSendTypes) > 0:
			return none, nil

		default:
			return none, ErrSharedPubkeyNoSelfSend
		}

	default:
		if !pubkeysUnique {
			return none, fmt.Errorf("%w: %d outputs",
				ErrDuplicatePubkeys, numOutputs)
		}

		switch {
		case change > 0:
			return fn.Some(ExtraNormalChange), nil

		case len(selfSendTypes) > 0:
			return none, nil

		default:
			return fn.Some(ExtraNormalSelfSendDummy), nil
		}
	}
}
