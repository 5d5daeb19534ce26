// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package outputctx describes the outputs of a transaction being funded, in
// the form input selection needs: their total amount and how many outputs
// the transaction ends up with with and without a change output.
package outputctx

import (
	"fmt"

	"github.com/btcsuite/spwallet/inputselect"
	"github.com/btcsuite/spwallet/pkg/spunit"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// A compile time check to ensure the contexts implement the
// inputselect.OutputSetContext interface.
var _ inputselect.OutputSetContext = (*Simple)(nil)
var _ inputselect.OutputSetContext = (*V1)(nil)

// Simple is an output set with a fixed number of extra outputs when there
// is change.
type Simple struct {
	total                       spunit.WideAmount
	numOutputs                  int
	additionalOutputsWithChange int
}

// NewSimple returns a context for the given output amounts. A transaction
// with change has additionalOutputsWithChange more outputs than one
// without.
func NewSimple(amounts []spunit.Amount,
	additionalOutputsWithChange int) *Simple {

	var total spunit.WideAmount
	for _, amount := range amounts {
		total = total.Add(amount)
	}

	return &Simple{
		total:                       total,
		numOutputs:                  len(amounts),
		additionalOutputsWithChange: additionalOutputsWithChange,
	}
}

// TotalAmount returns the sum of the output amounts.
func (s *Simple) TotalAmount() spunit.WideAmount {
	return s.total
}

// NumOutputsNoChange returns the number of output amounts.
func (s *Simple) NumOutputsNoChange() int {
	return s.numOutputs
}

// NumOutputsWithChange returns the number of output amounts plus the
// additional outputs.
func (s *Simple) NumOutputsWithChange() int {
	return s.numOutputs + s.additionalOutputsWithChange
}

// EphemeralPubkey is the enote ephemeral pubkey of a payment proposal.
type EphemeralPubkey [32]byte

// PaymentProposal is a payment to another wallet.
type PaymentProposal struct {
	// Amount is the value sent.
	Amount spunit.Amount

	// EphemeralPubkey is the enote ephemeral pubkey of the output.
	EphemeralPubkey EphemeralPubkey
}

// SelfSendProposal is a payment back to the sending wallet.
type SelfSendProposal struct {
	// Amount is the value sent.
	Amount spunit.Amount

	// EphemeralPubkey is the enote ephemeral pubkey of the output.
	EphemeralPubkey EphemeralPubkey

	// Type is the purpose of the self-send.
	Type SelfSendType
}

// V1 is the output set of a seraphis transaction built from payment
// proposals. The extra output is worked out from the proposals when the
// context is created.
type V1 struct {
	total         spunit.WideAmount
	numOutputs    int
	pubkeysUnique bool
	selfSendTypes []SelfSendType

	extraNoChange   fn.Option[ExtraOutputType]
	extraWithChange fn.Option[ExtraOutputType]
}

// NewV1 returns the context of the given proposals. It fails if the
// proposals cannot be finished into a valid transaction either with or
// without change.
func NewV1(normal []PaymentProposal,
	selfSends []SelfSendProposal) (*V1, error) {

	numOutputs := len(normal) + len(selfSends)

	pubkeys := fn.NewSet[EphemeralPubkey]()
	selfSendTypes := make([]SelfSendType, 0, len(selfSends))

	var total spunit.WideAmount
	for _, proposal := range normal {
		pubkeys.Add(proposal.EphemeralPubkey)
		total = total.Add(proposal.Amount)
	}
	for _, proposal := range selfSends {
		pubkeys.Add(proposal.EphemeralPubkey)
		selfSendTypes = append(selfSendTypes, proposal.Type)
		total = total.Add(proposal.Amount)
	}

	pubkeysUnique := len(pubkeys) == numOutputs

	extraNoChange, err := AdditionalOutputType(
		numOutputs, selfSendTypes, pubkeysUnique, 0,
	)
	if err != nil {
		return nil, fmt.Errorf("zero change: %w", err)
	}

	extraWithChange, err := AdditionalOutputType(
		numOutputs, selfSendTypes, pubkeysUnique, 1,
	)
	if err != nil {
		return nil, fmt.Errorf("non-zero change: %w", err)
	}

	return &V1{
		total:           total,
		numOutputs:      numOutputs,
		pubkeysUnique:   pubkeysUnique,
		selfSendTypes:   selfSendTypes,
		extraNoChange:   extraNoChange,
		extraWithChange: extraWithChange,
	}, nil
}

// TotalAmount returns the sum of all proposal amounts.
func (v *V1) TotalAmount() spunit.WideAmount {
	return v.total
}

// NumOutputsNoChange returns the number of proposals, plus one if the set
// needs an extra output without change.
func (v *V1) NumOutputsNoChange() int {
	return v.numOutputs + optionCount(v.extraNoChange)
}

// NumOutputsWithChange returns the number of proposals, plus one if the set
// needs an extra output with change.
func (v *V1) NumOutputsWithChange() int {
	return v.numOutputs + optionCount(v.extraWithChange)
}

// ExtraOutput returns the output that finishes the set for the given change
// amount, or None.
func (v *V1) ExtraOutput(change spunit.Amount) fn.Option[ExtraOutputType] {
	if change == 0 {
		return v.extraNoChange
	}

	return v.extraWithChange
}

// PubkeysUnique returns true if no two proposals share an enote ephemeral
// pubkey.
func (v *V1) PubkeysUnique() bool {
	return v.pubkeysUnique
}

func optionCount(o fn.Option[ExtraOutputType]) int {
	if o.IsSome() {
		return 1
	}

	return 0
}
