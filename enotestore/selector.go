// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package enotestore

import (
	"math/rand"
	"sort"

	"github.com/btcsuite/spwallet/inputselect"
	"github.com/btcsuite/spwallet/pkg/spunit"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// A compile time check to ensure the selectors implement the
// inputselect.InputSelector interface.
var _ inputselect.InputSelector = (*SimpleSelector)(nil)
var _ inputselect.InputSelector = (*Selector)(nil)

// ArrangeStrategy orders, shuffles or filters the eligible records of one
// kind before a selector proposes the first of them.
type ArrangeStrategy interface {
	// ArrangeRecords arranges the eligible records according to the
	// strategy. The fee rate and calculator price the inputs for
	// strategies that filter out uneconomical records.
	ArrangeRecords(eligible []ContextualRecord,
		feeRate spunit.FeePerWeight,
		feeCalc inputselect.FeeCalculator) []ContextualRecord
}

var (
	// ArrangeOrdered proposes records in the order they were stored.
	ArrangeOrdered ArrangeStrategy = &OrderedArranger{}

	// ArrangeLargestFirst always proposes the largest available record
	// next.
	ArrangeLargestFirst ArrangeStrategy = &LargestFirstArranger{}

	// ArrangeRandom proposes a random economical record next. This
	// prevents the creation of ever smaller records over time.
	ArrangeRandom ArrangeStrategy = &RandomArranger{}
)

// OrderedArranger keeps the store order.
type OrderedArranger struct{}

// ArrangeRecords returns the eligible records unchanged.
func (*OrderedArranger) ArrangeRecords(eligible []ContextualRecord,
	_ spunit.FeePerWeight, _ inputselect.FeeCalculator) []ContextualRecord {

	return eligible
}

// LargestFirstArranger sorts records from the largest amount down.
type LargestFirstArranger struct{}

// ArrangeRecords sorts the eligible records by decreasing amount. Records
// with equal amounts keep their store order.
func (*LargestFirstArranger) ArrangeRecords(eligible []ContextualRecord,
	_ spunit.FeePerWeight, _ inputselect.FeeCalculator) []ContextualRecord {

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Amount > eligible[j].Amount
	})

	return eligible
}

// RandomArranger shuffles the records that pay for themselves.
type RandomArranger struct{}

// ArrangeRecords drops the records that do not cover their own marginal fee
// and shuffles the rest.
func (*RandomArranger) ArrangeRecords(eligible []ContextualRecord,
	feeRate spunit.FeePerWeight,
	feeCalc inputselect.FeeCalculator) []ContextualRecord {

	positivelyYielding := make([]ContextualRecord, 0, len(eligible))
	for _, rec := range eligible {
		if !inputYieldsPositively(rec.Record, feeRate, feeCalc) {
			continue
		}

		positivelyYielding = append(positivelyYielding, rec)
	}

	rand.Shuffle(len(positivelyYielding), func(i, j int) {
		positivelyYielding[i], positivelyYielding[j] =
			positivelyYielding[j], positivelyYielding[i]
	})

	return positivelyYielding
}

// inputYieldsPositively returns whether the record is worth more than the
// fee of adding it as the only input of its kind to a one-output
// transaction. The marginal fee of a later input can differ, so the result
// is a best-case estimate.
func inputYieldsPositively(rec inputselect.Record,
	feeRate spunit.FeePerWeight, feeCalc inputselect.FeeCalculator) bool {

	var legacy, seraphis int
	if rec.Kind == inputselect.KindLegacy {
		legacy = 1
	} else {
		seraphis = 1
	}

	base := feeCalc.ComputeFee(feeRate, 0, 0, 1)
	withInput := feeCalc.ComputeFee(feeRate, legacy, seraphis, 1)
	if withInput < base {
		return true
	}

	return withInput-base < rec.Amount
}

// unseenLocked returns true if neither set holds the record. A legacy record
// also counts as seen once any record sharing its onetime address is in
// either set, since both would spend the same key image on chain. The
// store's read lock must be held.
func (s *Store) unseenLocked(rec ContextualRecord, added,
	candidates *inputselect.InputSet) bool {

	seen := func(keyImage inputselect.KeyImage) bool {
		return added.Contains(keyImage) ||
			candidates.Contains(keyImage)
	}

	if seen(rec.KeyImage) {
		return false
	}
	if rec.Kind != inputselect.KindLegacy {
		return true
	}

	for dup := range s.legacyByAddress[rec.OnetimeAddress] {
		if seen(dup) {
			return false
		}
	}

	return true
}

// SimpleSelector proposes the unspent records of the store in store order,
// legacy records first.
type SimpleSelector struct {
	store *Store
}

// NewSimpleSelector returns a simple selector over the store.
func NewSimpleSelector(store *Store) *SimpleSelector {
	return &SimpleSelector{store: store}
}

// TrySelect returns the first unspent record that has not been seen by the
// current selection.
func (s *SimpleSelector) TrySelect(_ spunit.WideAmount, added,
	candidates *inputselect.InputSet) fn.Option[inputselect.Record] {

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	for _, kind := range inputselect.Kinds {
		for _, keyImage := range s.store.order[kind] {
			rec := s.store.records[keyImage]
			if rec.Spent ||
				!s.store.unseenLocked(*rec, added, candidates) {

				continue
			}

			return fn.Some(rec.Record)
		}
	}

	return fn.None[inputselect.Record]()
}

// SelectorConfig configures a Selector.
type SelectorConfig struct {
	// Strategy arranges the eligible records of each kind. Defaults to
	// ArrangeOrdered.
	Strategy ArrangeStrategy

	// Origins is the set of origin statuses a record must have to be
	// selected. Defaults to every status.
	Origins fn.Set[OriginStatus]

	// FeeRate and FeeCalc price inputs for strategies that filter out
	// uneconomical records. A nil FeeCalc prices every input at zero.
	FeeRate spunit.FeePerWeight
	FeeCalc inputselect.FeeCalculator
}

// Selector proposes unspent records of allowed origin, arranged by a
// strategy. Of several legacy records sharing a onetime address, only the
// ones with the highest amount are proposed.
type Selector struct {
	store *Store
	cfg   SelectorConfig
}

// NewSelector returns a selector over the store.
func NewSelector(store *Store, cfg SelectorConfig) *Selector {
	if cfg.Strategy == nil {
		cfg.Strategy = ArrangeOrdered
	}
	if cfg.Origins == nil {
		cfg.Origins = AllOrigins()
	}
	if cfg.FeeCalc == nil {
		cfg.FeeCalc = inputselect.FeeCalculatorFunc(zeroFee)
	}

	return &Selector{store: store, cfg: cfg}
}

// TrySelect returns the first record the strategy arranges among the
// eligible legacy records, or if there are none, among the eligible seraphis
// records.
func (s *Selector) TrySelect(desiredTotal spunit.WideAmount, added,
	candidates *inputselect.InputSet) fn.Option[inputselect.Record] {

	for _, kind := range inputselect.Kinds {
		eligible := s.eligible(kind, added, candidates)
		if len(eligible) == 0 {
			continue
		}

		eligible = s.cfg.Strategy.ArrangeRecords(
			eligible, s.cfg.FeeRate, s.cfg.FeeCalc,
		)
		if len(eligible) == 0 {
			continue
		}

		log.Tracef("Proposing %v toward %v", eligible[0].Record,
			desiredTotal)

		return fn.Some(eligible[0].Record)
	}

	return fn.None[inputselect.Record]()
}

// eligible returns the unspent, unseen records of the kind with an allowed
// origin, applying the legacy duplicate rule.
func (s *Selector) eligible(kind inputselect.Kind, added,
	candidates *inputselect.InputSet) []ContextualRecord {

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var eligible []ContextualRecord
	for _, rec := range s.store.recordsLocked(kind) {
		if rec.Spent || !s.cfg.Origins.Contains(rec.Origin) ||
			!s.store.unseenLocked(rec, added, candidates) {

			continue
		}

		if kind == inputselect.KindLegacy {
			highest, err := s.store.legacyHasHighestAmountLocked(
				rec.KeyImage, s.cfg.Origins,
			)
			if err != nil {
				log.Errorf("Unable to check legacy duplicates "+
					"of %v: %v", rec.KeyImage, err)

				continue
			}
			if !highest {
				continue
			}
		}

		eligible = append(eligible, rec)
	}

	return eligible
}

// zeroFee is a fee calculator that charges nothing.
func zeroFee(spunit.FeePerWeight, int, int, int) spunit.Amount {
	return 0
}
