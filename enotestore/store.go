// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package enotestore is an in-memory store of the wallet's spendable
// records, and the input selectors that draw candidates from it.
package enotestore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/spwallet/inputselect"
	"github.com/btcsuite/spwallet/pkg/spunit"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrDuplicateRecord is returned when a record with a key image that
	// is already stored is added.
	ErrDuplicateRecord = errors.New("record already stored")

	// ErrRecordNotFound is returned when no record with the requested key
	// image is stored.
	ErrRecordNotFound = errors.New("record not found")

	// ErrOriginNotAllowed is returned when the duplicate rule is asked
	// about a record whose own origin is excluded from the check.
	ErrOriginNotAllowed = errors.New("record origin not allowed")
)

// OriginStatus is how far along a record's creating transaction is.
type OriginStatus uint8

const (
	// OriginOffchain is a record from a transaction that has not been
	// broadcast.
	OriginOffchain OriginStatus = iota

	// OriginUnconfirmed is a record from a transaction in the mempool.
	OriginUnconfirmed

	// OriginOnchain is a record from a mined transaction.
	OriginOnchain
)

// String returns the string representation of an origin status.
func (o OriginStatus) String() string {
	switch o {
	case OriginOffchain:
		return "offchain"

	case OriginUnconfirmed:
		return "unconfirmed"

	case OriginOnchain:
		return "onchain"

	default:
		return fmt.Sprintf("unknown origin %d", uint8(o))
	}
}

// AllOrigins is the set of every origin status.
func AllOrigins() fn.Set[OriginStatus] {
	return fn.NewSet(OriginOffchain, OriginUnconfirmed, OriginOnchain)
}

// OnetimeAddress is the destination of a record. Legacy records can share a
// onetime address when a sender reuses it.
type OnetimeAddress [32]byte

// ContextualRecord is a record together with what the wallet knows about
// where it came from and whether it has been spent.
type ContextualRecord struct {
	inputselect.Record

	// OnetimeAddress is the record's destination.
	OnetimeAddress OnetimeAddress

	// Origin is the status of the transaction that created the record.
	Origin OriginStatus

	// BlockHeight is the height the record was mined at, or -1 if it is
	// not on chain.
	BlockHeight int32

	// Spent is true once the record has been used as an input.
	Spent bool
}

// Store holds the wallet's records in the order they were added. It is safe
// for concurrent use.
type Store struct {
	mu sync.RWMutex

	// records maps key images to their records.
	records map[inputselect.KeyImage]*ContextualRecord

	// order lists the key images of each kind in insertion order.
	order map[inputselect.Kind][]inputselect.KeyImage

	// legacyByAddress groups the key images of legacy records by their
	// onetime address.
	legacyByAddress map[OnetimeAddress]fn.Set[inputselect.KeyImage]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		records: make(map[inputselect.KeyImage]*ContextualRecord),
		order:   make(map[inputselect.Kind][]inputselect.KeyImage),
		legacyByAddress: make(
			map[OnetimeAddress]fn.Set[inputselect.KeyImage],
		),
	}
}

// AddRecord stores a new record.
func (s *Store) AddRecord(rec ContextualRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.KeyImage]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateRecord, rec.KeyImage)
	}

	stored := rec
	s.records[rec.KeyImage] = &stored
	s.order[rec.Kind] = append(s.order[rec.Kind], rec.KeyImage)

	if rec.Kind == inputselect.KindLegacy {
		dups, ok := s.legacyByAddress[rec.OnetimeAddress]
		if !ok {
			dups = fn.NewSet[inputselect.KeyImage]()
			s.legacyByAddress[rec.OnetimeAddress] = dups
		}
		dups.Add(rec.KeyImage)
	}

	log.Debugf("Stored %v record with amount %v (origin=%v)", rec.Kind,
		rec.Amount, rec.Origin)

	return nil
}

// SetSpentStatus marks a record as spent or unspent.
func (s *Store) SetSpentStatus(keyImage inputselect.KeyImage,
	spent bool) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[keyImage]
	if !ok {
		return fmt.Errorf("%w: %v", ErrRecordNotFound, keyImage)
	}

	rec.Spent = spent

	return nil
}

// Record returns the record with the given key image.
func (s *Store) Record(keyImage inputselect.KeyImage) (ContextualRecord,
	error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[keyImage]
	if !ok {
		return ContextualRecord{}, fmt.Errorf("%w: %v",
			ErrRecordNotFound, keyImage)
	}

	return *rec, nil
}

// Records returns a copy of every record of the given kind in the order
// they were added.
func (s *Store) Records(kind inputselect.Kind) []ContextualRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.recordsLocked(kind)
}

func (s *Store) recordsLocked(kind inputselect.Kind) []ContextualRecord {
	keyImages := s.order[kind]
	records := make([]ContextualRecord, 0, len(keyImages))
	for _, keyImage := range keyImages {
		records = append(records, *s.records[keyImage])
	}

	return records
}

// Balance returns the total amount of the unspent records of the given kind
// whose origin is in origins.
func (s *Store) Balance(kind inputselect.Kind,
	origins fn.Set[OriginStatus]) spunit.WideAmount {

	s.mu.RLock()
	defer s.mu.RUnlock()

	var balance spunit.WideAmount
	for _, keyImage := range s.order[kind] {
		rec := s.records[keyImage]
		if rec.Spent || !origins.Contains(rec.Origin) {
			continue
		}

		balance = balance.Add(rec.Amount)
	}

	return balance
}

// LegacyHasHighestAmount reports whether the legacy record with the given
// key image has the highest amount among the legacy records that share its
// onetime address and have an origin in origins. Only such a record should
// be spent, since spending one of the others burns the difference. Records
// tied for the highest amount all qualify.
func (s *Store) LegacyHasHighestAmount(keyImage inputselect.KeyImage,
	origins fn.Set[OriginStatus]) (bool, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.legacyHasHighestAmountLocked(keyImage, origins)
}

func (s *Store) legacyHasHighestAmountLocked(keyImage inputselect.KeyImage,
	origins fn.Set[OriginStatus]) (bool, error) {

	rec, ok := s.records[keyImage]
	if !ok || rec.Kind != inputselect.KindLegacy {
		return false, fmt.Errorf("%w: legacy %v", ErrRecordNotFound,
			keyImage)
	}

	if !origins.Contains(rec.Origin) {
		return false, fmt.Errorf("%w: %v", ErrOriginNotAllowed,
			rec.Origin)
	}

	var highest spunit.Amount
	for dup := range s.legacyByAddress[rec.OnetimeAddress] {
		dupRec := s.records[dup]
		if !origins.Contains(dupRec.Origin) {
			continue
		}

		if dupRec.Amount > highest {
			highest = dupRec.Amount
		}
	}

	return rec.Amount == highest, nil
}
