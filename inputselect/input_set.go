// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inputselect

import (
	"github.com/btcsuite/spwallet/pkg/spunit"
	"github.com/google/btree"
)

// btreeDegree is the degree of the b-trees backing each pool.
const btreeDegree = 8

// poolEntry is a record stored in a pool. Entries are ordered by amount, and
// entries with the same amount by the order they were inserted in.
type poolEntry struct {
	record Record
	seq    uint64
}

// lessEntry orders pool entries by (amount, insertion sequence).
func lessEntry(a, b poolEntry) bool {
	if a.record.Amount != b.record.Amount {
		return a.record.Amount < b.record.Amount
	}

	return a.seq < b.seq
}

// recordPool is an ordered multimap from amount to record for a single kind.
type recordPool struct {
	tree    *btree.BTreeG[poolEntry]
	nextSeq uint64
}

func newRecordPool() *recordPool {
	return &recordPool{
		tree: btree.NewG(btreeDegree, lessEntry),
	}
}

func (p *recordPool) insert(rec Record) {
	p.tree.ReplaceOrInsert(poolEntry{record: rec, seq: p.nextSeq})
	p.nextSeq++
}

// removeAmount removes the earliest inserted record with exactly the given
// amount.
func (p *recordPool) removeAmount(amount spunit.Amount) (Record, bool) {
	var (
		found poolEntry
		ok    bool
	)
	p.tree.AscendGreaterOrEqual(
		poolEntry{record: Record{Amount: amount}},
		func(entry poolEntry) bool {
			if entry.record.Amount == amount {
				found, ok = entry, true
			}

			return false
		},
	)
	if !ok {
		return Record{}, false
	}

	p.tree.Delete(found)

	return found.record, true
}

// InputSet is a set of records split by kind, each kind ordered by amount.
// Input selection keeps two of them: the added set, which is the current
// tentative solution, and the candidate set, which holds records that are
// known but not part of the solution.
//
// An InputSet is not safe for concurrent use.
type InputSet struct {
	pools [numKinds]*recordPool

	// members counts the records in the set by key image.
	members map[KeyImage]int
}

// NewInputSet returns an empty input set.
func NewInputSet() *InputSet {
	s := &InputSet{
		members: make(map[KeyImage]int),
	}
	for _, kind := range Kinds {
		s.pools[kind] = newRecordPool()
	}

	return s
}

// NewInputSetFromRecords returns an input set holding the given records.
func NewInputSetFromRecords(records ...Record) *InputSet {
	s := NewInputSet()
	for _, rec := range records {
		s.Insert(rec)
	}

	return s
}

// Insert adds a record to the set under its kind.
func (s *InputSet) Insert(rec Record) {
	s.pools[rec.Kind].insert(rec)
	s.members[rec.KeyImage]++
}

// Contains returns true if a record with the given key image is in the set.
func (s *InputSet) Contains(keyImage KeyImage) bool {
	return s.members[keyImage] > 0
}

// Count returns the number of records of the given kind.
func (s *InputSet) Count(kind Kind) int {
	return s.pools[kind].tree.Len()
}

// TotalCount returns the number of records of all kinds.
func (s *InputSet) TotalCount() int {
	total := 0
	for _, kind := range Kinds {
		total += s.Count(kind)
	}

	return total
}

// TotalAmount returns the sum of the amounts of all records in the set.
func (s *InputSet) TotalAmount() spunit.WideAmount {
	var sum spunit.WideAmount
	for _, kind := range Kinds {
		s.pools[kind].tree.Ascend(func(entry poolEntry) bool {
			sum = sum.Add(entry.record.Amount)
			return true
		})
	}

	return sum
}

// WorstAmount returns the smallest amount of the given kind, or zero if the
// set has no records of that kind.
func (s *InputSet) WorstAmount(kind Kind) spunit.Amount {
	entry, ok := s.pools[kind].tree.Min()
	if !ok {
		return 0
	}

	return entry.record.Amount
}

// BestAmount returns the largest amount of the given kind, or zero if the
// set has no records of that kind.
func (s *InputSet) BestAmount(kind Kind) spunit.Amount {
	entry, ok := s.pools[kind].tree.Max()
	if !ok {
		return 0
	}

	return entry.record.Amount
}

// Records returns the records of the given kind ordered by increasing
// amount.
func (s *InputSet) Records(kind Kind) []Record {
	records := make([]Record, 0, s.Count(kind))
	s.pools[kind].tree.Ascend(func(entry poolEntry) bool {
		records = append(records, entry.record)
		return true
	})

	return records
}

// Descend calls visit for each record of the given kind from the largest
// amount downward until visit returns false.
func (s *InputSet) Descend(kind Kind, visit func(Record) bool) {
	s.pools[kind].tree.Descend(func(entry poolEntry) bool {
		return visit(entry.record)
	})
}

// Clone returns a copy of the set. Modifying the copy does not modify the
// original.
func (s *InputSet) Clone() *InputSet {
	clone := NewInputSet()
	for _, kind := range Kinds {
		clone.pools[kind] = &recordPool{
			tree:    s.pools[kind].tree.Clone(),
			nextSeq: s.pools[kind].nextSeq,
		}
	}
	for keyImage, count := range s.members {
		clone.members[keyImage] = count
	}

	return clone
}

// removeAmount removes the earliest inserted record of the given kind with
// exactly the given amount.
func (s *InputSet) removeAmount(kind Kind, amount spunit.Amount) (Record,
	bool) {

	rec, ok := s.pools[kind].removeAmount(amount)
	if !ok {
		return Record{}, false
	}

	s.members[rec.KeyImage]--
	if s.members[rec.KeyImage] == 0 {
		delete(s.members, rec.KeyImage)
	}

	return rec, true
}

// removeWorst removes a record with the smallest amount of the given kind.
func (s *InputSet) removeWorst(kind Kind) (Record, bool) {
	if s.Count(kind) == 0 {
		return Record{}, false
	}

	return s.removeAmount(kind, s.WorstAmount(kind))
}

// removeBest removes a record with the largest amount of the given kind.
func (s *InputSet) removeBest(kind Kind) (Record, bool) {
	if s.Count(kind) == 0 {
		return Record{}, false
	}

	return s.removeAmount(kind, s.BestAmount(kind))
}

// moveWorst moves a record with the smallest amount of the given kind from
// one set to another.
func moveWorst(kind Kind, from, to *InputSet) bool {
	rec, ok := from.removeWorst(kind)
	if !ok {
		return false
	}

	to.Insert(rec)

	return true
}

// moveBest moves a record with the largest amount of the given kind from one
// set to another.
func moveBest(kind Kind, from, to *InputSet) bool {
	rec, ok := from.removeBest(kind)
	if !ok {
		return false
	}

	to.Insert(rec)

	return true
}
