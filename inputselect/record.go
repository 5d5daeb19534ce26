// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inputselect

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/spwallet/pkg/spunit"
)

// Kind is the format of a spendable record. Records of different kinds are
// spent with different proof systems, so they are weighted separately by the
// fee model and can never be interchanged.
type Kind uint8

const (
	// KindLegacy is a record created by the pre-seraphis protocol.
	KindLegacy Kind = iota

	// KindSeraphis is a record created by the seraphis protocol.
	KindSeraphis

	// numKinds is the number of record kinds.
	numKinds
)

// Kinds lists every record kind in the fixed order the selection passes
// visit them.
var Kinds = [numKinds]Kind{KindLegacy, KindSeraphis}

// String returns the string representation of a record kind.
func (k Kind) String() string {
	switch k {
	case KindLegacy:
		return "legacy"

	case KindSeraphis:
		return "seraphis"

	default:
		return fmt.Sprintf("unknown kind %d", uint8(k))
	}
}

// KeyImage is the spend-authorization tag of a record. Every record has a
// unique key image, so it doubles as the record's identity.
type KeyImage [32]byte

// String returns the hex encoding of the key image.
func (k KeyImage) String() string {
	return hex.EncodeToString(k[:])
}

// Record is a spendable enote as seen by input selection. Only the amount
// and identity of a record matter here; the spent status and everything
// cryptographic is owned by the enote store.
type Record struct {
	// Kind is the record's format.
	Kind Kind

	// Amount is the value of the record.
	Amount spunit.Amount

	// KeyImage identifies the record.
	KeyImage KeyImage
}

// String returns a short description of the record.
func (r Record) String() string {
	return fmt.Sprintf("%v:%d:%x", r.Kind, r.Amount, r.KeyImage[:4])
}
