// Copyright 2024 The go-ethereum-core Authors
// This file is part of the go-ethereum-core library.
//
// The go-ethereum-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum-core library. If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/rlp"
)

// Distinct error kinds for the thin transaction dispatch (spec 4.5, 7).
var (
	ErrEIP2718Disabled = errors.New("types: EIP-2718 typed transactions are not active on this chain")
	ErrUnknownTxType   = errors.New("types: unrecognized typed-transaction envelope")

	// ErrUnsupportedRequest preserves spec 9's open question: the source's
	// getTransactionClass(undefined, signed=true) path returns nothing with
	// an ambiguous intent. Rather than guess a dispatch, TransactionClass
	// returns this sentinel explicitly whenever kind is empty.
	ErrUnsupportedRequest = errors.New("types: transaction request does not resolve to a known class")
)

// legacyTxTypeThreshold is the leading-byte boundary spec 4.5 describes:
// values at or below it are a typed envelope, above it a legacy RLP
// transaction (the first byte of a legacy transaction's RLP list encoding
// is always > 0x7f).
const legacyTxTypeThreshold = 0x7F

// AccessListTxType is the sole typed envelope this thin factory recognizes
// (EIP-2930, spec 4.5's explicit "0x01 -> EIP-2930 decoder").
const AccessListTxType = 0x01

// DecodeOptions configures DecodeTx. EIP2718Active must be set by the
// caller's ChainParams-derived hardfork resolution; this package has no
// ChainParams dependency of its own.
type DecodeOptions struct {
	EIP2718Active bool
}

// DecodedTx is the thin factory's result: which envelope matched, the
// leading type byte (0 for legacy), and the still-undecoded payload: for
// a typed envelope, the bytes after the type byte; for a legacy
// transaction, the whole RLP list encoding including its list header.
// Full field decoding is out of scope (spec 1:
// "thin factory contract since it is shallow").
type DecodedTx struct {
	Type    byte
	Legacy  bool
	Payload []byte
}

// DecodeTx dispatches raw transaction bytes to the correct decode path by
// leading byte, per spec 4.5. It does not decode transaction fields beyond
// determining which envelope applies.
func DecodeTx(raw []byte, opts DecodeOptions) (*DecodedTx, error) {
	if len(raw) == 0 {
		return nil, ErrMalformedHeader
	}
	leading := raw[0]

	if leading > legacyTxTypeThreshold {
		kind, _, err := rlp.NewStream(bytes.NewReader(raw), 0).Kind()
		if err != nil || kind != rlp.List {
			return nil, ErrMalformedHeader
		}
		return &DecodedTx{Legacy: true, Payload: raw}, nil
	}

	if !opts.EIP2718Active {
		return nil, ErrEIP2718Disabled
	}

	switch leading {
	case AccessListTxType:
		return &DecodedTx{Type: leading, Payload: raw[1:]}, nil
	default:
		return nil, ErrUnknownTxType
	}
}

// TransactionClass mirrors spec 9's ambiguous source call,
// getTransactionClass(kind, signed) -- kind nil/empty with signed=true has
// no defined dispatch target. Per Design Note 9's open-question decision,
// an empty kind (whatever signed is) returns ErrUnsupportedRequest rather
// than silently picking a class. The known kinds "legacy", "eip2930" and
// "eip1559" are returned unchanged; any other kind returns
// ErrUnknownTxType.
func TransactionClass(kind string, signed bool) (string, error) {
	if kind == "" {
		return "", ErrUnsupportedRequest
	}
	switch kind {
	case "legacy", "eip2930", "eip1559":
		return kind, nil
	default:
		return "", ErrUnknownTxType
	}
}
