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

// Package clique implements the proof-of-authority extraData layout,
// epoch-transition detection, and seal signature recovery (spec 4.4).
package clique

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/jackyl14/go-ethereum-core/core/types"
	"github.com/jackyl14/go-ethereum-core/params"
)

// ErrNotClique is raised by every operation in this package when called
// against a ChainParams not configured for the clique algorithm.
var ErrNotClique = errors.New("clique: header's chain is not configured for clique consensus")

// ErrNotEpochTransition is raised by EpochTransitionSigners when the
// header is not a checkpoint block.
var ErrNotEpochTransition = errors.New("clique: header is not an epoch transition block")

func requireClique(cp params.ChainParams) error {
	if cp.ConsensusAlgorithm() != params.Clique {
		return ErrNotClique
	}
	return nil
}

// IsEpochTransition reports whether header sits on a signer-list
// checkpoint boundary.
func IsEpochTransition(cp params.ChainParams, header *types.Header) (bool, error) {
	if err := requireClique(cp); err != nil {
		return false, err
	}
	epoch := cp.ConsensusConfig().Epoch
	if epoch == 0 {
		return false, nil
	}
	number := header.Number()
	return new(big.Int).Mod(number, new(big.Int).SetUint64(epoch)).Sign() == 0, nil
}

// ExtraVanity returns the first CliqueExtraVanity bytes of extraData.
func ExtraVanity(cp params.ChainParams, header *types.Header) ([]byte, error) {
	if err := requireClique(cp); err != nil {
		return nil, err
	}
	extra := header.ExtraData()
	if len(extra) < types.CliqueExtraVanity {
		return nil, types.ErrMalformedHeader
	}
	return extra[:types.CliqueExtraVanity], nil
}

// ExtraSeal returns the last CliqueExtraSeal bytes of extraData.
func ExtraSeal(cp params.ChainParams, header *types.Header) ([]byte, error) {
	if err := requireClique(cp); err != nil {
		return nil, err
	}
	extra := header.ExtraData()
	if len(extra) < types.CliqueExtraSeal {
		return nil, types.ErrMalformedHeader
	}
	return extra[len(extra)-types.CliqueExtraSeal:], nil
}

// EpochTransitionSigners splits the validator-list section of extraData
// (between the vanity prefix and the seal suffix) into 20-byte signer
// addresses, in order (spec 4.4).
func EpochTransitionSigners(cp params.ChainParams, header *types.Header) ([]common.Address, error) {
	if err := requireClique(cp); err != nil {
		return nil, err
	}
	isEpoch, err := IsEpochTransition(cp, header)
	if err != nil {
		return nil, err
	}
	if !isEpoch {
		return nil, ErrNotEpochTransition
	}
	extra := header.ExtraData()
	minLen := types.CliqueExtraVanity + types.CliqueExtraSeal
	if len(extra) < minLen {
		return nil, types.ErrMalformedHeader
	}
	body := extra[types.CliqueExtraVanity : len(extra)-types.CliqueExtraSeal]
	if len(body)%common.AddressLength != 0 {
		return nil, types.ErrMalformedHeader
	}
	signers := make([]common.Address, 0, len(body)/common.AddressLength)
	for i := 0; i < len(body); i += common.AddressLength {
		signers = append(signers, common.BytesToAddress(body[i:i+common.AddressLength]))
	}
	return signers, nil
}

// SignatureToAddress splits the seal into r, s, v, normalizes the
// recovery byte to a raw recovery id (a v of 27 or more has 27
// subtracted; a smaller v is used as is), and ECDSA-recovers the signing
// address from the header hash (spec 4.4).
func SignatureToAddress(cp params.ChainParams, header *types.Header) (common.Address, error) {
	if err := requireClique(cp); err != nil {
		return common.Address{}, err
	}
	seal, err := ExtraSeal(cp, header)
	if err != nil {
		return common.Address{}, err
	}
	sig := make([]byte, 65)
	copy(sig, seal)
	// Recovery libraries (github.com/ethereum/go-ethereum/crypto) expect
	// the recovery id in [0,3] at sig[64]; spec 4.4's "+27" produces the
	// legacy Ethereum v value, so undo the offset before recovering.
	sig[64] = seal[64]
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pubkey, err := crypto.SigToPub(header.Hash().Bytes(), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}

// VerifySignature reports whether the header's recovered signer is a
// member of signerList.
func VerifySignature(cp params.ChainParams, header *types.Header, signerList []common.Address) (bool, error) {
	signer, err := SignatureToAddress(cp, header)
	if err != nil {
		return false, err
	}
	for _, s := range signerList {
		if s == signer {
			return true, nil
		}
	}
	return false, nil
}
