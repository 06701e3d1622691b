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

// Package validator implements the header consensus checks that stitch
// together HeaderCodec, DifficultyEngine, and CliqueRules into the single
// ordered validate() contract of spec 4.2.
package validator

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jackyl14/go-ethereum-core/consensus/clique"
	"github.com/jackyl14/go-ethereum-core/consensus/ethash"
	"github.com/jackyl14/go-ethereum-core/core/types"
	"github.com/jackyl14/go-ethereum-core/params"
)

// Distinct error kinds, spec 7.
var (
	ErrMissingParent          = errors.New("validator: missing parent header")
	ErrInvalidNumber          = errors.New("validator: number is not parent.number + 1")
	ErrInvalidTimestamp       = errors.New("validator: timestamp does not strictly exceed parent timestamp")
	ErrInvalidCliquePeriod    = errors.New("validator: timestamp violates the clique minimum period")
	ErrInvalidCliqueExtraData = errors.New("validator: clique extraData violates the epoch-transition layout")
	ErrInvalidCliqueCoinbase  = errors.New("validator: epoch-transition header must have a zero coinbase")
	ErrInvalidCliqueMixHash   = errors.New("validator: epoch-transition header must have a zero mixHash")
	ErrInvalidDifficulty      = errors.New("validator: difficulty does not match the canonical value")
	ErrInvalidUncleDistance   = errors.New("validator: uncle is too close to or too far from its including block")
	ErrInvalidExtraDataSize   = errors.New("validator: extraData exceeds the configured maximum size")
)

var (
	big1 = big.NewInt(1)
	big8 = big.NewInt(8)
)

// HeaderChain is the blockchain collaborator the validator depends on: the
// sole contract used is "look up a header by its hash" (spec 1).
type HeaderChain interface {
	GetHeader(hash common.Hash) (*types.Header, bool)
}

const cliqueExtraMinLen = types.CliqueExtraVanity + types.CliqueExtraSeal

// Validate runs the ordered checks of spec 4.2 against header, resolving
// its parent through chain. uncleHeight is the including block's number
// when header is being validated as an uncle; pass nil otherwise.
func Validate(cp params.ChainParams, header *types.Header, chain HeaderChain, uncleHeight *big.Int) error {
	if header.IsGenesis() {
		return nil
	}

	if err := checkExtraDataBound(cp, header); err != nil {
		return err
	}

	parent, ok := chain.GetHeader(header.ParentHash())
	if !ok {
		return ErrMissingParent
	}

	if err := checkNumber(header, parent); err != nil {
		return err
	}
	if err := checkTimestamp(header, parent); err != nil {
		return err
	}
	if cp.ConsensusAlgorithm() == params.Clique {
		if err := checkCliquePeriod(cp, header, parent); err != nil {
			return err
		}
	}
	if cp.ConsensusType() == params.ConsensusPoW {
		if err := checkDifficulty(cp, header, parent); err != nil {
			return err
		}
	}
	if err := ethash.VerifyGasLimit(cp, header, parent); err != nil {
		return err
	}
	if uncleHeight != nil {
		if err := checkUncleDistance(parent, uncleHeight); err != nil {
			return err
		}
	}
	return nil
}

func checkExtraDataBound(cp params.ChainParams, header *types.Header) error {
	if cp.ConsensusAlgorithm() != params.Clique {
		maxSize, err := cp.ParamByHardfork(params.SectionVM, params.NameVMMaxExtraDataSize, header.Hardfork())
		if err != nil {
			return err
		}
		if int64(len(header.ExtraData())) > maxSize.Int64() {
			return ErrInvalidExtraDataSize
		}
		return nil
	}

	isEpoch, err := clique.IsEpochTransition(cp, header)
	if err != nil {
		return err
	}
	extra := header.ExtraData()
	if !isEpoch {
		if len(extra) != cliqueExtraMinLen {
			return ErrInvalidCliqueExtraData
		}
		return nil
	}
	if (len(extra)-cliqueExtraMinLen)%common.AddressLength != 0 {
		return ErrInvalidCliqueExtraData
	}
	if header.Coinbase() != (common.Address{}) {
		return ErrInvalidCliqueCoinbase
	}
	if header.MixHash() != (common.Hash{}) {
		return ErrInvalidCliqueMixHash
	}
	return nil
}

func checkNumber(header, parent *types.Header) error {
	want := new(big.Int).Add(parent.Number(), big1)
	if header.Number().Cmp(want) != 0 {
		return ErrInvalidNumber
	}
	return nil
}

func checkTimestamp(header, parent *types.Header) error {
	if header.Timestamp().Cmp(parent.Timestamp()) <= 0 {
		return ErrInvalidTimestamp
	}
	return nil
}

func checkCliquePeriod(cp params.ChainParams, header, parent *types.Header) error {
	period := new(big.Int).SetUint64(cp.ConsensusConfig().Period)
	threshold := new(big.Int).Add(parent.Timestamp(), period)
	if threshold.Cmp(header.Timestamp()) > 0 {
		return ErrInvalidCliquePeriod
	}
	return nil
}

func checkDifficulty(cp params.ChainParams, header, parent *types.Header) error {
	canonical, err := ethash.CalcDifficulty(cp, header, parent)
	if err != nil {
		return err
	}
	if canonical.Cmp(header.Difficulty()) != 0 {
		return ErrInvalidDifficulty
	}
	return nil
}

func checkUncleDistance(parent *types.Header, uncleHeight *big.Int) error {
	diff := new(big.Int).Sub(uncleHeight, parent.Number())
	if diff.Cmp(big1) <= 0 || diff.Cmp(big8) >= 0 {
		return ErrInvalidUncleDistance
	}
	return nil
}
