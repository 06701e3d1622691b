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

// Package ethash implements the canonical proof-of-work difficulty engine:
// the per-hardfork difficulty adjustment formula and the ice-age bomb,
// plus the gas-limit bound check shared by every consensus family.
package ethash

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/jackyl14/go-ethereum-core/core/types"
	"github.com/jackyl14/go-ethereum-core/params"
)

// ErrUnsupportedConsensus is raised when CalcDifficulty is called against
// a ChainParams that is not configured for proof-of-work.
var ErrUnsupportedConsensus = errors.New("ethash: canonical difficulty requires a pow consensus type")

var (
	big1       = big.NewInt(1)
	big2       = big.NewInt(2)
	big9       = big.NewInt(9)
	big10      = big.NewInt(10)
	bigMinus99 = big.NewInt(-99)

	bombMuirGlacierOffset    = big.NewInt(9_000_000)
	bombConstantinopleOffset = big.NewInt(5_000_000)
	bombByzantiumOffset      = big.NewInt(3_000_000)
	bigBombDivisor           = big.NewInt(100_000)
)

// CalcDifficulty computes the canonical proof-of-work difficulty of a
// header that extends parent under cp (spec 4.3). It is a pure function of
// its three arguments: the same inputs always produce the same output.
func CalcDifficulty(cp params.ChainParams, header *types.Header, parent *types.Header) (*big.Int, error) {
	if cp.ConsensusType() != params.ConsensusPoW {
		return nil, ErrUnsupportedConsensus
	}
	hf := header.Hardfork()

	bound, err := boundDivisor(cp, parent, hf)
	if err != nil {
		return nil, err
	}
	minDiff, err := cp.ParamByHardfork(params.SectionPoW, params.NamePoWMinimumDifficulty, hf)
	if err != nil {
		return nil, err
	}

	var diff *big.Int
	switch {
	case hf.Gte(params.Byzantium):
		diff = byzantiumDifficulty(header, parent, bound)
	case hf.Gte(params.Homestead):
		diff = homesteadDifficulty(header, parent, bound)
	default:
		diff, err = frontierDifficulty(cp, header, parent, bound, hf)
		if err != nil {
			return nil, err
		}
	}

	diff = applyBomb(diff, hf, header.Number())

	if diff.Cmp(minDiff) < 0 {
		diff = new(big.Int).Set(minDiff)
	}
	return diff, nil
}

func boundDivisor(cp params.ChainParams, parent *types.Header, hf params.Hardfork) (*big.Int, error) {
	divisor, err := cp.ParamByHardfork(params.SectionPoW, params.NamePoWDifficultyBoundDivisor, hf)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Div(parent.Difficulty(), divisor), nil
}

// byzantiumDifficulty implements spec 4.3's ">= byzantium" branch.
func byzantiumDifficulty(header, parent *types.Header, bound *big.Int) *big.Int {
	uncleAddend := big2
	if parent.UncleHash() == types.EmptyUncleHash {
		uncleAddend = big1
	}
	a := adjustmentFactor(header, parent, big9, uncleAddend)
	return new(big.Int).Add(parent.Difficulty(), new(big.Int).Mul(bound, a))
}

// homesteadDifficulty implements spec 4.3's "homestead <= h < byzantium" branch.
func homesteadDifficulty(header, parent *types.Header, bound *big.Int) *big.Int {
	a := adjustmentFactor(header, parent, big10, big1)
	return new(big.Int).Add(parent.Difficulty(), new(big.Int).Mul(bound, a))
}

// adjustmentFactor computes max(-99, base - (header.Time - parent.Time)/divisor).
func adjustmentFactor(header, parent *types.Header, divisor, base *big.Int) *big.Int {
	elapsed := new(big.Int).Sub(header.Timestamp(), parent.Timestamp())
	elapsed.Div(elapsed, divisor) // floor division, both operands non-negative
	a := new(big.Int).Sub(base, elapsed)
	if a.Cmp(bigMinus99) < 0 {
		a = bigMinus99
	}
	return a
}

// frontierDifficulty implements spec 4.3's "h < homestead" branch.
func frontierDifficulty(cp params.ChainParams, header, parent *types.Header, bound *big.Int, hf params.Hardfork) (*big.Int, error) {
	duration, err := cp.ParamByHardfork(params.SectionPoW, params.NamePoWDurationLimit, hf)
	if err != nil {
		return nil, err
	}
	threshold := new(big.Int).Add(parent.Timestamp(), duration)
	if threshold.Cmp(header.Timestamp()) > 0 {
		return new(big.Int).Add(parent.Difficulty(), bound), nil
	}
	return new(big.Int).Sub(parent.Difficulty(), bound), nil
}

// applyBomb adds the ice-age term after delaying the exponent base by a
// hardfork-dependent block offset (spec 4.3).
func applyBomb(diff *big.Int, hf params.Hardfork, number *big.Int) *big.Int {
	num := new(big.Int).Set(number)
	switch {
	case hf.Gte(params.MuirGlacier):
		num.Sub(num, bombMuirGlacierOffset)
	case hf.Gte(params.Constantinople):
		num.Sub(num, bombConstantinopleOffset)
	case hf.Gte(params.Byzantium):
		num.Sub(num, bombByzantiumOffset)
	}
	if num.Sign() < 0 {
		num.SetInt64(0)
	}
	exp := new(big.Int).Div(num, bigBombDivisor)
	exp.Sub(exp, big2)
	if exp.Sign() >= 0 {
		diff = new(big.Int).Add(diff, bombTerm(exp))
	}
	return diff
}

// bombTerm computes 2^exp. Exponents below 256 (every delayed block
// number below 25,800,000) run on the uint256 accumulator, which is
// faster than big.Int.Exp; larger exponents would overflow 256 bits, so
// they fall back to an arbitrary-precision shift.
func bombTerm(exp *big.Int) *big.Int {
	if exp.BitLen() > 8 {
		return new(big.Int).Lsh(big1, uint(exp.Uint64()))
	}
	e := new(uint256.Int).SetUint64(exp.Uint64())
	term := new(uint256.Int).Exp(uint256.NewInt(2), e)
	return term.ToBig()
}

// VerifyGasLimit checks spec 4.3's gas-limit bound: strictly between
// parent.gasLimit-a and parent.gasLimit+a, and at least minGasLimit.
func VerifyGasLimit(cp params.ChainParams, header, parent *types.Header) error {
	hf := header.Hardfork()
	divisor, err := cp.ParamByHardfork(params.SectionGasConfig, params.NameGasLimitBoundDivisor, hf)
	if err != nil {
		return err
	}
	minGasLimit, err := cp.ParamByHardfork(params.SectionGasConfig, params.NameMinGasLimit, hf)
	if err != nil {
		return err
	}
	// Gas limits always fit comfortably within 256 bits in practice, so the
	// bound arithmetic runs on the fixed-width accumulator rather than
	// math/big's arbitrary-precision path.
	parentLimit, _ := uint256.FromBig(parent.GasLimit())
	limit, _ := uint256.FromBig(header.GasLimit())
	divisor256, _ := uint256.FromBig(divisor)
	minGasLimit256, _ := uint256.FromBig(minGasLimit)

	a := new(uint256.Int).Div(parentLimit, divisor256)
	lower := new(uint256.Int).Sub(parentLimit, a)
	upper := new(uint256.Int).Add(parentLimit, a)

	if limit.Cmp(lower) <= 0 || limit.Cmp(upper) >= 0 {
		return ErrInvalidGasLimit
	}
	if limit.Cmp(minGasLimit256) < 0 {
		return ErrInvalidGasLimit
	}
	return nil
}

// ErrInvalidGasLimit is the gas-limit-bound violation (spec 7).
var ErrInvalidGasLimit = errors.New("ethash: invalid gas limit")
