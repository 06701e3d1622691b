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

package validator

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/jackyl14/go-ethereum-core/consensus/ethash"
	"github.com/jackyl14/go-ethereum-core/core/types"
	"github.com/jackyl14/go-ethereum-core/params"
)

// memChain is a trivial HeaderChain backed by a map, used only by tests.
type memChain map[common.Hash]*types.Header

func (m memChain) GetHeader(hash common.Hash) (*types.Header, bool) {
	h, ok := m[hash]
	return h, ok
}

// ethashParams builds a minimal PoW ChainParams fixture with no DAO
// hardfork configured, so the construction-time DAO gate never applies to
// the hand-built headers in this file (unlike params.TestEthashConfig,
// which activates DAO from block zero).
func ethashParams() *params.Config {
	cfg := params.NewConfig(params.ConsensusPoW, params.Ethash)
	cfg.SetHardforkBlock(params.Chainstart, big.NewInt(0))
	cfg.SetParam(params.SectionPoW, params.NamePoWDifficultyBoundDivisor, params.Chainstart, big.NewInt(2048))
	cfg.SetParam(params.SectionPoW, params.NamePoWMinimumDifficulty, params.Chainstart, big.NewInt(131072))
	cfg.SetParam(params.SectionPoW, params.NamePoWDurationLimit, params.Chainstart, big.NewInt(13))
	cfg.SetParam(params.SectionVM, params.NameVMMaxExtraDataSize, params.Chainstart, big.NewInt(32))
	cfg.SetParam(params.SectionGasConfig, params.NameGasLimitBoundDivisor, params.Chainstart, big.NewInt(1024))
	cfg.SetParam(params.SectionGasConfig, params.NameMinGasLimit, params.Chainstart, big.NewInt(5000))
	return cfg
}

func mustHeader(t *testing.T, fd types.FieldDict, cp params.ChainParams, hf params.Hardfork) *types.Header {
	t.Helper()
	h, err := types.FromFieldDict(fd, types.BuildOptions{ChainParams: cp, Hardfork: hf})
	require.NoError(t, err)
	return h
}

func TestValidateGenesisShortCircuits(t *testing.T) {
	cp := ethashParams()
	genesis := mustHeader(t, types.FieldDict{Number: big.NewInt(0)}, cp, params.Chainstart)
	require.NoError(t, Validate(cp, genesis, memChain{}, nil))
}

func TestValidateMissingParent(t *testing.T) {
	cp := ethashParams()
	header := mustHeader(t, types.FieldDict{Number: big.NewInt(1)}, cp, params.Chainstart)
	err := Validate(cp, header, memChain{}, nil)
	require.ErrorIs(t, err, ErrMissingParent)
}

func TestValidateInvalidNumber(t *testing.T) {
	cp := ethashParams()
	parent := mustHeader(t, types.FieldDict{Number: big.NewInt(1), Timestamp: big.NewInt(100)}, cp, params.Chainstart)
	header := mustHeader(t, types.FieldDict{
		ParentHash: hashPtr(parent.Hash()),
		Number:     big.NewInt(3),
		Timestamp:  big.NewInt(200),
	}, cp, params.Chainstart)

	chain := memChain{parent.Hash(): parent}
	require.ErrorIs(t, Validate(cp, header, chain, nil), ErrInvalidNumber)
}

func TestValidateTimestampMonotonicity(t *testing.T) {
	cp := ethashParams()
	parent := mustHeader(t, types.FieldDict{Number: big.NewInt(1), Timestamp: big.NewInt(100)}, cp, params.Chainstart)
	header := mustHeader(t, types.FieldDict{
		ParentHash: hashPtr(parent.Hash()),
		Number:     big.NewInt(2),
		Timestamp:  big.NewInt(100),
	}, cp, params.Chainstart)

	chain := memChain{parent.Hash(): parent}
	require.ErrorIs(t, Validate(cp, header, chain, nil), ErrInvalidTimestamp)
}

// TestValidateGasLimitStrictInequality uses a clique fixture (rather than
// ethashParams) so the PoW canonical-difficulty check is skipped entirely
// and the gas-limit bound is isolated as the only variable under test
// (spec 8, invariant 5).
func TestValidateGasLimitStrictInequality(t *testing.T) {
	cp := params.TestCliqueConfig(30000, 0)
	nonEpochExtra := make([]byte, types.CliqueExtraVanity+types.CliqueExtraSeal)

	parent := mustHeader(t, types.FieldDict{
		Number:       big.NewInt(1),
		Timestamp:    big.NewInt(100),
		GasLimit:     big.NewInt(1024000),
		ExtraData:    nonEpochExtra,
		ExtraDataSet: true,
	}, cp, params.Istanbul)

	a := int64(1024000 / 1024)
	chain := memChain{parent.Hash(): parent}

	invalidHeader := mustHeader(t, types.FieldDict{
		ParentHash:   hashPtr(parent.Hash()),
		Number:       big.NewInt(2),
		Timestamp:    big.NewInt(101),
		GasLimit:     big.NewInt(1024000 + a),
		ExtraData:    nonEpochExtra,
		ExtraDataSet: true,
	}, cp, params.Istanbul)
	require.ErrorIs(t, Validate(cp, invalidHeader, chain, nil), ethash.ErrInvalidGasLimit)

	validHeader := mustHeader(t, types.FieldDict{
		ParentHash:   hashPtr(parent.Hash()),
		Number:       big.NewInt(2),
		Timestamp:    big.NewInt(101),
		GasLimit:     big.NewInt(1024000 + a - 1),
		ExtraData:    nonEpochExtra,
		ExtraDataSet: true,
	}, cp, params.Istanbul)
	require.NoError(t, Validate(cp, validHeader, chain, nil))
}

func TestValidateUncleDistance(t *testing.T) {
	cp := ethashParams()
	parent := mustHeader(t, types.FieldDict{Number: big.NewInt(10), Timestamp: big.NewInt(100)}, cp, params.Chainstart)

	require.ErrorIs(t, checkUncleDistance(parent, big.NewInt(11)), ErrInvalidUncleDistance)
	require.ErrorIs(t, checkUncleDistance(parent, big.NewInt(18)), ErrInvalidUncleDistance)
	require.NoError(t, checkUncleDistance(parent, big.NewInt(13)))
}

func hashPtr(h common.Hash) *common.Hash { return &h }
