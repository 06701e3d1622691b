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

package clique

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/jackyl14/go-ethereum-core/core/types"
	"github.com/jackyl14/go-ethereum-core/params"
)

func cliqueParams(epoch uint64) params.ChainParams {
	cfg := params.NewConfig(params.ConsensusPoA, params.Clique)
	cfg.Clique = params.CliqueConfig{Period: 15, Epoch: epoch}
	cfg.SetHardforkBlock(params.Chainstart, big.NewInt(0))
	cfg.SetParam(params.SectionVM, params.NameVMMaxExtraDataSize, params.Chainstart, big.NewInt(65535))
	return cfg
}

func sealedHeader(t *testing.T, number int64, extraBody []byte, key []byte) *types.Header {
	t.Helper()
	extra := make([]byte, types.CliqueExtraVanity+len(extraBody)+types.CliqueExtraSeal)
	copy(extra[types.CliqueExtraVanity:], extraBody)

	privKey, err := crypto.ToECDSA(key)
	require.NoError(t, err)

	fd := types.FieldDict{
		Number:       big.NewInt(number),
		ExtraData:    extra,
		ExtraDataSet: true,
	}
	h, err := types.FromFieldDict(fd, types.BuildOptions{ChainParams: cliqueParams(30000), Hardfork: params.Istanbul})
	require.NoError(t, err)

	sig, err := crypto.Sign(h.Hash().Bytes(), privKey)
	require.NoError(t, err)

	sealed := append([]byte(nil), extra...)
	copy(sealed[len(sealed)-types.CliqueExtraSeal:], sig)
	fd2 := types.FieldDict{
		Number:       big.NewInt(number),
		ExtraData:    sealed,
		ExtraDataSet: true,
	}
	h2, err := types.FromFieldDict(fd2, types.BuildOptions{ChainParams: cliqueParams(30000), Hardfork: params.Istanbul})
	require.NoError(t, err)
	return h2
}

var testKey = crypto.Keccak256([]byte("clique-test-key"))

func TestIsEpochTransition(t *testing.T) {
	cp := cliqueParams(30000)
	h, err := types.FromFieldDict(types.FieldDict{
		Number:       big.NewInt(60000),
		ExtraData:    make([]byte, types.CliqueExtraVanity+types.CliqueExtraSeal),
		ExtraDataSet: true,
	}, types.BuildOptions{ChainParams: cp, Hardfork: params.Istanbul})
	require.NoError(t, err)

	isEpoch, err := IsEpochTransition(cp, h)
	require.NoError(t, err)
	require.True(t, isEpoch)

	h2, err := types.FromFieldDict(types.FieldDict{
		Number:       big.NewInt(60001),
		ExtraData:    make([]byte, types.CliqueExtraVanity+types.CliqueExtraSeal),
		ExtraDataSet: true,
	}, types.BuildOptions{ChainParams: cp, Hardfork: params.Istanbul})
	require.NoError(t, err)
	isEpoch, err = IsEpochTransition(cp, h2)
	require.NoError(t, err)
	require.False(t, isEpoch)
}

func TestIsEpochTransitionRejectsNonClique(t *testing.T) {
	cp := params.NewConfig(params.ConsensusPoW, params.Ethash)
	h, err := types.FromFieldDict(types.FieldDict{Number: big.NewInt(0)}, types.BuildOptions{ChainParams: cp, Hardfork: params.Chainstart, InitWithGenesisHeader: true})
	require.NoError(t, err)
	_, err = IsEpochTransition(cp, h)
	require.ErrorIs(t, err, ErrNotClique)
}

func TestEpochTransitionSigners(t *testing.T) {
	cp := cliqueParams(30000)
	a1 := common.HexToAddress("0x1111111111111111111111111111111111111111")
	a2 := common.HexToAddress("0x2222222222222222222222222222222222222222")
	body := append(append([]byte{}, a1.Bytes()...), a2.Bytes()...)
	extra := make([]byte, types.CliqueExtraVanity+len(body)+types.CliqueExtraSeal)
	copy(extra[types.CliqueExtraVanity:], body)

	h, err := types.FromFieldDict(types.FieldDict{
		Number:       big.NewInt(30000),
		ExtraData:    extra,
		ExtraDataSet: true,
	}, types.BuildOptions{ChainParams: cp, Hardfork: params.Istanbul})
	require.NoError(t, err)

	signers, err := EpochTransitionSigners(cp, h)
	require.NoError(t, err)
	require.Equal(t, []common.Address{a1, a2}, signers)
}

func TestEpochTransitionSignersRejectsNonEpoch(t *testing.T) {
	cp := cliqueParams(30000)
	h, err := types.FromFieldDict(types.FieldDict{
		Number:       big.NewInt(1),
		ExtraData:    make([]byte, types.CliqueExtraVanity+types.CliqueExtraSeal),
		ExtraDataSet: true,
	}, types.BuildOptions{ChainParams: cp, Hardfork: params.Istanbul})
	require.NoError(t, err)
	_, err = EpochTransitionSigners(cp, h)
	require.ErrorIs(t, err, ErrNotEpochTransition)
}

func TestSignatureToAddressRoundTrip(t *testing.T) {
	h := sealedHeader(t, 1, nil, testKey)
	privKey, err := crypto.ToECDSA(testKey)
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(privKey.PublicKey)

	got, err := SignatureToAddress(cliqueParams(30000), h)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestVerifySignature(t *testing.T) {
	h := sealedHeader(t, 1, nil, testKey)
	privKey, err := crypto.ToECDSA(testKey)
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(privKey.PublicKey)

	ok, err := VerifySignature(cliqueParams(30000), h, []common.Address{signer})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifySignature(cliqueParams(30000), h, []common.Address{{}})
	require.NoError(t, err)
	require.False(t, ok)
}
