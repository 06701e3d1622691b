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

package params

import "math/big"

// TestEthashConfig mirrors the teacher's params.AllEthashProtocolChanges:
// a ChainParams with every hardfork from Chainstart through MuirGlacier
// activated from block zero (Berlin and later are left unconfigured),
// used by consensus/ethash tests. It is exported (rather
// than test-only) so downstream consumers can write their own fixtures
// without re-deriving a full hardfork schedule, matching the teacher's own
// convention of shipping params.TestChainConfig as library code.
func TestEthashConfig() *Config {
	c := NewConfig(ConsensusPoW, Ethash)
	for hf, block := range map[Hardfork]int64{
		Chainstart:       0,
		Homestead:        0,
		DAO:              0,
		TangerineWhistle: 0,
		SpuriousDragon:   0,
		Byzantium:        0,
		Constantinople:   0,
		Petersburg:       0,
		Istanbul:         0,
		MuirGlacier:      0,
	} {
		c.SetHardforkBlock(hf, big.NewInt(block))
	}
	c.SetParam(SectionPoW, NamePoWDifficultyBoundDivisor, Chainstart, big.NewInt(2048))
	c.SetParam(SectionPoW, NamePoWMinimumDifficulty, Chainstart, big.NewInt(131072))
	c.SetParam(SectionPoW, NamePoWDurationLimit, Chainstart, big.NewInt(13))
	c.SetParam(SectionVM, NameVMMaxExtraDataSize, Chainstart, big.NewInt(32))
	c.SetParam(SectionGasConfig, NameGasLimitBoundDivisor, Chainstart, big.NewInt(1024))
	c.SetParam(SectionGasConfig, NameMinGasLimit, Chainstart, big.NewInt(5000))
	c.GenesisCfg = GenesisValues{
		GasLimit:   5000,
		Timestamp:  0,
		Difficulty: 131072,
		ExtraData:  nil,
		Nonce:      [8]byte{0, 0, 0, 0, 0, 0, 0, 0x42},
	}
	return c
}

// TestCliqueConfig mirrors params.AllCliqueProtocolChanges: a ChainParams
// configured for the clique proof-of-authority algorithm with the given
// epoch (blocks per checkpoint) and period (seconds).
func TestCliqueConfig(epoch, period uint64) *Config {
	c := NewConfig(ConsensusPoA, Clique)
	c.Clique = CliqueConfig{Period: period, Epoch: epoch}
	c.SetHardforkBlock(Chainstart, big.NewInt(0))
	c.SetParam(SectionVM, NameVMMaxExtraDataSize, Chainstart, big.NewInt(32))
	c.SetParam(SectionGasConfig, NameGasLimitBoundDivisor, Chainstart, big.NewInt(1024))
	c.SetParam(SectionGasConfig, NameMinGasLimit, Chainstart, big.NewInt(5000))
	c.GenesisCfg = GenesisValues{
		GasLimit:  5000,
		Timestamp: 0,
	}
	return c
}

// WithDAOBlock activates the DAO hardfork at block on c itself (no copy
// is made) and returns c, used by core/types' DAO-gate test.
func WithDAOBlock(c *Config, block int64) *Config {
	c.SetHardforkBlock(DAO, big.NewInt(block))
	return c
}
