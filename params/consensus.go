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

// ConsensusType distinguishes proof-of-work from proof-of-authority chains.
type ConsensusType string

const (
	ConsensusPoW ConsensusType = "pow"
	ConsensusPoA ConsensusType = "poa"
)

// ConsensusAlgorithm names the concrete sealing/verification algorithm.
type ConsensusAlgorithm string

const (
	Ethash ConsensusAlgorithm = "ethash"
	Clique ConsensusAlgorithm = "clique"
)

// Section groups related named constants inside the (section, name,
// hardfork) lookup key.
type Section string

const (
	SectionPoW        Section = "pow"
	SectionVM         Section = "vm"
	SectionGasConfig  Section = "gasConfig"
	SectionConsensus  Section = "consensus"
)

// Well-known constant names within each section.
const (
	NamePoWDifficultyBoundDivisor = "difficultyBoundDivisor"
	NamePoWMinimumDifficulty      = "minimumDifficulty"
	NamePoWDurationLimit          = "durationLimit"
	NameVMMaxExtraDataSize        = "maxExtraDataSize"
	NameGasLimitBoundDivisor      = "gasLimitBoundDivisor"
	NameMinGasLimit               = "minGasLimit"
)

// CliqueConfig carries the clique proof-of-authority tunables.
type CliqueConfig struct {
	Period uint64 // minimum seconds between blocks
	Epoch  uint64 // blocks per signer-list checkpoint
}

// GenesisValues carries the canonical genesis values substituted into a
// header constructed with the genesis option (spec 4.1).
type GenesisValues struct {
	GasLimit   uint64
	Timestamp  uint64
	Difficulty uint64
	ExtraData  []byte
	Nonce      [8]byte
	StateRoot  [32]byte
}
