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

import (
	"fmt"
	"math/big"
)

// ChainParams is the external collaborator the header-consensus core
// depends on for every named protocol constant and every hardfork-gated
// decision. Implementations are expected to be immutable once constructed.
type ChainParams interface {
	// ParamByHardfork resolves a single named constant, as of the given
	// hardfork, within section. It walks backwards from hardfork through
	// the upgrade sequence and returns the value attached to the newest
	// hardfork at or before it.
	ParamByHardfork(section Section, name string, hardfork Hardfork) (*big.Int, error)

	ConsensusType() ConsensusType
	ConsensusAlgorithm() ConsensusAlgorithm
	ConsensusConfig() CliqueConfig
	Genesis() GenesisValues

	HardforkGte(a, b Hardfork) bool
	ActiveHardforkAt(number *big.Int) Hardfork
	HardforkBlock(name Hardfork) *big.Int
	IsHardforkActive(name Hardfork) bool
	EIPs() map[uint32]bool
}

// paramKey is the (section, name) half of the lookup; the hardfork axis is
// resolved at call time via paramTable.resolve.
type paramKey struct {
	section Section
	name    string
}

// paramTable stores, per (section, name), the value introduced at each
// hardfork that changed it. Sparse by design: most constants are set once
// at Chainstart and never touched again.
type paramTable map[paramKey]map[Hardfork]*big.Int

func (t paramTable) set(section Section, name string, hardfork Hardfork, value *big.Int) {
	k := paramKey{section, name}
	if t[k] == nil {
		t[k] = make(map[Hardfork]*big.Int)
	}
	t[k][hardfork] = value
}

func (t paramTable) resolve(section Section, name string, hardfork Hardfork) (*big.Int, error) {
	byFork, ok := t[paramKey{section, name}]
	if !ok {
		return nil, fmt.Errorf("params: no values registered for %s.%s", section, name)
	}
	var (
		best      Hardfork
		bestFound bool
	)
	for hf := range byFork {
		if hf.Rank() > hardfork.Rank() {
			continue
		}
		if !bestFound || hf.Rank() > best.Rank() {
			best, bestFound = hf, true
		}
	}
	if !bestFound {
		return nil, fmt.Errorf("params: %s.%s has no value active at or before %s", section, name, hardfork)
	}
	return new(big.Int).Set(byFork[best]), nil
}

// Config is the concrete, in-memory ChainParams implementation used by the
// tests. Production deployments may supply their own
// ChainParams backed by a config file or a remote registry; nothing in
// consensus/* or p2p/* depends on this concrete type.
type Config struct {
	Type       ConsensusType
	Algorithm  ConsensusAlgorithm
	Clique     CliqueConfig
	GenesisCfg GenesisValues
	Blocks     map[Hardfork]*big.Int // hardfork activation block numbers
	Params     paramTable
	EIPSet     map[uint32]bool
}

// NewConfig builds an empty Config; callers populate Blocks/Params/EIPSet
// via the setter helpers below, or construct a Config literal directly.
func NewConfig(consensusType ConsensusType, algorithm ConsensusAlgorithm) *Config {
	return &Config{
		Type:      consensusType,
		Algorithm: algorithm,
		Blocks:    make(map[Hardfork]*big.Int),
		Params:    make(paramTable),
		EIPSet:    make(map[uint32]bool),
	}
}

// SetHardforkBlock records the activation block number of a hardfork. A nil
// block means "never active".
func (c *Config) SetHardforkBlock(name Hardfork, block *big.Int) *Config {
	c.Blocks[name] = block
	return c
}

// SetParam registers the value of a named constant effective from hardfork
// onward (until a newer hardfork overrides it).
func (c *Config) SetParam(section Section, name string, hardfork Hardfork, value *big.Int) *Config {
	c.Params.set(section, name, hardfork, value)
	return c
}

func (c *Config) ParamByHardfork(section Section, name string, hardfork Hardfork) (*big.Int, error) {
	return c.Params.resolve(section, name, hardfork)
}

func (c *Config) ConsensusType() ConsensusType           { return c.Type }
func (c *Config) ConsensusAlgorithm() ConsensusAlgorithm { return c.Algorithm }
func (c *Config) ConsensusConfig() CliqueConfig          { return c.Clique }
func (c *Config) Genesis() GenesisValues                 { return c.GenesisCfg }
func (c *Config) HardforkGte(a, b Hardfork) bool         { return a.Gte(b) }
func (c *Config) EIPs() map[uint32]bool                  { return c.EIPSet }

// HardforkBlock returns the activation block of name, or nil if it is
// never active under this configuration.
func (c *Config) HardforkBlock(name Hardfork) *big.Int {
	b, ok := c.Blocks[name]
	if !ok {
		return nil
	}
	return b
}

// IsHardforkActive reports whether name has an activation block configured
// at all (regardless of current chain height).
func (c *Config) IsHardforkActive(name Hardfork) bool {
	b, ok := c.Blocks[name]
	return ok && b != nil
}

// ActiveHardforkAt resolves the newest hardfork whose activation block is
// at or before number.
func (c *Config) ActiveHardforkAt(number *big.Int) Hardfork {
	var (
		best      Hardfork
		bestFound bool
	)
	for _, hf := range orderedHardforks {
		block, ok := c.Blocks[hf]
		if !ok || block == nil {
			continue
		}
		if block.Cmp(number) > 0 {
			continue
		}
		if !bestFound || hf.Rank() > best.Rank() {
			best, bestFound = hf, true
		}
	}
	if !bestFound {
		return Chainstart
	}
	return best
}
