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

// Package params resolves protocol constants and hardfork ordering. It
// plays the role of the ChainParams collaborator described by the header
// consensus and P2P specs: callers never branch on raw block numbers, they
// resolve a Hardfork tag once and rank-compare it from then on.
package params


// Hardfork is an enumerated protocol upgrade tag. Ordering is by Rank, not
// by iota value, so new forks can be inserted without renumbering constants
// callers may have persisted.
type Hardfork string

const (
	Chainstart       Hardfork = "chainstart"
	Homestead        Hardfork = "homestead"
	DAO              Hardfork = "dao"
	TangerineWhistle Hardfork = "tangerineWhistle"
	SpuriousDragon   Hardfork = "spuriousDragon"
	Byzantium        Hardfork = "byzantium"
	Constantinople   Hardfork = "constantinople"
	Petersburg       Hardfork = "petersburg"
	Istanbul         Hardfork = "istanbul"
	MuirGlacier      Hardfork = "muirGlacier"
	Berlin           Hardfork = "berlin"
	London           Hardfork = "london"
	ArrowGlacier     Hardfork = "arrowGlacier"
	GrayGlacier      Hardfork = "grayGlacier"
)

// rankOf fixes the canonical ascending order of all known hardforks. It is
// the "table, not nested conditionals" from Design Note 9.
var rankOf = map[Hardfork]uint32{
	Chainstart:       0,
	Homestead:        1,
	DAO:              2,
	TangerineWhistle: 3,
	SpuriousDragon:   4,
	Byzantium:        5,
	Constantinople:   6,
	Petersburg:       7,
	Istanbul:         8,
	MuirGlacier:      9,
	Berlin:           10,
	London:           11,
	ArrowGlacier:     12,
	GrayGlacier:      13,
}

// orderedHardforks lists every known hardfork from oldest to newest.
var orderedHardforks = func() []Hardfork {
	out := make([]Hardfork, len(rankOf))
	for hf, rank := range rankOf {
		out[rank] = hf
	}
	return out
}()

// Rank returns a hardfork's position in the upgrade sequence. Unknown
// hardforks rank 0, the same as Chainstart, so they compare as the oldest
// hardfork.
func (h Hardfork) Rank() uint32 {
	if r, ok := rankOf[h]; ok {
		return r
	}
	return 0
}

// Gte reports whether h is at least as new as other.
func (h Hardfork) Gte(other Hardfork) bool {
	return h.Rank() >= other.Rank()
}

// Valid reports whether h is a recognized hardfork tag.
func (h Hardfork) Valid() bool {
	_, ok := rankOf[h]
	return ok
}

func (h Hardfork) String() string {
	return string(h)
}
