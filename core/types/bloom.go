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
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// BloomByteLength is the fixed width of a logs bloom filter.
const BloomByteLength = 256

// Bloom is a 2048-bit logs bloom filter, exactly the width spec 3 requires.
type Bloom [BloomByteLength]byte

// BytesToBloom sets b to the value of data, left-padding if it is shorter
// than BloomByteLength.
func BytesToBloom(data []byte) Bloom {
	var b Bloom
	b.SetBytes(data)
	return b
}

// SetBytes sets the content of b to the right-aligned value of data,
// panicking if data is too long.
func (b *Bloom) SetBytes(data []byte) {
	if len(b) < len(data) {
		panic(fmt.Sprintf("bloom bytes too big %d %d", len(b), len(data)))
	}
	copy(b[BloomByteLength-len(data):], data)
}

func (b Bloom) Bytes() []byte { return b[:] }

func (b Bloom) MarshalText() ([]byte, error) {
	return hexutil.Bytes(b[:]).MarshalText()
}

func (b *Bloom) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Bloom", input, b[:])
}
