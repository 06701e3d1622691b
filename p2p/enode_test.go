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

package p2p

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnodeRoundTripIPv4(t *testing.T) {
	url := FormatEnodeURL("abcd1234", "203.0.113.5", 30303)
	id, ip, port, err := ParseEnodeURL(url)
	require.NoError(t, err)
	require.Equal(t, "abcd1234", id)
	require.Equal(t, "203.0.113.5", ip)
	require.Equal(t, uint16(30303), port)
}

func TestEnodeRoundTripIPv6(t *testing.T) {
	url := FormatEnodeURL("deadbeef", "2001:db8::1", 30303)
	id, ip, port, err := ParseEnodeURL(url)
	require.NoError(t, err)
	require.Equal(t, "deadbeef", id)
	require.Equal(t, "2001:db8::1", ip)
	require.Equal(t, uint16(30303), port)
}

func TestParseEnodeURLRejectsMalformed(t *testing.T) {
	_, _, _, err := ParseEnodeURL("not-an-enode-url")
	require.ErrorIs(t, err, ErrMalformedEnode)

	_, _, _, err = ParseEnodeURL("enode://missing-at-sign")
	require.ErrorIs(t, err, ErrMalformedEnode)
}
