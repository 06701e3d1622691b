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
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrMalformedEnode is returned by ParseEnodeURL when s does not match
// enode://<hex-id>@<ip>:<port>.
var ErrMalformedEnode = errors.New("p2p: malformed enode URL")

// FormatEnodeURL renders id/ip/port as enode://<hex-id>@[<ip>]:<port>.
// The host is always bracketed, matching IPv6 literal syntax, so the
// same formatter works for both address families (spec 6).
func FormatEnodeURL(id string, ip string, port uint16) string {
	return fmt.Sprintf("enode://%s@[%s]:%d", strings.ToLower(id), ip, port)
}

// ParseEnodeURL is the inverse of FormatEnodeURL.
func ParseEnodeURL(s string) (id string, ip string, port uint16, err error) {
	const scheme = "enode://"
	if !strings.HasPrefix(s, scheme) {
		return "", "", 0, ErrMalformedEnode
	}
	rest := s[len(scheme):]
	at := strings.IndexByte(rest, '@')
	if at < 0 {
		return "", "", 0, ErrMalformedEnode
	}
	id = rest[:at]
	hostPort := rest[at+1:]

	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: %v", ErrMalformedEnode, err)
	}
	host = strings.TrimPrefix(strings.TrimSuffix(host, "]"), "[")

	p, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: %v", ErrMalformedEnode, err)
	}
	if id == "" || host == "" {
		return "", "", 0, ErrMalformedEnode
	}
	return id, host, uint16(p), nil
}
