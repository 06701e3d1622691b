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

import "strings"

// ignoredSubstrings is spec 7's exact table, compiled once. A transport
// error whose message contains any of these is noise the server sink
// never sees.
var ignoredSubstrings = [...]string{
	"EPIPE",
	"ECONNRESET",
	"ETIMEDOUT",
	"NetworkId mismatch",
	"Timeout error: ping",
	"Genesis block mismatch",
	"Handshake timed out",
	"Invalid address buffer",
	"Invalid MAC",
	"Invalid timestamp buffer",
	"Hash verification failed",
}

// IsIgnoredTransportError reports whether err is expected connection
// churn that should never reach ServerSink.Error.
func IsIgnoredTransportError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range ignoredSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// routeError sends err to sink.Error unless the classifier marks it as
// ignored noise (spec 7, scenario S5).
func routeError(sink ServerSink, err error, peer *PeerRecord) {
	if err == nil || sink == nil {
		return
	}
	if IsIgnoredTransportError(err) {
		return
	}
	sink.Error(err, peer)
}
