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

// Package p2p implements the top-level peer-to-peer orchestrator: peer
// admission and eviction, the server lifecycle state machine, and the
// event-sink contract that replaces the source's event-emitter idiom
// (Design Note 9).
package p2p

import (
	"github.com/jackyl14/go-ethereum-core/p2p/rlpx"
)

// Capability names a sub-protocol and its negotiated version (spec 3, 6).
type Capability struct {
	Name    string
	Version uint
}

// Endpoint is a discovery bootstrap entry (spec 6): an address plus its
// UDP and TCP ports.
type Endpoint struct {
	Address string
	UDPPort uint16
	TCPPort uint16
}

// SessionHandle is the encrypted-session collaborator PeerRecord holds a
// weak reference to (Design Note 9: "PeerRegistry stores a weak/back
// reference to it"). It is an alias of rlpx.SessionHandle so that Server,
// which implements rlpx.MultiplexerSink, can use the same type in both
// directions without an import cycle.
type SessionHandle = rlpx.SessionHandle

// PeerRecord is owned by PeerRegistry; its lifetime runs from admission
// (peer-added) to removal (peer-removed) (spec 3).
type PeerRecord struct {
	ID         string
	Host       string
	Port       uint16
	Inbound    bool
	Protocols  []Capability
	underlying SessionHandle
}

// ListeningInfo is the payload of the server-level `listening` event.
type ListeningInfo struct {
	Transport string
	URL       string
}

// ServerSink is the event-sink trait Design Note 9 substitutes for the
// source's event emitter: connected/disconnected/listening/error.
type ServerSink interface {
	Connected(record PeerRecord)
	Disconnected(record PeerRecord, reason error)
	Listening(info ListeningInfo)
	Error(err error, peer *PeerRecord)
}

// Info is the public snapshot returned by Server.Info() (spec 4.9).
type Info struct {
	Enode      string
	ID         string
	IP         string
	ListenAddr string
	Ports      struct {
		Discovery uint16
		Listener  uint16
	}
}
