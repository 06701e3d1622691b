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

// Package rlpx implements SessionMultiplexer (spec 4.8): the TCP
// listener that turns raw connections into encrypted, capability
// negotiated sessions and translates their lifecycle into the
// peer-added/peer-removed/peer-error/listening event vocabulary spec
// 4.8 and Design Note 9 describe.
package rlpx

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/crypto/hkdf"
)

// Capability names a negotiated sub-protocol and version.
type Capability struct {
	Name    string
	Version uint
}

// SessionHandle is the per-connection collaborator a Multiplexer hands
// to its sink once a handshake succeeds.
type SessionHandle interface {
	ID() string
	RemoteHost() string
	RemotePort() uint16
	IsInboundConnection() bool
	Close(reason error) error
}

// MultiplexerSink receives the low-level events a Multiplexer emits;
// Server implements this to perform spec 4.8's translation into
// ServerSink calls.
type MultiplexerSink interface {
	PeerAdded(handle SessionHandle)
	PeerRemoved(handle SessionHandle, reason error)
	PeerError(handle SessionHandle, err error)
	Error(err error)
	Listening()
}

// Config collects everything a Multiplexer needs to accept sessions.
// ClientFilter holds an allow-list of client-id substrings; a nil or
// empty set means every client id is accepted.
type Config struct {
	LocalSecret  [32]byte
	MaxPeers     uint32
	Capabilities []Capability
	ClientFilter mapset.Set[string]
}

var (
	// ErrHandshakeFailed wraps any failure during the ECDH/HKDF
	// handshake negotiation.
	ErrHandshakeFailed = errors.New("rlpx: handshake failed")
	// ErrClientFiltered is returned when the remote's advertised
	// client id does not match any entry in ClientFilter.
	ErrClientFiltered = errors.New("rlpx: remote client id rejected by filter")
)

// session is the concrete SessionHandle implementation: a TCP
// connection sealed with an AES-GCM key derived from an ECDH exchange.
type session struct {
	id       string
	conn     net.Conn
	inbound  bool
	sealKey  [32]byte
	gcm      cipher.AEAD
	closed   bool
	closeMu  sync.Mutex
}

func (s *session) ID() string            { return s.id }
func (s *session) IsInboundConnection() bool { return s.inbound }

func (s *session) RemoteHost() string {
	host, _, err := net.SplitHostPort(s.conn.RemoteAddr().String())
	if err != nil {
		return s.conn.RemoteAddr().String()
	}
	return host
}

func (s *session) RemotePort() uint16 {
	_, port, err := net.SplitHostPort(s.conn.RemoteAddr().String())
	if err != nil {
		return 0
	}
	var p uint16
	fmt.Sscanf(port, "%d", &p)
	return p
}

func (s *session) Close(reason error) error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

// seal encrypts plaintext under the session's derived key, returning
// nonce||ciphertext.
func (s *session) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts data previously produced by seal.
func (s *session) open(data []byte) ([]byte, error) {
	n := s.gcm.NonceSize()
	if len(data) < n {
		return nil, errors.New("rlpx: ciphertext shorter than nonce")
	}
	return s.gcm.Open(nil, data[:n], data[n:], nil)
}

// deriveSessionKey reduces an ECDH shared secret through HKDF-SHA256
// into a 32-byte AES-GCM key, exactly as spec 4.8's "ECDH handshake"
// collaborator is described.
func deriveSessionKey(shared []byte) ([32]byte, error) {
	var out [32]byte
	h := hkdf.New(sha256.New, shared, nil, []byte("rlpx-session-key"))
	if _, err := io.ReadFull(h, out[:]); err != nil {
		return out, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	return out, nil
}

func newAEAD(key [32]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
