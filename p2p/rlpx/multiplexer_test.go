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

package rlpx

import (
	"crypto/cipher"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/require"
)

type testSink struct {
	mu         sync.Mutex
	added      []SessionHandle
	removed    []SessionHandle
	errs       []error
	listening  int
	addedCh    chan SessionHandle
	removedCh  chan SessionHandle
}

func newTestSink() *testSink {
	return &testSink{
		addedCh:   make(chan SessionHandle, 4),
		removedCh: make(chan SessionHandle, 4),
	}
}

func (s *testSink) PeerAdded(h SessionHandle) {
	s.mu.Lock()
	s.added = append(s.added, h)
	s.mu.Unlock()
	s.addedCh <- h
}

func (s *testSink) PeerRemoved(h SessionHandle, reason error) {
	s.mu.Lock()
	s.removed = append(s.removed, h)
	s.mu.Unlock()
	s.removedCh <- h
}

func (s *testSink) PeerError(h SessionHandle, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *testSink) Error(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *testSink) Listening() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening++
}

// dialAndHandshake performs the client half of handshakeInbound against
// addr: send an ephemeral pubkey, read the server's, send a
// length-prefixed client-id frame, then read the server's sealed
// session-ack so the caller can derive the same AEAD the server holds.
func dialAndHandshake(t *testing.T, addr net.Addr, clientID string) (net.Conn, cipher.AEAD) {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)

	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	_, err = conn.Write(priv.PubKey().SerializeCompressed())
	require.NoError(t, err)

	remotePubBytes := make([]byte, 33)
	_, err = io.ReadFull(conn, remotePubBytes)
	require.NoError(t, err)
	remotePub, err := btcec.ParsePubKey(remotePubBytes)
	require.NoError(t, err)

	shared := btcec.GenerateSharedSecret(priv, remotePub)
	key, err := deriveSessionKey(shared)
	require.NoError(t, err)
	gcm, err := newAEAD(key)
	require.NoError(t, err)

	frame := []byte(clientID)
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(frame)))
	_, err = conn.Write(append(header, frame...))
	require.NoError(t, err)

	ack, err := readFrame(conn)
	require.NoError(t, err)
	nonceSize := gcm.NonceSize()
	_, err = gcm.Open(nil, ack[:nonceSize], ack[nonceSize:], nil)
	require.NoError(t, err, "session ack must decrypt under the client's independently derived key")

	return conn, gcm
}

// sendSealedFrame seals payload under gcm and writes it as a frame, the
// way a real sub-protocol message would travel over the session.
func sendSealedFrame(t *testing.T, conn net.Conn, gcm cipher.AEAD, payload []byte) {
	t.Helper()
	nonce := make([]byte, gcm.NonceSize())
	sealed := gcm.Seal(nonce, nonce, payload, nil)
	require.NoError(t, writeFrame(conn, sealed))
}

// dialHandshakeOnly performs the pubkey exchange and client-id send but
// does not wait for a session ack, for exercising handshake failure
// paths (e.g. a filtered client id) where the server never sends one.
func dialHandshakeOnly(t *testing.T, addr net.Addr, clientID string) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)

	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	_, err = conn.Write(priv.PubKey().SerializeCompressed())
	require.NoError(t, err)

	remotePubBytes := make([]byte, 33)
	_, err = io.ReadFull(conn, remotePubBytes)
	require.NoError(t, err)

	frame := []byte(clientID)
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(frame)))
	_, err = conn.Write(append(header, frame...))
	require.NoError(t, err)
	return conn
}

func TestMultiplexerListenAndHandshake(t *testing.T) {
	sink := newTestSink()
	m := NewMultiplexer(Config{LocalSecret: [32]byte{7}}, sink)
	require.NoError(t, m.Listen(0, "127.0.0.1"))
	defer m.Destroy()

	require.Equal(t, 1, sink.listening)

	conn, gcm := dialAndHandshake(t, m.Addr(), "test-client/1.0")
	defer conn.Close()

	select {
	case h := <-sink.addedCh:
		require.NotEmpty(t, h.ID())
		require.True(t, h.IsInboundConnection())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for PeerAdded")
	}

	sendSealedFrame(t, conn, gcm, []byte("hello"))
	time.Sleep(100 * time.Millisecond)
	select {
	case <-sink.removedCh:
		t.Fatal("an authenticated frame must not disconnect the session")
	default:
	}
}

func TestMultiplexerPeerRemovedOnClose(t *testing.T) {
	sink := newTestSink()
	m := NewMultiplexer(Config{LocalSecret: [32]byte{7}}, sink)
	require.NoError(t, m.Listen(0, "127.0.0.1"))
	defer m.Destroy()

	conn, _ := dialAndHandshake(t, m.Addr(), "test-client/1.0")
	<-sink.addedCh
	conn.Close()

	select {
	case <-sink.removedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for PeerRemoved")
	}
}

func TestMultiplexerClientFilterRejectsUnknownClient(t *testing.T) {
	sink := newTestSink()
	m := NewMultiplexer(Config{LocalSecret: [32]byte{7}, ClientFilter: mapset.NewSet[string]("allowed-client")}, sink)
	require.NoError(t, m.Listen(0, "127.0.0.1"))
	defer m.Destroy()

	conn := dialHandshakeOnly(t, m.Addr(), "other-client/1.0")
	defer conn.Close()

	select {
	case <-sink.addedCh:
		t.Fatal("expected the filtered client to be rejected, not added")
	case <-time.After(500 * time.Millisecond):
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.NotEmpty(t, sink.errs)
}
