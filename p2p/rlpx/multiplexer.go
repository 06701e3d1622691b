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
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/log"
)

const maxFrameSize = 16 * 1024 * 1024

// Multiplexer is the TCP-bound session layer (spec 4.8).
type Multiplexer struct {
	cfg  Config
	sink MultiplexerSink

	mu       sync.Mutex
	ln       net.Listener
	sessions map[string]*session
	wg       sync.WaitGroup
	closing  bool
}

// NewMultiplexer constructs an unbound Multiplexer. sink receives the
// low-level peer-added/peer-removed/listening/error events; the
// Multiplexer never calls sink.PeerError itself: a session that fails
// reads or frame authentication ends with that failure as the
// PeerRemoved reason.
func NewMultiplexer(cfg Config, sink MultiplexerSink) *Multiplexer {
	return &Multiplexer{
		cfg:      cfg,
		sink:     sink,
		sessions: make(map[string]*session),
	}
}

// Listen binds a TCP listener and starts accepting inbound sessions.
func (m *Multiplexer) Listen(port uint16, host string) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("rlpx: listen: %w", err)
	}
	m.mu.Lock()
	m.ln = ln
	m.mu.Unlock()

	m.wg.Add(1)
	go m.acceptLoop(ln)

	log.Info("RLPx session multiplexer listening", "addr", ln.Addr())
	if m.sink != nil {
		m.sink.Listening()
	}
	return nil
}

// Addr returns the bound listener address, or nil before Listen or
// after Destroy.
func (m *Multiplexer) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ln == nil {
		return nil
	}
	return m.ln.Addr()
}

func (m *Multiplexer) acceptLoop(ln net.Listener) {
	defer m.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			m.mu.Lock()
			closing := m.closing
			m.mu.Unlock()
			if closing {
				return
			}
			log.Warn("RLPx accept error", "err", err)
			if m.sink != nil {
				m.sink.Error(fmt.Errorf("rlpx: accept: %w", err))
			}
			continue
		}
		m.wg.Add(1)
		go m.handleConn(conn)
	}
}

func (m *Multiplexer) handleConn(conn net.Conn) {
	defer m.wg.Done()
	sess, err := m.handshakeInbound(conn)
	if err != nil {
		conn.Close()
		log.Debug("RLPx handshake failed", "remote", conn.RemoteAddr(), "err", err)
		if m.sink != nil {
			m.sink.Error(fmt.Errorf("%w: %v", ErrHandshakeFailed, err))
		}
		return
	}

	m.mu.Lock()
	m.sessions[sess.id] = sess
	m.mu.Unlock()

	log.Debug("RLPx session established", "id", sess.id, "remote", conn.RemoteAddr())
	if m.sink != nil {
		m.sink.PeerAdded(sess)
	}

	reason := m.monitor(sess)

	m.mu.Lock()
	_, still := m.sessions[sess.id]
	delete(m.sessions, sess.id)
	m.mu.Unlock()

	if still && m.sink != nil {
		log.Debug("RLPx session closed", "id", sess.id, "reason", reason)
		m.sink.PeerRemoved(sess, reason)
	}
}

// handshakeInbound performs the ECDH key agreement and client-id
// exchange for an accepted connection.
func (m *Multiplexer) handshakeInbound(conn net.Conn) (*session, error) {
	remotePubBytes := make([]byte, 33)
	if _, err := io.ReadFull(conn, remotePubBytes); err != nil {
		return nil, fmt.Errorf("read remote ephemeral key: %w", err)
	}
	remotePub, err := btcec.ParsePubKey(remotePubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse remote ephemeral key: %w", err)
	}

	localPriv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}
	if _, err := conn.Write(localPriv.PubKey().SerializeCompressed()); err != nil {
		return nil, fmt.Errorf("write local ephemeral key: %w", err)
	}

	shared := btcec.GenerateSharedSecret(localPriv, remotePub)
	sum := sha256.Sum256(shared)

	key, err := deriveSessionKey(shared)
	if err != nil {
		return nil, err
	}
	gcm, err := newAEAD(key)
	if err != nil {
		return nil, fmt.Errorf("build session cipher: %w", err)
	}

	sess := &session{
		id:      fmt.Sprintf("%x", sum[:]),
		conn:    conn,
		inbound: true,
		sealKey: key,
		gcm:     gcm,
	}

	clientID, err := readFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("read client id: %w", err)
	}
	if m.cfg.ClientFilter != nil && m.cfg.ClientFilter.Cardinality() > 0 && !clientAllowed(string(clientID), m.cfg.ClientFilter) {
		return nil, ErrClientFiltered
	}

	ack, err := sess.seal([]byte("session-ack"))
	if err != nil {
		return nil, fmt.Errorf("seal session ack: %w", err)
	}
	if err := writeFrame(conn, ack); err != nil {
		return nil, fmt.Errorf("write session ack: %w", err)
	}
	return sess, nil
}

func writeFrame(w io.Writer, payload []byte) error {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(payload)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func clientAllowed(clientID string, filter mapset.Set[string]) bool {
	allowed := false
	filter.Each(func(f string) bool {
		if strings.Contains(clientID, f) {
			allowed = true
			return true
		}
		return false
	})
	return allowed
}

// monitor blocks reading and authenticating frames from sess until the
// connection closes, returning the terminal error (nil on a clean
// peer-initiated close). A frame that fails AEAD authentication ends
// the session the same as a transport error.
func (m *Multiplexer) monitor(sess *session) error {
	for {
		frame, err := readFrame(sess.conn)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if _, err := sess.open(frame); err != nil {
			return fmt.Errorf("rlpx: frame authentication failed: %w", err)
		}
	}
}

func readFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	if length > maxFrameSize {
		return nil, fmt.Errorf("rlpx: frame of %d bytes exceeds maximum", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Destroy closes the listener and every open session.
func (m *Multiplexer) Destroy() {
	m.mu.Lock()
	m.closing = true
	ln := m.ln
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	for _, s := range sessions {
		_ = s.Close(nil)
	}
	m.wg.Wait()
}
