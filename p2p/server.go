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
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"

	"github.com/jackyl14/go-ethereum-core/p2p/discover"
	"github.com/jackyl14/go-ethereum-core/p2p/rlpx"
	"github.com/jackyl14/go-ethereum-core/params"
)

// lifecycleState is the P2PServer state machine of spec 3:
// idle -> starting -> running -> stopping -> idle.
type lifecycleState int

const (
	stateIdle lifecycleState = iota
	stateStarting
	stateRunning
	stateStopping
)

// ErrTooManyPeers is returned by the internal admission gate when the
// registry is already at MaxPeers.
var ErrTooManyPeers = errors.New("p2p: peer admission refused, server is at MaxPeers")

// Config collects everything Server needs to start (spec 3, 6).
type Config struct {
	LocalSecret     [32]byte
	AdvertisedIP    string
	ListenPort      uint16
	DiscoveryPort   uint16
	RefreshInterval time.Duration
	Bootnodes       []discover.Endpoint
	MaxPeers        uint32
	// ClientFilter holds an allow-list of client-id substrings; a nil
	// or empty slice means every client id is accepted.
	ClientFilter []string
	Protocols    []Capability
	ChainParams  params.ChainParams
}

// Server is the top-level orchestrator (spec 4.9): it owns the
// lifecycle state machine, wires DiscoveryTable and SessionMultiplexer
// together, and implements rlpx.MultiplexerSink to perform the event
// translation spec 4.8 describes.
type Server struct {
	mu      sync.Mutex
	state   lifecycleState
	cfg     Config
	sink    ServerSink
	nodeID  string
	table   *discover.Table
	session *rlpx.Multiplexer
	peers   *PeerRegistry
}

// NewServer constructs a Server in the idle state. The private key
// backing LocalSecret also derives the node's discv4/rlpx identity.
func NewServer(cfg Config, sink ServerSink) *Server {
	return &Server{
		cfg:   cfg,
		sink:  sink,
		peers: NewPeerRegistry(),
		state: stateIdle,
	}
}

// Start transitions idle -> starting -> running. A Start call on a
// server that is not idle is a non-reentrant no-op and returns false
// (spec 8 invariant 9).
func (s *Server) Start() (bool, error) {
	s.mu.Lock()
	if s.state != stateIdle {
		s.mu.Unlock()
		return false, nil
	}
	s.state = stateStarting
	s.mu.Unlock()
	log.Info("Starting P2P server", "listen", s.cfg.ListenPort, "discovery", s.cfg.DiscoveryPort, "maxpeers", s.cfg.MaxPeers)

	key, err := crypto.ToECDSA(s.cfg.LocalSecret[:])
	if err != nil {
		s.resetToIdle()
		log.Error("P2P server start failed", "err", err)
		return false, fmt.Errorf("p2p: invalid local secret: %w", err)
	}
	s.nodeID = fmt.Sprintf("%x", crypto.FromECDSAPub(&key.PublicKey)[1:])

	s.table = discover.NewTable(s.cfg.LocalSecret, s.cfg.RefreshInterval, discoverySinkFunc(func(err error) {
		routeError(s.sink, err, nil)
	}))
	if s.cfg.DiscoveryPort != 0 {
		if err := s.table.Bind(s.cfg.DiscoveryPort, "0.0.0.0"); err != nil {
			s.resetToIdle()
			log.Error("P2P server start failed", "err", err)
			return false, fmt.Errorf("p2p: discovery bind failed: %w", err)
		}
	}
	s.table.Bootstrap(s.cfg.Bootnodes)

	s.session = rlpx.NewMultiplexer(rlpx.Config{
		LocalSecret:  s.cfg.LocalSecret,
		MaxPeers:     s.cfg.MaxPeers,
		Capabilities: toRlpxCapabilities(s.cfg.Protocols),
		ClientFilter: toClientFilterSet(s.cfg.ClientFilter),
	}, s)
	if err := s.session.Listen(s.cfg.ListenPort, "0.0.0.0"); err != nil {
		s.table.Destroy()
		s.resetToIdle()
		log.Error("P2P server start failed", "err", err)
		return false, fmt.Errorf("p2p: rlpx listen failed: %w", err)
	}

	s.mu.Lock()
	s.state = stateRunning
	s.mu.Unlock()
	log.Info("P2P server started", "id", s.nodeID)
	return true, nil
}

// Stop transitions running -> stopping -> idle. A Stop call on a
// server that is not running is a no-op and returns false.
func (s *Server) Stop() bool {
	s.mu.Lock()
	if s.state != stateRunning {
		s.mu.Unlock()
		return false
	}
	s.state = stateStopping
	s.mu.Unlock()
	log.Info("Stopping P2P server", "id", s.nodeID, "peers", s.peers.Len())

	if s.session != nil {
		s.session.Destroy()
	}
	if s.table != nil {
		s.table.Destroy()
	}

	s.mu.Lock()
	s.state = stateIdle
	s.mu.Unlock()
	log.Info("P2P server stopped", "id", s.nodeID)
	return true
}

func (s *Server) resetToIdle() {
	s.mu.Lock()
	s.state = stateIdle
	s.mu.Unlock()
}

// Ban forwards to the discovery table's ban list, only while running.
func (s *Server) Ban(id string, maxAge time.Duration) {
	if maxAge <= 0 {
		maxAge = 60 * time.Second
	}
	s.mu.Lock()
	table := s.table
	running := s.state == stateRunning
	s.mu.Unlock()
	if !running || table == nil {
		return
	}
	table.BanPeer(id, maxAge)
}

// Info returns the public snapshot of spec 4.9. Enode/ID are empty
// until the session multiplexer has started.
func (s *Server) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	var info Info
	info.IP = s.cfg.AdvertisedIP
	info.Ports.Discovery = s.cfg.DiscoveryPort
	info.Ports.Listener = s.cfg.ListenPort
	if s.state == stateRunning && s.nodeID != "" {
		info.ID = s.nodeID
		info.Enode = FormatEnodeURL(s.nodeID, s.cfg.AdvertisedIP, s.cfg.ListenPort)
		info.ListenAddr = fmt.Sprintf("%s:%d", s.cfg.AdvertisedIP, s.cfg.ListenPort)
	}
	return info
}

// --- rlpx.MultiplexerSink implementation: spec 4.8's event translation ---

// PeerAdded constructs a PeerRecord, admits it if the server is under
// MaxPeers, and emits connected; otherwise routes ErrTooManyPeers.
func (s *Server) PeerAdded(handle SessionHandle) {
	if uint32(s.peers.Len()) >= s.cfg.MaxPeers && s.cfg.MaxPeers > 0 {
		log.Debug("Rejecting peer, too many peers", "id", handle.ID(), "maxpeers", s.cfg.MaxPeers)
		routeError(s.sink, ErrTooManyPeers, nil)
		_ = handle.Close(ErrTooManyPeers)
		return
	}
	record := PeerRecord{
		ID:         handle.ID(),
		Host:       handle.RemoteHost(),
		Port:       handle.RemotePort(),
		Inbound:    handle.IsInboundConnection(),
		Protocols:  s.cfg.Protocols,
		underlying: handle,
	}
	s.peers.Insert(record)
	log.Debug("Peer connected", "id", record.ID, "host", record.Host, "port", record.Port, "inbound", record.Inbound)
	if s.sink != nil {
		s.sink.Connected(record)
	}
}

// PeerRemoved looks the peer up, removes it, and emits disconnected.
// Removing an unknown id is a no-op (spec 8 invariant 8).
func (s *Server) PeerRemoved(handle SessionHandle, reason error) {
	record, ok := s.peers.Remove(handle.ID())
	if !ok {
		return
	}
	log.Debug("Peer disconnected", "id", record.ID, "reason", reason)
	if s.sink != nil {
		s.sink.Disconnected(record, reason)
	}
}

// PeerError routes a per-session error, attaching the PeerRecord when
// the peer is still known. handle may be nil, in which case the error is
// routed with no peer.
func (s *Server) PeerError(handle SessionHandle, err error) {
	var peer *PeerRecord
	id := ""
	if handle != nil {
		id = handle.ID()
		if record, ok := s.peers.Get(id); ok {
			peer = &record
		}
	}
	if IsIgnoredTransportError(err) {
		log.Trace("Ignored transport error", "err", err)
	} else {
		log.Warn("Peer error", "id", id, "err", err)
	}
	routeError(s.sink, err, peer)
}

// Error routes a server-level error with no associated peer.
func (s *Server) Error(err error) {
	if IsIgnoredTransportError(err) {
		log.Trace("Ignored transport error", "err", err)
	} else {
		log.Warn("P2P server error", "err", err)
	}
	routeError(s.sink, err, nil)
}

// Listening emits the server-level listening event once rlpx binds.
func (s *Server) Listening() {
	url := FormatEnodeURL(s.nodeID, s.cfg.AdvertisedIP, s.cfg.ListenPort)
	log.Info("P2P server listening", "enode", url)
	if s.sink == nil {
		return
	}
	s.sink.Listening(ListeningInfo{Transport: "rlpx", URL: url})
}

func toClientFilterSet(filter []string) mapset.Set[string] {
	if len(filter) == 0 {
		return nil
	}
	return mapset.NewSet[string](filter...)
}

func toRlpxCapabilities(caps []Capability) []rlpx.Capability {
	out := make([]rlpx.Capability, len(caps))
	for i, c := range caps {
		out[i] = rlpx.Capability{Name: c.Name, Version: c.Version}
	}
	return out
}

type discoverySinkFunc func(error)

func (f discoverySinkFunc) Error(err error) { f(err) }
