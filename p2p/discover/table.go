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

// Package discover implements DiscoveryTable (spec 4.7): the UDP-bound
// routing table a P2PServer binds, bootstraps from a seed list, and
// bans misbehaving peers from, independent of the rlpx session layer.
package discover

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Endpoint is a bootstrap seed: an address plus its UDP and TCP ports.
type Endpoint struct {
	Address string
	UDPPort uint16
	TCPPort uint16
}

// ErrorSink receives transport-level errors the table cannot attribute
// to any single peer (spec 4.7's "emits error on its transport
// channel").
type ErrorSink interface {
	Error(err error)
}

// Table is the UDP-bound discovery routing table.
type Table struct {
	localSecret     [32]byte
	refreshInterval time.Duration
	sink            ErrorSink

	// dial sends a bootstrap ping to an Endpoint; overridable in tests.
	dial func(Endpoint) error

	mu      sync.Mutex
	conn    *net.UDPConn
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	banned  map[string]time.Time
	bonded  mapset.Set[Endpoint]
	started bool
}

// NewTable constructs an unbound table. Bind must be called before the
// table listens for any traffic; Server.Start skips Bind entirely when
// DiscoveryPort is 0 (Bind itself treats port 0 as "any free port").
func NewTable(localSecret [32]byte, refreshInterval time.Duration, sink ErrorSink) *Table {
	t := &Table{
		localSecret:     localSecret,
		refreshInterval: refreshInterval,
		sink:            sink,
		banned:          make(map[string]time.Time),
		bonded:          mapset.NewSet[Endpoint](),
	}
	t.dial = t.pingUDP
	return t
}

// Bind opens the UDP socket and starts the refresh loop. Binding twice
// is a no-op.
func (t *Table) Bind(port uint16, host string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return nil
	}
	addr := &net.UDPAddr{IP: net.ParseIP(host), Port: int(port)}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("discover: bind: %w", err)
	}
	t.conn = conn
	t.started = true

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.wg.Add(1)
	go t.refreshLoop(ctx)
	log.Info("Discovery table bound", "addr", conn.LocalAddr())
	return nil
}

// refreshLoop paces table maintenance at refreshInterval using a token
// bucket limiter (one refresh per interval, no burst).
func (t *Table) refreshLoop(ctx context.Context) {
	defer t.wg.Done()
	interval := t.refreshInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		t.refresh()
	}
}

// refresh performs one round of table maintenance. The bucket/distance
// algorithm itself is out of scope; this keeps already-bonded nodes
// live by re-pinging them and reporting failures through the sink.
func (t *Table) refresh() {
	t.mu.Lock()
	nodes := t.bonded.ToSlice()
	t.mu.Unlock()
	log.Debug("Refreshing discovery table", "bonded", len(nodes))
	for _, n := range nodes {
		if err := t.dial(n); err != nil {
			t.reportError(fmt.Errorf("discover: refresh ping to %s: %w", n.Address, err))
		}
	}
}

// Bootstrap seeds the table from a bootnode list in parallel. A
// bootstrap failure against one node is reported through the sink but
// never prevents the others from succeeding or the table from coming
// up (spec 4.7, scenario S6).
func (t *Table) Bootstrap(nodes []Endpoint) {
	log.Info("Bootstrapping discovery table", "bootnodes", len(nodes))
	var g errgroup.Group
	for _, n := range nodes {
		n := n
		g.Go(func() error {
			if err := t.dial(n); err != nil {
				log.Debug("Bootnode dial failed", "addr", n.Address, "err", err)
				t.reportError(fmt.Errorf("discover: bootstrap %s: %w", n.Address, err))
				return nil
			}
			t.mu.Lock()
			t.bonded.Add(n)
			t.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

// BanPeer marks id as banned until maxAge elapses.
func (t *Table) BanPeer(id string, maxAge time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.banned[id] = time.Now().Add(maxAge)
}

// IsBanned reports whether id is currently within its ban window.
func (t *Table) IsBanned(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	until, ok := t.banned[id]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(t.banned, id)
		return false
	}
	return true
}

// Destroy stops the refresh loop and closes the UDP socket. Calling
// Destroy on a table that was never bound is a no-op.
func (t *Table) Destroy() {
	t.mu.Lock()
	cancel := t.cancel
	conn := t.conn
	t.started = false
	t.cancel = nil
	t.conn = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		t.wg.Wait()
	}
	if conn != nil {
		_ = conn.Close()
	}
}

func (t *Table) reportError(err error) {
	if t.sink != nil {
		t.sink.Error(err)
	}
}

// pingUDP is the default dial implementation: a best-effort UDP
// datagram. The discv4 wire packet format itself is out of scope for
// this table; only bind/bootstrap/ban/destroy lifecycle and error
// routing are.
func (t *Table) pingUDP(n Endpoint) error {
	addr := &net.UDPAddr{IP: net.ParseIP(n.Address), Port: int(n.UDPPort)}
	if addr.IP == nil {
		return fmt.Errorf("discover: invalid bootnode address %q", n.Address)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Write([]byte("ping"))
	return err
}
