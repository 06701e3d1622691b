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

package discover

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type collectingSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *collectingSink) Error(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *collectingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}

// TestBootstrapResilience covers spec 8 scenario S6: one failing
// bootnode must not prevent the others from bonding or the sink from
// staying quiet about the rest.
func TestBootstrapResilience(t *testing.T) {
	sink := &collectingSink{}
	table := NewTable([32]byte{1}, time.Hour, sink)

	var dialed []Endpoint
	var mu sync.Mutex
	table.dial = func(n Endpoint) error {
		mu.Lock()
		dialed = append(dialed, n)
		mu.Unlock()
		if n.Address == "bad.example" {
			return errors.New("connection refused")
		}
		return nil
	}

	table.Bootstrap([]Endpoint{
		{Address: "good.example", UDPPort: 30303},
		{Address: "bad.example", UDPPort: 30303},
	})

	require.Len(t, dialed, 2)
	require.Equal(t, 1, sink.count())

	table.mu.Lock()
	bonded := table.bonded.ToSlice()
	table.mu.Unlock()
	require.Len(t, bonded, 1)
	require.Equal(t, "good.example", bonded[0].Address)
}

func TestBanPeerExpiry(t *testing.T) {
	table := NewTable([32]byte{1}, time.Hour, nil)
	table.BanPeer("abc", 10*time.Millisecond)
	require.True(t, table.IsBanned("abc"))

	time.Sleep(20 * time.Millisecond)
	require.False(t, table.IsBanned("abc"))
}

func TestDestroyWithoutBindIsNoop(t *testing.T) {
	table := NewTable([32]byte{1}, time.Hour, nil)
	require.NotPanics(t, table.Destroy)
}

func TestBindAndDestroy(t *testing.T) {
	sink := &collectingSink{}
	table := NewTable([32]byte{1}, time.Millisecond, sink)
	err := table.Bind(0, "127.0.0.1")
	require.NoError(t, err)
	require.NotPanics(t, table.Destroy)
}
