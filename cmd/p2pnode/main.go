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

// Command p2pnode is a thin demo binary: it wires a p2p.Server to a
// colorized terminal log. It exists to exercise the CLI/logging stack,
// not to carry any protocol logic of its own.
package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/jackyl14/go-ethereum-core/p2p"
	"github.com/jackyl14/go-ethereum-core/p2p/discover"
)

var (
	listenFlag = &cli.IntFlag{
		Name:  "port",
		Usage: "rlpx TCP listen port",
		Value: 30303,
	}
	discoveryFlag = &cli.IntFlag{
		Name:  "discport",
		Usage: "UDP discovery port (0 disables discovery)",
		Value: 30303,
	}
	maxPeersFlag = &cli.UintFlag{
		Name:  "maxpeers",
		Usage: "maximum number of connected peers",
		Value: 25,
	}
	bootnodesFlag = &cli.StringFlag{
		Name:  "bootnodes",
		Usage: "comma separated host:udpport:tcpport bootstrap list",
	}
)

func main() {
	app := &cli.App{
		Name:  "p2pnode",
		Usage: "run a standalone devp2p node",
		Flags: []cli.Flag{listenFlag, discoveryFlag, maxPeersFlag, bootnodesFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	var secret [32]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return fmt.Errorf("p2pnode: generate local secret: %w", err)
	}

	bootnodes := parseBootnodes(c.String(bootnodesFlag.Name))
	logger := newColorLogger()

	srv := p2p.NewServer(p2p.Config{
		LocalSecret:     secret,
		AdvertisedIP:    "0.0.0.0",
		ListenPort:      uint16(c.Int(listenFlag.Name)),
		DiscoveryPort:   uint16(c.Int(discoveryFlag.Name)),
		RefreshInterval: 30 * time.Second,
		Bootnodes:       bootnodes,
		MaxPeers:        uint32(c.Uint(maxPeersFlag.Name)),
		Protocols:       []p2p.Capability{{Name: "eth", Version: 68}},
	}, logger)

	started, err := srv.Start()
	if err != nil {
		return fmt.Errorf("p2pnode: start: %w", err)
	}
	if !started {
		return fmt.Errorf("p2pnode: server refused to start")
	}

	info := srv.Info()
	logger.bold.Printf("listening: %s\n", info.Enode)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc

	srv.Stop()
	return nil
}

func parseBootnodes(raw string) []discover.Endpoint {
	if raw == "" {
		return nil
	}
	var out []discover.Endpoint
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 {
			continue
		}
		var udp, tcp int
		fmt.Sscanf(parts[1], "%d", &udp)
		fmt.Sscanf(parts[2], "%d", &tcp)
		out = append(out, discover.Endpoint{Address: parts[0], UDPPort: uint16(udp), TCPPort: uint16(tcp)})
	}
	return out
}

// colorLogger implements p2p.ServerSink with ANSI-colorized terminal
// output, falling back to plain text when stdout is not a TTY.
type colorLogger struct {
	bold  *color.Color
	green *color.Color
	red   *color.Color
	blue  *color.Color
}

func newColorLogger() *colorLogger {
	enabled := isatty.IsTerminal(os.Stdout.Fd())
	color.NoColor = !enabled
	color.Output = colorable.NewColorableStdout()
	return &colorLogger{
		bold:  color.New(color.Bold),
		green: color.New(color.FgGreen),
		red:   color.New(color.FgRed),
		blue:  color.New(color.FgBlue),
	}
}

func (l *colorLogger) Connected(record p2p.PeerRecord) {
	l.green.Printf("peer connected: %s (%s:%d)\n", record.ID, record.Host, record.Port)
}

func (l *colorLogger) Disconnected(record p2p.PeerRecord, reason error) {
	l.blue.Printf("peer disconnected: %s (%v)\n", record.ID, reason)
}

func (l *colorLogger) Listening(info p2p.ListeningInfo) {
	l.bold.Printf("%s listening at %s\n", info.Transport, info.URL)
}

func (l *colorLogger) Error(err error, peer *p2p.PeerRecord) {
	if peer != nil {
		l.red.Printf("peer error [%s]: %v\n", peer.ID, err)
		return
	}
	l.red.Printf("server error: %v\n", err)
}
