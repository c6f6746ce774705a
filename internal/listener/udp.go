package listener

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/rnxpyke/pixelflut-go/internal/conn"
	"github.com/rnxpyke/pixelflut-go/internal/framing"
	"github.com/rnxpyke/pixelflut-go/internal/protocol"
)

const udpMaxDatagramSize = 65507

// UDP accepts pixelflut requests as newline-joined lines inside a
// single datagram and replies with the responses those lines produce
// (none for a successful SetPixel or a failed request), concatenated
// into one reply datagram (spec.md §4.2). It fans
// incoming traffic out across Workers goroutines, each holding its own
// SO_REUSEPORT socket bound to the same address, so no single
// goroutine's recvfrom loop becomes a bottleneck under load.
type UDP struct {
	BindAddr   string
	Workers    int
	Dispatcher *conn.Dispatcher
	Logger     *slog.Logger
}

// Run opens Workers reuseport sockets on BindAddr and services them
// until ctx is canceled.
func (u *UDP) Run(ctx context.Context) error {
	workers := u.Workers
	if workers < 1 {
		workers = 1
	}

	conns := make([]*net.UDPConn, 0, workers)
	for i := 0; i < workers; i++ {
		pc, err := u.listenReuseport(ctx)
		if err != nil {
			for _, c := range conns {
				c.Close()
			}
			return err
		}
		conns = append(conns, pc)
	}
	u.Logger.Info("udp listener started", "bind_addr", u.BindAddr, "workers", workers)

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(1)
		go func(c *net.UDPConn) {
			defer wg.Done()
			u.serve(ctx, c)
		}(c)
	}

	go func() {
		<-ctx.Done()
		for _, c := range conns {
			c.Close()
		}
	}()

	wg.Wait()
	return nil
}

func (u *UDP) listenReuseport(ctx context.Context) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	pc, err := lc.ListenPacket(ctx, "udp", u.BindAddr)
	if err != nil {
		return nil, err
	}
	return pc.(*net.UDPConn), nil
}

func (u *UDP) serve(ctx context.Context, c *net.UDPConn) {
	dispatcher := u.Dispatcher
	buf := make([]byte, udpMaxDatagramSize)

	for {
		n, addr, err := c.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			u.Logger.Warn("udp read error", "error", err)
			continue
		}

		lines := framing.SplitDatagram(buf[:n])
		if lines == nil {
			continue
		}

		var replies [][]byte
		for _, line := range lines {
			req, err := protocol.Parse(line)
			if err != nil {
				u.Logger.Warn("udp datagram dropped on parse error", "error", err, "addr", addr)
				replies = nil
				break
			}
			resp, err := dispatcher.Dispatch(req)
			if err != nil || resp == nil {
				continue
			}
			replies = append(replies, protocol.Format(*resp))
		}

		if len(replies) == 0 {
			continue
		}
		if _, err := c.WriteToUDP(framing.JoinReplies(replies), addr); err != nil {
			u.Logger.Warn("udp write error", "error", err)
		}
	}
}
