package listener

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rnxpyke/pixelflut-go/internal/conn"
	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
)

func TestUDPServesMultiRequestDatagram(t *testing.T) {
	canvas, err := pixmap.New(4, 4)
	if err != nil {
		t.Fatalf("pixmap.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	u := &UDP{
		BindAddr:   "127.0.0.1:0",
		Workers:    2,
		Dispatcher: conn.NewDispatcher(canvas),
		Logger:     discardLogger(),
	}

	probe, err := u.listenReuseport(ctx)
	if err != nil {
		t.Fatalf("listenReuseport: %v", err)
	}
	addr := probe.LocalAddr().String()
	probe.Close()
	u.BindAddr = addr

	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)

	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	client, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if _, err := client.Write([]byte("PX 0 0 ff0000\nSIZE\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 256)
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != "SIZE 4 4\n" {
		t.Fatalf("got %q", got)
	}

	cancel()
	<-done
}

// TestUDPDropsWholeDatagramOnParseError exercises spec.md §4.3: a parse
// failure drops the rest of the datagram, committing only the effects of
// requests strictly before the faulty line.
func TestUDPDropsWholeDatagramOnParseError(t *testing.T) {
	canvas, err := pixmap.New(4, 4)
	if err != nil {
		t.Fatalf("pixmap.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	u := &UDP{
		BindAddr:   "127.0.0.1:0",
		Workers:    2,
		Dispatcher: conn.NewDispatcher(canvas),
		Logger:     discardLogger(),
	}

	probe, err := u.listenReuseport(ctx)
	if err != nil {
		t.Fatalf("listenReuseport: %v", err)
	}
	addr := probe.LocalAddr().String()
	probe.Close()
	u.BindAddr = addr

	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)

	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	client, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	// "PX 0 0 010203" commits, "bogus" fails to parse, "PX 1 0 040506"
	// must never be dispatched.
	if _, err := client.Write([]byte("PX 0 0 010203\nbogus\nPX 1 0 040506\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	// No reply is expected: neither line produces a response, and the
	// dropped datagram yields no replies to join.
	client.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	buf := make([]byte, 256)
	if _, err := client.Read(buf); err == nil {
		t.Fatalf("expected no reply for a dropped datagram")
	}

	// Confirm the pixel before the faulty line committed...
	client2, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client2.Close()
	if _, err := client2.Write([]byte("PX 0 0\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	client2.SetReadDeadline(time.Now().Add(time.Second))
	n, err := client2.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != "PX 0 0 010203\n" {
		t.Fatalf("got %q, want pixel committed before the faulty line", got)
	}

	// ...and the pixel after the faulty line did not.
	if _, err := client2.Write([]byte("PX 1 0\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	client2.SetReadDeadline(time.Now().Add(time.Second))
	n, err = client2.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != "PX 1 0 000000\n" {
		t.Fatalf("got %q, want pixel after the faulty line to be uncommitted", got)
	}

	cancel()
	<-done
}
