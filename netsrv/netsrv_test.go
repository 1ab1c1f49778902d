package netsrv

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/kvcached/cached/store"
)

func startTestServer(t *testing.T) (addr string, cancel context.CancelFunc) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	engine := store.New()
	ctx, cancelFn := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, ln, engine, 256)
		close(done)
	}()
	t.Cleanup(func() {
		cancelFn()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("server did not shut down in time")
		}
	})
	return ln.Addr().String(), cancelFn
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func exchange(t *testing.T, conn net.Conn, req, wantResp string) {
	t.Helper()
	conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write([]byte(req)); err != nil {
		t.Fatalf("Write(%q): %v", req, err)
	}
	buf := make([]byte, len(wantResp))
	if _, err := readFull(conn, buf); err != nil {
		t.Fatalf("Read after %q: %v", req, err)
	}
	if string(buf) != wantResp {
		t.Fatalf("response to %q = %q, want %q", req, buf, wantResp)
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func TestMissingKeyReturnsNull(t *testing.T) {
	addr, _ := startTestServer(t)
	conn := dial(t, addr)
	exchange(t, conn, "*2\r\n$3\r\nGET\r\n$5\r\nhello\r\n", "$-1\r\n")
}

func TestSetThenGet(t *testing.T) {
	addr, _ := startTestServer(t)
	conn := dial(t, addr)
	exchange(t, conn, "*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n", "+OK\r\n")
	exchange(t, conn, "*2\r\n$3\r\nGET\r\n$3\r\nkey\r\n", "$5\r\nvalue\r\n")
}

func TestDelThenGet(t *testing.T) {
	addr, _ := startTestServer(t)
	conn := dial(t, addr)
	exchange(t, conn, "*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n", "+OK\r\n")
	exchange(t, conn, "*2\r\n$3\r\nDEL\r\n$3\r\nkey\r\n", "+OK\r\n")
	exchange(t, conn, "*2\r\n$3\r\nGET\r\n$3\r\nkey\r\n", "$-1\r\n")
}

func TestExpiry(t *testing.T) {
	addr, _ := startTestServer(t)
	conn := dial(t, addr)
	exchange(t, conn, "*5\r\n$3\r\nSET\r\n$5\r\nhello\r\n$5\r\nworld\r\n$2\r\nEX\r\n:1\r\n", "+OK\r\n")
	exchange(t, conn, "*2\r\n$3\r\nGET\r\n$5\r\nhello\r\n", "$5\r\nworld\r\n")
	time.Sleep(1200 * time.Millisecond)
	exchange(t, conn, "*2\r\n$3\r\nGET\r\n$5\r\nhello\r\n", "$-1\r\n")
}

func TestPing(t *testing.T) {
	addr, _ := startTestServer(t)
	conn := dial(t, addr)
	exchange(t, conn, "*1\r\n+PING\r\n", "+PONG\r\n")
}

func TestPublishSubscribe(t *testing.T) {
	addr, _ := startTestServer(t)

	pub := dial(t, addr)
	exchange(t, pub, "*3\r\n$7\r\nPUBLISH\r\n$5\r\nhello\r\n$5\r\nworld\r\n", ":0\r\n")

	sub := dial(t, addr)
	sub.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := sub.Write([]byte("*2\r\n$9\r\nSUBSCRIBE\r\n$5\r\nhello\r\n")); err != nil {
		t.Fatalf("Write(SUBSCRIBE): %v", err)
	}
	ackWant := "*3\r\n$9\r\nsubscribe\r\n$5\r\nhello\r\n:1\r\n"
	ackBuf := make([]byte, len(ackWant))
	if _, err := readFull(sub, ackBuf); err != nil {
		t.Fatalf("read subscribe ack: %v", err)
	}
	if string(ackBuf) != ackWant {
		t.Fatalf("subscribe ack = %q, want %q", ackBuf, ackWant)
	}

	// Give the subscription time to register before the republish.
	time.Sleep(100 * time.Millisecond)
	exchange(t, pub, "*3\r\n$7\r\nPUBLISH\r\n$5\r\nhello\r\n$5\r\nworld\r\n", ":1\r\n")

	msgWant := "*3\r\n$7\r\nmessage\r\n$5\r\nhello\r\n$5\r\nworld\r\n"
	msgBuf := make([]byte, len(msgWant))
	if _, err := readFull(sub, msgBuf); err != nil {
		t.Fatalf("read message: %v", err)
	}
	if string(msgBuf) != msgWant {
		t.Fatalf("message = %q, want %q", msgBuf, msgWant)
	}
}

func TestUnknownCommand(t *testing.T) {
	addr, _ := startTestServer(t)
	conn := dial(t, addr)
	conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write([]byte("*1\r\n$4\r\nFROB\r\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got := string(buf[:n])
	want := "-ERR unknown command 'FROB'\r\n"
	if got != want {
		t.Fatalf("response = %q, want %q", got, want)
	}
}

func TestGracefulShutdownWithOpenConnection(t *testing.T) {
	addr, cancel := startTestServer(t)
	conn := dial(t, addr)
	exchange(t, conn, "*1\r\n+PING\r\n", "+PONG\r\n")
	cancel()
}
