package frame

import (
	"errors"
	"testing"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	buf := Encode(v)
	n, err := Check(buf)
	if err != nil {
		t.Fatalf("Check(%v): %v", buf, err)
	}
	if n != len(buf) {
		t.Fatalf("Check(%v) = %d, want %d", buf, n, len(buf))
	}
	got, n2, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse(%v): %v", buf, err)
	}
	if n2 != len(buf) {
		t.Fatalf("Parse(%v) consumed %d, want %d", buf, n2, len(buf))
	}
	return got
}

func TestRoundTrip(t *testing.T) {
	cases := []Value{
		Simple("OK"),
		Err("no such key"),
		Integer(0),
		Integer(-42),
		Integer(1 << 40),
		BulkString("hello world"),
		Bulk([]byte{}),
		Null(),
		Array(),
		Array(BulkString("SET"), BulkString("k"), BulkString("v")),
		Array(Integer(1), Array(Simple("nested"), Null())),
	}
	for _, want := range cases {
		got := roundTrip(t, want)
		if got.Key() != want.Key() {
			t.Errorf("round trip mismatch: got %q, want %q", got.Key(), want.Key())
		}
	}
}

func TestCheckIncomplete(t *testing.T) {
	full := Encode(Array(BulkString("SET"), BulkString("key"), BulkString("value")))
	for i := 0; i < len(full); i++ {
		if _, err := Check(full[:i]); !errors.Is(err, ErrIncomplete) {
			t.Fatalf("Check(full[:%d]) = %v, want ErrIncomplete", i, err)
		}
	}
	if _, err := Check(full); err != nil {
		t.Fatalf("Check(full) = %v, want nil", err)
	}
}

func TestIncrementalDecode(t *testing.T) {
	a := Encode(BulkString("first"))
	b := Encode(Integer(7))
	stream := append(append([]byte{}, a...), b...)

	n, err := Check(stream)
	if err != nil || n != len(a) {
		t.Fatalf("Check first frame: n=%d err=%v, want %d", n, err, len(a))
	}
	v, n, err := Parse(stream)
	if err != nil {
		t.Fatalf("Parse first frame: %v", err)
	}
	if s, ok := v.AsText(); !ok || s != "first" {
		t.Fatalf("first frame = %v, want \"first\"", v)
	}
	rest := stream[n:]
	v2, n2, err := Parse(rest)
	if err != nil {
		t.Fatalf("Parse second frame: %v", err)
	}
	if n2 != len(rest) {
		t.Fatalf("Parse second frame consumed %d, want %d", n2, len(rest))
	}
	if i, ok := v2.Int(); !ok || i != 7 {
		t.Fatalf("second frame = %v, want 7", v2)
	}
}

func TestInvalidTag(t *testing.T) {
	_, err := Check([]byte("?garbage\r\n"))
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("Check(invalid tag) = %v, want *ProtocolError", err)
	}
}

func TestInvalidUTF8Simple(t *testing.T) {
	buf := append([]byte{'+'}, 0xff, 0xfe, '\r', '\n')
	_, _, err := Parse(buf)
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse(invalid utf8) = %v, want *ProtocolError", err)
	}
}

func TestNullBulk(t *testing.T) {
	buf := Encode(Null())
	if string(buf) != "$-1\r\n" {
		t.Fatalf("Encode(Null()) = %q, want \"$-1\\r\\n\"", buf)
	}
	v, n, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse(null): %v", err)
	}
	if n != len(buf) || !v.IsNull() {
		t.Fatalf("Parse(null) = %v, n=%d, want IsNull n=%d", v, n, len(buf))
	}
}

func TestNegativeLengthRejected(t *testing.T) {
	_, err := Check([]byte("$-2\r\n"))
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("Check($-2) = %v, want *ProtocolError", err)
	}
}
