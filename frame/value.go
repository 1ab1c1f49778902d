// Package frame implements the wire value type and its RESP-style codec:
// a tagged, length-delimited binary format shared by the connection,
// parser, and command layers.
package frame

import (
	"fmt"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindSimple Kind = iota
	KindError
	KindInteger
	KindBulk
	KindNull
	KindArray
)

// Value is the single polymorphic type exchanged end to end: every request
// argument, every stored entry, and every response is a Value. It is a
// closed tagged union; add a Kind and a constructor rather than growing it
// through embedding.
type Value struct {
	kind    Kind
	text    string
	integer int64
	bulk    []byte
	array   []Value
}

// Simple builds a Value holding a short in-band line of text.
func Simple(s string) Value { return Value{kind: KindSimple, text: s} }

// Err builds an error-variant Value. Distinct from Simple only in how a
// client is expected to treat it.
func Err(s string) Value { return Value{kind: KindError, text: s} }

// Errf is a convenience wrapper around Err + fmt.Sprintf.
func Errf(format string, args ...any) Value { return Err(fmt.Sprintf(format, args...)) }

// Integer builds a signed 64-bit integer Value.
func Integer(i int64) Value { return Value{kind: KindInteger, integer: i} }

// Bulk builds an opaque byte-string Value. The slice is kept, not copied;
// callers handing over a buffer they still mutate must copy first.
func Bulk(b []byte) Value { return Value{kind: KindBulk, bulk: b} }

// BulkString is a convenience wrapper around Bulk for text payloads.
func BulkString(s string) Value { return Value{kind: KindBulk, bulk: []byte(s)} }

// Null builds the distinguished absence value.
func Null() Value { return Value{kind: KindNull} }

// Array builds an ordered sequence Value from already-built children.
func Array(items ...Value) Value { return Value{kind: KindArray, array: items} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the line for Simple/Error variants.
func (v Value) Text() (string, bool) {
	if v.kind == KindSimple || v.kind == KindError {
		return v.text, true
	}
	return "", false
}

// Int returns the payload of an Integer variant.
func (v Value) Int() (int64, bool) {
	if v.kind == KindInteger {
		return v.integer, true
	}
	return 0, false
}

// BulkBytes returns the payload of a Bulk variant.
func (v Value) BulkBytes() ([]byte, bool) {
	if v.kind == KindBulk {
		return v.bulk, true
	}
	return nil, false
}

// Items returns the children of an Array variant.
func (v Value) Items() ([]Value, bool) {
	if v.kind == KindArray {
		return v.array, true
	}
	return nil, false
}

// AsText coerces a Simple, Error, or Bulk variant to a string. Bulk bytes
// are converted as they are, without UTF-8 validation.
func (v Value) AsText() (string, bool) {
	switch v.kind {
	case KindSimple, KindError:
		return v.text, true
	case KindBulk:
		return string(v.bulk), true
	default:
		return "", false
	}
}

// AsBytes coerces a Simple, Error, or Bulk variant to raw bytes.
func (v Value) AsBytes() ([]byte, bool) {
	switch v.kind {
	case KindSimple, KindError:
		return []byte(v.text), true
	case KindBulk:
		return v.bulk, true
	default:
		return nil, false
	}
}

// String renders a Value the way a client REPL would print it.
func (v Value) String() string {
	switch v.kind {
	case KindSimple:
		return v.text
	case KindError:
		return "error: " + v.text
	case KindInteger:
		return fmt.Sprintf("%d", v.integer)
	case KindBulk:
		return string(v.bulk)
	case KindNull:
		return "(nil)"
	case KindArray:
		parts := make([]string, len(v.array))
		for i, item := range v.array {
			parts[i] = item.String()
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// Key returns the canonical byte encoding of v, a comparable, hashable
// form of the value (the codec tests compare values through it). The
// storage engine does not use it: its entries map and expiration index
// are keyed by the command's text key. Using the wire encoding itself as
// the canonical form is free: the
// grammar already makes it injective (the round-trip law in the codec tests
// guarantees distinct values encode to distinct bytes) and it already opens
// on the variant tag byte, which gives exactly the "variant-tag then
// payload" total order the storage engine's ordered expiration index needs.
func (v Value) Key() string { return string(Encode(v)) }

// Compare implements the Value total order: lexicographic comparison of
// the canonical (wire) encoding. Returns <0, 0, >0 like strings.Compare.
func Compare(a, b Value) int { return strings.Compare(a.Key(), b.Key()) }
