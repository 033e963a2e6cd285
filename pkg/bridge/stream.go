package bridge

import (
	"bufio"
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
)

// Stream is a large object that can only be compared by reading it.
// Implementations must be pointer types so that identity can be checked.
type Stream interface {
	sync.Locker
	Open() (io.ReadCloser, error)
}

// Compare orders two streams by their bytes: -1, 0 or 1 at the first
// differing byte, with a shorter prefix ordering first. A nil operand gives
// an invalid (null) result. Each stream is locked for the whole scan; a
// stream compared with itself is locked once. Locks are taken in address
// order, so Compare(a, b) and Compare(b, a) may run concurrently.
func Compare(a, b Stream) (sql.Null[int], error) {
	if a == nil || b == nil {
		return sql.Null[int]{}, nil
	}

	if a == b {
		a.Lock()
		defer a.Unlock()
		return sql.Null[int]{V: 0, Valid: true}, nil
	}
	first, second := lockOrder(a, b)
	first.Lock()
	defer first.Unlock()
	second.Lock()
	defer second.Unlock()

	ra, err := a.Open()
	if err != nil {
		return sql.Null[int]{}, fmt.Errorf("open left stream: %w", err)
	}
	defer ra.Close()

	rb, err := b.Open()
	if err != nil {
		return sql.Null[int]{}, fmt.Errorf("open right stream: %w", err)
	}
	defer rb.Close()

	c, err := compareReaders(bufio.NewReader(ra), bufio.NewReader(rb))
	if err != nil {
		return sql.Null[int]{}, err
	}
	return sql.Null[int]{V: c, Valid: true}, nil
}

// Equal reports whether two streams hold the same bytes, null when either is nil.
func Equal(a, b Stream) (sql.NullBool, error) {
	c, err := Compare(a, b)
	if err != nil || !c.Valid {
		return sql.NullBool{}, err
	}
	return sql.NullBool{Bool: c.V == 0, Valid: true}, nil
}

func lockOrder(a, b Stream) (Stream, Stream) {
	if streamAddr(b) < streamAddr(a) {
		return b, a
	}
	return a, b
}

func streamAddr(s Stream) uintptr {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Pointer {
		return 0
	}
	return v.Pointer()
}

func compareReaders(a, b io.ByteReader) (int, error) {
	for {
		ca, errA := a.ReadByte()
		cb, errB := b.ReadByte()
		endA := errors.Is(errA, io.EOF)
		endB := errors.Is(errB, io.EOF)
		if errA != nil && !endA {
			return 0, fmt.Errorf("read left stream: %w", errA)
		}
		if errB != nil && !endB {
			return 0, fmt.Errorf("read right stream: %w", errB)
		}

		switch {
		case endA && endB:
			return 0, nil
		case endA:
			return -1, nil
		case endB:
			return 1, nil
		case ca < cb:
			return -1, nil
		case ca > cb:
			return 1, nil
		}
	}
}

// BytesStream is an in-memory Stream.
type BytesStream struct {
	sync.Mutex
	data []byte
}

// NewBytesStream wraps b. The slice must not be modified afterwards.
func NewBytesStream(b []byte) *BytesStream {
	return &BytesStream{data: b}
}

// Open returns a reader over the stream's bytes.
func (s *BytesStream) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}
