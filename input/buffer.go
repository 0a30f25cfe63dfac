package input

import "io"

// DefaultBufferSize is the initial capacity for streamed input.
const DefaultBufferSize = 10240

// Buffer is a growable byte buffer whose capacity doubles whenever an
// append would overflow it.
type Buffer struct {
	buf []byte
}

// NewBuffer returns an empty buffer with the given initial capacity.
func NewBuffer(size int) *Buffer {
	if size < 1 {
		size = 1
	}
	return &Buffer{buf: make([]byte, 0, size)}
}

func (b *Buffer) Len() int      { return len(b.buf) }
func (b *Buffer) Cap() int      { return cap(b.buf) }
func (b *Buffer) Bytes() []byte { return b.buf }

// Release drops the backing storage.
func (b *Buffer) Release() {
	b.buf = nil
}

// grow ensures room for n more bytes by doubling the capacity.
func (b *Buffer) grow(n int) {
	need := len(b.buf) + n
	if need <= cap(b.buf) {
		return
	}
	size := max(cap(b.buf), 1)
	for size < need {
		size *= 2
	}
	grown := make([]byte, len(b.buf), size)
	copy(grown, b.buf)
	b.buf = grown
}

// Write appends p to the buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.grow(len(p))
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// ReadFrom reads r until EOF, doubling capacity as the buffer fills.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if len(b.buf) == cap(b.buf) {
			b.grow(1)
		}
		n, err := r.Read(b.buf[len(b.buf):cap(b.buf)])
		b.buf = b.buf[:len(b.buf)+n]
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
