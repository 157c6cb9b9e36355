/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reader.go
Description: Bounds-checked byte cursor used by every structural analyzer. Reads are
sequential with explicit byte order, seeks are absolute within the slice and are only
validated by the next read.
*/

package core

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
)

// Reader is a sequential cursor over a buffer slice. It owns the position, never the bytes.
type Reader struct {
	data []byte
	pos  int64
}

// NewReader creates a cursor positioned at the start of data
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current offset relative to the slice start
func (r *Reader) Position() int64 {
	return r.pos
}

// Len returns the slice length
func (r *Reader) Len() int {
	return len(r.data)
}

// Remaining returns the number of bytes left after the current position
func (r *Reader) Remaining() int {
	if r.pos < 0 || r.pos >= int64(len(r.data)) {
		return 0
	}
	return len(r.data) - int(r.pos)
}

// Seek moves to an absolute offset within the slice. Out-of-range positions are accepted;
// the next read fails instead.
func (r *Reader) Seek(pos int64) {
	r.pos = pos
}

// ReadByte returns the next byte
func (r *Reader) ReadByte() (byte, error) {
	if r.pos < 0 || r.pos >= int64(len(r.data)) {
		return 0, fmt.Errorf("read byte at %d: %w", r.pos, ErrEndOfData)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes returns the next n bytes. Nothing is consumed when fewer than n remain.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read length %d", n)
	}
	if r.pos < 0 || int64(n) > int64(len(r.data))-r.pos {
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, r.pos, ErrEndOfData)
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+int64(n)])
	r.pos += int64(n)
	return out, nil
}

// ReadUint16 reads a 16-bit value in the given byte order
func (r *Reader) ReadUint16(order binary.ByteOrder) (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(buf), nil
}

// ReadUint32 reads a 32-bit value in the given byte order
func (r *Reader) ReadUint32(order binary.ByteOrder) (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(buf), nil
}

// ReadUint64 reads a 64-bit value in the given byte order
func (r *Reader) ReadUint64(order binary.ByteOrder) (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return order.Uint64(buf), nil
}

// ReadString decodes n bytes as text and trims trailing NUL bytes.
// A nil encoding keeps the bytes as-is (UTF-8).
func (r *Reader) ReadString(n int, enc encoding.Encoding) (string, error) {
	buf, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	if enc != nil {
		decoded, err := enc.NewDecoder().Bytes(buf)
		if err != nil {
			return "", fmt.Errorf("decode string at %d: %w", r.pos-int64(n), err)
		}
		buf = decoded
	}
	return strings.TrimRight(string(buf), "\x00"), nil
}
