package packstream

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/graphwire/bolt/errors"
)

// Output is the sink the Packer writes to. Implementations buffer writes and
// only touch the underlying channel on Flush or when the buffer fills.
type Output interface {
	WriteByte(b byte) error
	WriteShort(v int16) error
	WriteInt(v int32) error
	WriteLong(v int64) error
	WriteDouble(v float64) error
	WriteBytes(p []byte) error
	Flush() error
}

// BufferedOutput is an Output over an io.Writer with a fixed-size buffer and
// big-endian primitive encoding.
type BufferedOutput struct {
	w   io.Writer
	buf []byte
	n   int
}

const defaultBufferSize = 8192

// NewBufferedOutput creates a BufferedOutput with the given buffer size. A
// non-positive size selects the default; sizes below 16 bytes are raised to
// 16 so any single primitive always fits.
func NewBufferedOutput(w io.Writer, size int) *BufferedOutput {
	if size <= 0 {
		size = defaultBufferSize
	}
	if size < 16 {
		size = 16
	}
	return &BufferedOutput{w: w, buf: make([]byte, size)}
}

func (o *BufferedOutput) ensure(size int) error {
	if len(o.buf)-o.n < size {
		return o.Flush()
	}
	return nil
}

// Flush writes out everything buffered so far.
func (o *BufferedOutput) Flush() error {
	if o.n == 0 {
		return nil
	}
	written := 0
	for written < o.n {
		m, err := o.w.Write(o.buf[written:o.n])
		written += m
		if err != nil {
			o.n = 0
			return errors.NewOutputFailure(err)
		}
	}
	o.n = 0
	return nil
}

func (o *BufferedOutput) WriteByte(b byte) error {
	if err := o.ensure(1); err != nil {
		return err
	}
	o.buf[o.n] = b
	o.n++
	return nil
}

func (o *BufferedOutput) WriteShort(v int16) error {
	if err := o.ensure(2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(o.buf[o.n:], uint16(v))
	o.n += 2
	return nil
}

func (o *BufferedOutput) WriteInt(v int32) error {
	if err := o.ensure(4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(o.buf[o.n:], uint32(v))
	o.n += 4
	return nil
}

func (o *BufferedOutput) WriteLong(v int64) error {
	if err := o.ensure(8); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(o.buf[o.n:], uint64(v))
	o.n += 8
	return nil
}

func (o *BufferedOutput) WriteDouble(v float64) error {
	return o.WriteLong(int64(math.Float64bits(v)))
}

func (o *BufferedOutput) WriteBytes(p []byte) error {
	for len(p) > 0 {
		if o.n == len(o.buf) {
			if err := o.Flush(); err != nil {
				return err
			}
		}
		m := copy(o.buf[o.n:], p)
		o.n += m
		p = p[m:]
	}
	return nil
}
