package packstream

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/graphwire/bolt/errors"
)

// Input is the source the Unpacker reads from.
type Input interface {
	// HasMoreData reports whether at least one more byte can be consumed.
	// On a blocking channel this may wait for data to arrive.
	HasMoreData() (bool, error)
	ReadByte() (byte, error)
	ReadShort() (int16, error)
	ReadInt() (int32, error)
	ReadLong() (int64, error)
	ReadDouble() (float64, error)
	// ReadBytes fills p completely or fails.
	ReadBytes(p []byte) error
	// PeekByte returns the next byte without consuming it.
	PeekByte() (byte, error)
}

// BufferedInput is an Input over an io.Reader with a fixed-size buffer and
// big-endian primitive decoding.
type BufferedInput struct {
	r    io.Reader
	buf  []byte
	rpos int
	wpos int
}

// NewBufferedInput creates a BufferedInput with the given buffer size. Sizes
// below 16 bytes are raised to 16 so any single primitive always fits.
func NewBufferedInput(r io.Reader, size int) *BufferedInput {
	if size < 16 {
		size = 16
	}
	return &BufferedInput{r: r, buf: make([]byte, size)}
}

func (i *BufferedInput) buffered() int {
	return i.wpos - i.rpos
}

// attempt tries to make n bytes available, reading from the underlying
// channel as needed. It reports whether it succeeded; a clean end of stream
// is not an error here.
func (i *BufferedInput) attempt(n int) (bool, error) {
	if i.buffered() >= n {
		return true, nil
	}
	if i.rpos > 0 {
		copy(i.buf, i.buf[i.rpos:i.wpos])
		i.wpos -= i.rpos
		i.rpos = 0
	}
	for i.buffered() < n {
		m, err := i.r.Read(i.buf[i.wpos:])
		i.wpos += m
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, errors.NewInputFailure(err)
		}
	}
	return true, nil
}

func (i *BufferedInput) ensure(n int) error {
	ok, err := i.attempt(n)
	if err != nil {
		return err
	}
	if !ok {
		return &errors.EndOfInput{Expected: n}
	}
	return nil
}

func (i *BufferedInput) HasMoreData() (bool, error) {
	return i.attempt(1)
}

func (i *BufferedInput) ReadByte() (byte, error) {
	if err := i.ensure(1); err != nil {
		return 0, err
	}
	b := i.buf[i.rpos]
	i.rpos++
	return b, nil
}

func (i *BufferedInput) ReadShort() (int16, error) {
	if err := i.ensure(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(i.buf[i.rpos:])
	i.rpos += 2
	return int16(v), nil
}

func (i *BufferedInput) ReadInt() (int32, error) {
	if err := i.ensure(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(i.buf[i.rpos:])
	i.rpos += 4
	return int32(v), nil
}

func (i *BufferedInput) ReadLong() (int64, error) {
	if err := i.ensure(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(i.buf[i.rpos:])
	i.rpos += 8
	return int64(v), nil
}

func (i *BufferedInput) ReadDouble() (float64, error) {
	v, err := i.ReadLong()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

func (i *BufferedInput) ReadBytes(p []byte) error {
	n := copy(p, i.buf[i.rpos:i.wpos])
	i.rpos += n
	if n == len(p) {
		return nil
	}
	if _, err := io.ReadFull(i.r, p[n:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return &errors.EndOfInput{Expected: len(p) - n}
		}
		return errors.NewInputFailure(err)
	}
	return nil
}

func (i *BufferedInput) PeekByte() (byte, error) {
	if err := i.ensure(1); err != nil {
		return 0, err
	}
	return i.buf[i.rpos], nil
}
