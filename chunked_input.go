package bolt

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/graphwire/bolt/errors"
)

// ChunkedInput reads PackStream data framed in Bolt chunks from an
// underlying reader. It implements packstream.Input. Chunk boundaries are
// invisible to the caller; MessageBoundary consumes the zero-length chunk
// that ends a message.
type ChunkedInput struct {
	r io.Reader

	// remaining counts unread payload bytes in the current chunk
	remaining int
	peeked    bool
	peekByte  byte
}

// NewChunkedInput creates a ChunkedInput over r
func NewChunkedInput(r io.Reader) *ChunkedInput {
	return &ChunkedInput{r: r}
}

// HasMoreData reports whether the current chunk has unread payload
func (in *ChunkedInput) HasMoreData() (bool, error) {
	return in.peeked || in.remaining > 0, nil
}

// ReadByte reads a single byte
func (in *ChunkedInput) ReadByte() (byte, error) {
	if in.peeked {
		in.peeked = false
		return in.peekByte, nil
	}
	if err := in.ensure(); err != nil {
		return 0, err
	}
	var b [1]byte
	if err := in.fill(b[:]); err != nil {
		return 0, err
	}
	in.remaining--
	return b[0], nil
}

// ReadShort reads a big-endian int16
func (in *ChunkedInput) ReadShort() (int16, error) {
	var data [2]byte
	if err := in.readAcross(data[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(data[:])), nil
}

// ReadInt reads a big-endian int32
func (in *ChunkedInput) ReadInt() (int32, error) {
	var data [4]byte
	if err := in.readAcross(data[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(data[:])), nil
}

// ReadLong reads a big-endian int64
func (in *ChunkedInput) ReadLong() (int64, error) {
	var data [8]byte
	if err := in.readAcross(data[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(data[:])), nil
}

// ReadDouble reads a big-endian IEEE 754 float64
func (in *ChunkedInput) ReadDouble() (float64, error) {
	bits, err := in.ReadLong()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(bits)), nil
}

// ReadBytes fills data completely, reading across chunk boundaries
func (in *ChunkedInput) ReadBytes(data []byte) error {
	return in.readAcross(data)
}

// PeekByte returns the next byte without consuming it
func (in *ChunkedInput) PeekByte() (byte, error) {
	if in.peeked {
		return in.peekByte, nil
	}
	b, err := in.ReadByte()
	if err != nil {
		return 0, err
	}
	in.peeked = true
	in.peekByte = b
	return b, nil
}

// MessageBoundary consumes the zero-length chunk that terminates the
// current message. Unread payload before the boundary is a protocol error.
func (in *ChunkedInput) MessageBoundary() error {
	if in.peeked || in.remaining > 0 {
		return in.failUnexpectedData()
	}
	size, err := in.readChunkHeader()
	if err != nil {
		return err
	}
	if size != 0 {
		in.remaining = size
		return in.failUnexpectedData()
	}
	return nil
}

func (in *ChunkedInput) readAcross(data []byte) error {
	pos := 0
	for in.peeked && pos < len(data) {
		in.peeked = false
		data[pos] = in.peekByte
		pos++
	}
	for pos < len(data) {
		if err := in.ensure(); err != nil {
			return err
		}
		n := len(data) - pos
		if n > in.remaining {
			n = in.remaining
		}
		if err := in.fill(data[pos : pos+n]); err != nil {
			return err
		}
		in.remaining -= n
		pos += n
	}
	return nil
}

// ensure advances past empty chunk headers until payload is available.
// A zero-length chunk here means the peer ended the message mid-value.
func (in *ChunkedInput) ensure() error {
	for in.remaining == 0 {
		size, err := in.readChunkHeader()
		if err != nil {
			return err
		}
		if size == 0 {
			return &errors.EndOfInput{Expected: 1}
		}
		in.remaining = size
	}
	return nil
}

func (in *ChunkedInput) readChunkHeader() (int, error) {
	var header [2]byte
	if err := in.fill(header[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(header[:])), nil
}

func (in *ChunkedInput) fill(data []byte) error {
	if _, err := io.ReadFull(in.r, data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return &errors.EndOfInput{Expected: len(data)}
		}
		return errors.NewInputFailure(err)
	}
	return nil
}

// failUnexpectedData drains up to 16 bytes of the unread remainder so the
// error can show what the server actually sent
func (in *ChunkedInput) failUnexpectedData() error {
	total := in.remaining
	if in.peeked {
		total++
	}
	n := total
	if n > 16 {
		n = 16
	}
	sample := make([]byte, n)
	if err := in.readAcross(sample); err != nil {
		return err
	}
	return &errors.UnexpectedData{ContentHex: sprintByteHex(sample), Size: total}
}
