package bolt

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/graphwire/bolt/errors"
	"github.com/graphwire/bolt/log"
)

const (
	// maxChunkSize is the largest payload a single chunk can carry
	maxChunkSize = math.MaxUint16
	// chunkHeaderSize is the size of the length prefix on each chunk
	chunkHeaderSize = 2
)

// ChunkedOutput writes PackStream data to an underlying writer using the
// Bolt chunked framing. Each chunk carries a big-endian uint16 length prefix
// and a message is terminated by a zero-length chunk. It implements
// packstream.Output so a Packer can write through it directly.
type ChunkedOutput struct {
	w io.Writer

	buf []byte
	// chunkStart indexes the reserved 2-byte header of the open chunk,
	// or -1 when no chunk is open
	chunkStart int
	pos        int
}

// NewChunkedOutput creates a ChunkedOutput over w with the given buffer
// size. Sizes outside [16, 65537] are clamped; 65537 holds one header plus
// a maximal chunk.
func NewChunkedOutput(w io.Writer, bufferSize int) *ChunkedOutput {
	if bufferSize < 16 {
		bufferSize = 16
	}
	if bufferSize > maxChunkSize+chunkHeaderSize {
		bufferSize = maxChunkSize + chunkHeaderSize
	}
	return &ChunkedOutput{
		w:          w,
		buf:        make([]byte, bufferSize),
		chunkStart: -1,
	}
}

// WriteByte writes a single byte into the current chunk
func (o *ChunkedOutput) WriteByte(b byte) error {
	return o.write([]byte{b})
}

// WriteShort writes a big-endian int16 into the current chunk
func (o *ChunkedOutput) WriteShort(s int16) error {
	data := make([]byte, 2)
	binary.BigEndian.PutUint16(data, uint16(s))
	return o.write(data)
}

// WriteInt writes a big-endian int32 into the current chunk
func (o *ChunkedOutput) WriteInt(i int32) error {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, uint32(i))
	return o.write(data)
}

// WriteLong writes a big-endian int64 into the current chunk
func (o *ChunkedOutput) WriteLong(l int64) error {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(l))
	return o.write(data)
}

// WriteDouble writes a big-endian IEEE 754 float64 into the current chunk
func (o *ChunkedOutput) WriteDouble(f float64) error {
	return o.WriteLong(int64(math.Float64bits(f)))
}

// WriteBytes writes raw bytes, splitting across chunks as needed
func (o *ChunkedOutput) WriteBytes(data []byte) error {
	return o.write(data)
}

// MessageBoundary closes the current chunk and emits the zero-length chunk
// that terminates the message
func (o *ChunkedOutput) MessageBoundary() error {
	o.closeChunkIfOpen()
	if err := o.ensure(chunkHeaderSize); err != nil {
		return err
	}
	o.buf[o.pos] = 0
	o.buf[o.pos+1] = 0
	o.pos += chunkHeaderSize
	return nil
}

// Flush closes the current chunk and writes all buffered data to the
// underlying writer
func (o *ChunkedOutput) Flush() error {
	o.closeChunkIfOpen()
	if o.pos == 0 {
		return nil
	}
	if log.TraceEnabled() {
		log.Tracef("SEND %s", sprintByteHex(o.buf[:o.pos]))
	}
	written := 0
	for written < o.pos {
		n, err := o.w.Write(o.buf[written:o.pos])
		written += n
		if err != nil {
			o.pos = 0
			o.chunkStart = -1
			return errors.NewOutputFailure(err)
		}
	}
	o.pos = 0
	return nil
}

func (o *ChunkedOutput) write(data []byte) error {
	for len(data) > 0 {
		if err := o.openChunkIfClosed(); err != nil {
			return err
		}
		space := len(o.buf) - o.pos
		inChunk := maxChunkSize - (o.pos - o.chunkStart - chunkHeaderSize)
		if inChunk < space {
			space = inChunk
		}
		if space == 0 {
			if inChunk == 0 {
				o.closeChunkIfOpen()
			} else if err := o.Flush(); err != nil {
				return err
			}
			continue
		}
		n := len(data)
		if n > space {
			n = space
		}
		copy(o.buf[o.pos:], data[:n])
		o.pos += n
		data = data[n:]
	}
	return nil
}

func (o *ChunkedOutput) openChunkIfClosed() error {
	if o.chunkStart >= 0 {
		return nil
	}
	if err := o.ensure(chunkHeaderSize); err != nil {
		return err
	}
	o.chunkStart = o.pos
	o.pos += chunkHeaderSize
	return nil
}

func (o *ChunkedOutput) closeChunkIfOpen() {
	if o.chunkStart < 0 {
		return
	}
	size := o.pos - o.chunkStart - chunkHeaderSize
	binary.BigEndian.PutUint16(o.buf[o.chunkStart:], uint16(size))
	o.chunkStart = -1
}

func (o *ChunkedOutput) ensure(n int) error {
	if len(o.buf)-o.pos >= n {
		return nil
	}
	return o.Flush()
}
