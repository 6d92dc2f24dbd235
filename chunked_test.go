package bolt

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/graphwire/bolt/errors"
)

func TestChunkedOutputSmallMessage(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	out := NewChunkedOutput(buf, 8192)

	if err := out.WriteBytes([]byte{1, 2, 3}); err != nil {
		t.Fatalf("An error occurred writing: %s", err)
	}
	if err := out.MessageBoundary(); err != nil {
		t.Fatalf("An error occurred writing the boundary: %s", err)
	}
	if err := out.Flush(); err != nil {
		t.Fatalf("An error occurred flushing: %s", err)
	}

	expected := []byte{0x00, 0x03, 1, 2, 3, 0x00, 0x00}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Fatalf("Unexpected chunked encoding. Expected %v. Got %v", expected, buf.Bytes())
	}
}

func TestChunkedOutputEmptyMessage(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	out := NewChunkedOutput(buf, 8192)

	if err := out.MessageBoundary(); err != nil {
		t.Fatalf("An error occurred writing the boundary: %s", err)
	}
	if err := out.Flush(); err != nil {
		t.Fatalf("An error occurred flushing: %s", err)
	}

	if !bytes.Equal(buf.Bytes(), []byte{0x00, 0x00}) {
		t.Fatalf("An empty message should be a bare boundary. Got %v", buf.Bytes())
	}
}

func TestChunkedOutputSplitsLargePayload(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	out := NewChunkedOutput(buf, 8192)

	payload := make([]byte, 70000)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := out.WriteBytes(payload); err != nil {
		t.Fatalf("An error occurred writing: %s", err)
	}
	if err := out.MessageBoundary(); err != nil {
		t.Fatalf("An error occurred writing the boundary: %s", err)
	}
	if err := out.Flush(); err != nil {
		t.Fatalf("An error occurred flushing: %s", err)
	}

	// walk the chunks and reassemble
	data := buf.Bytes()
	var assembled []byte
	for {
		if len(data) < 2 {
			t.Fatal("Truncated chunk stream")
		}
		size := int(binary.BigEndian.Uint16(data))
		data = data[2:]
		if size == 0 {
			break
		}
		if size > 65535 {
			t.Fatalf("Chunk size %d exceeds the maximum", size)
		}
		assembled = append(assembled, data[:size]...)
		data = data[size:]
	}
	if len(data) != 0 {
		t.Fatalf("Trailing bytes after the boundary: %d", len(data))
	}
	if !bytes.Equal(assembled, payload) {
		t.Fatal("Reassembled payload does not match")
	}
}

func TestChunkedRoundTrip(t *testing.T) {
	sizes := []int{1, 15, 8190, 8192, 65535, 65536, 100000}
	for _, size := range sizes {
		buf := bytes.NewBuffer(nil)
		out := NewChunkedOutput(buf, 8192)

		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i * 7)
		}
		if err := out.WriteBytes(payload); err != nil {
			t.Fatalf("An error occurred writing %d bytes: %s", size, err)
		}
		if err := out.MessageBoundary(); err != nil {
			t.Fatalf("An error occurred writing the boundary: %s", err)
		}
		if err := out.Flush(); err != nil {
			t.Fatalf("An error occurred flushing: %s", err)
		}

		in := NewChunkedInput(buf)
		got := make([]byte, size)
		if err := in.ReadBytes(got); err != nil {
			t.Fatalf("An error occurred reading %d bytes: %s", size, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("Payload of %d bytes did not round trip", size)
		}
		if err := in.MessageBoundary(); err != nil {
			t.Fatalf("An error occurred consuming the boundary: %s", err)
		}
	}
}

func TestChunkedTwoMessages(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	out := NewChunkedOutput(buf, 8192)

	for _, payload := range [][]byte{{1, 2}, {3, 4, 5}} {
		if err := out.WriteBytes(payload); err != nil {
			t.Fatalf("An error occurred writing: %s", err)
		}
		if err := out.MessageBoundary(); err != nil {
			t.Fatalf("An error occurred writing the boundary: %s", err)
		}
	}
	if err := out.Flush(); err != nil {
		t.Fatalf("An error occurred flushing: %s", err)
	}

	in := NewChunkedInput(buf)
	first := make([]byte, 2)
	if err := in.ReadBytes(first); err != nil {
		t.Fatalf("An error occurred reading: %s", err)
	}
	if err := in.MessageBoundary(); err != nil {
		t.Fatalf("An error occurred consuming the boundary: %s", err)
	}
	second := make([]byte, 3)
	if err := in.ReadBytes(second); err != nil {
		t.Fatalf("An error occurred reading: %s", err)
	}
	if err := in.MessageBoundary(); err != nil {
		t.Fatalf("An error occurred consuming the boundary: %s", err)
	}

	if !bytes.Equal(first, []byte{1, 2}) || !bytes.Equal(second, []byte{3, 4, 5}) {
		t.Fatalf("Messages did not round trip: %v %v", first, second)
	}
}

func TestChunkedInputPrimitives(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	out := NewChunkedOutput(buf, 8192)

	if err := out.WriteByte(0xAB); err != nil {
		t.Fatalf("An error occurred writing: %s", err)
	}
	if err := out.WriteShort(-2); err != nil {
		t.Fatalf("An error occurred writing: %s", err)
	}
	if err := out.WriteInt(1 << 20); err != nil {
		t.Fatalf("An error occurred writing: %s", err)
	}
	if err := out.WriteLong(-1 << 40); err != nil {
		t.Fatalf("An error occurred writing: %s", err)
	}
	if err := out.WriteDouble(2.5); err != nil {
		t.Fatalf("An error occurred writing: %s", err)
	}
	if err := out.MessageBoundary(); err != nil {
		t.Fatalf("An error occurred writing the boundary: %s", err)
	}
	if err := out.Flush(); err != nil {
		t.Fatalf("An error occurred flushing: %s", err)
	}

	in := NewChunkedInput(buf)
	if b, err := in.ReadByte(); err != nil || b != 0xAB {
		t.Fatalf("Byte did not round trip: %v %v", b, err)
	}
	if s, err := in.ReadShort(); err != nil || s != -2 {
		t.Fatalf("Short did not round trip: %v %v", s, err)
	}
	if i, err := in.ReadInt(); err != nil || i != 1<<20 {
		t.Fatalf("Int did not round trip: %v %v", i, err)
	}
	if l, err := in.ReadLong(); err != nil || l != -1<<40 {
		t.Fatalf("Long did not round trip: %v %v", l, err)
	}
	if f, err := in.ReadDouble(); err != nil || f != 2.5 {
		t.Fatalf("Double did not round trip: %v %v", f, err)
	}
	if err := in.MessageBoundary(); err != nil {
		t.Fatalf("An error occurred consuming the boundary: %s", err)
	}
}

func TestChunkedInputPeek(t *testing.T) {
	in := NewChunkedInput(bytes.NewReader([]byte{0x00, 0x02, 0x11, 0x22, 0x00, 0x00}))

	b, err := in.PeekByte()
	if err != nil || b != 0x11 {
		t.Fatalf("Peek failed: %v %v", b, err)
	}
	// peeking again must not consume
	b, err = in.PeekByte()
	if err != nil || b != 0x11 {
		t.Fatalf("Second peek failed: %v %v", b, err)
	}
	b, err = in.ReadByte()
	if err != nil || b != 0x11 {
		t.Fatalf("Read after peek failed: %v %v", b, err)
	}
	b, err = in.ReadByte()
	if err != nil || b != 0x22 {
		t.Fatalf("Read failed: %v %v", b, err)
	}
	if err := in.MessageBoundary(); err != nil {
		t.Fatalf("An error occurred consuming the boundary: %s", err)
	}
}

func TestChunkedInputBoundaryWithUnreadData(t *testing.T) {
	in := NewChunkedInput(bytes.NewReader([]byte{0x00, 0x03, 0x01, 0x02, 0x03, 0x00, 0x00}))

	b := make([]byte, 1)
	if err := in.ReadBytes(b); err != nil {
		t.Fatalf("An error occurred reading: %s", err)
	}
	err := in.MessageBoundary()
	if err == nil {
		t.Fatal("Expected an error for a boundary with unread payload")
	}
	unexpected, ok := err.(*errors.UnexpectedData)
	if !ok {
		t.Fatalf("Expected UnexpectedData, got %T: %v", err, err)
	}
	if unexpected.Size != 2 {
		t.Fatalf("Expected 2 unread bytes, got %d", unexpected.Size)
	}
}

func TestChunkedInputTruncatedMidValue(t *testing.T) {
	// message boundary arrives while a value still needs bytes
	in := NewChunkedInput(bytes.NewReader([]byte{0x00, 0x01, 0x01, 0x00, 0x00}))

	b := make([]byte, 4)
	err := in.ReadBytes(b)
	if err == nil {
		t.Fatal("Expected an error for a boundary mid-value")
	}
	if _, ok := err.(*errors.EndOfInput); !ok {
		t.Fatalf("Expected EndOfInput, got %T: %v", err, err)
	}
}

func TestChunkedInputStreamEnds(t *testing.T) {
	in := NewChunkedInput(bytes.NewReader([]byte{0x00, 0x04, 0x01}))

	b := make([]byte, 4)
	err := in.ReadBytes(b)
	if err == nil {
		t.Fatal("Expected an error for a truncated stream")
	}
	if _, ok := err.(*errors.EndOfInput); !ok {
		t.Fatalf("Expected EndOfInput, got %T: %v", err, err)
	}
}
