package bolt

import (
	"github.com/graphwire/bolt/errors"
	"github.com/graphwire/bolt/messages"
	"github.com/graphwire/bolt/packstream"
)

// MessageHandler receives decoded Bolt v1 messages. A reader dispatches each
// incoming message to exactly one handler method.
type MessageHandler interface {
	HandleInit(clientName string, authToken map[string]interface{}) error
	HandleRun(statement string, parameters map[string]interface{}) error
	HandleDiscardAll() error
	HandlePullAll() error
	HandleAckFailure() error
	HandleReset() error
	HandleSuccess(metadata map[string]interface{}) error
	HandleRecord(fields []interface{}) error
	HandleFailure(code string, message string) error
	HandleIgnored() error
}

// MessageWriter encodes Bolt messages onto a chunked output
type MessageWriter struct {
	packer *packstream.Packer
	out    *ChunkedOutput
}

// NewMessageWriter creates a MessageWriter over the given chunked output
func NewMessageWriter(out *ChunkedOutput) *MessageWriter {
	return &MessageWriter{
		packer: packstream.NewPacker(out),
		out:    out,
	}
}

// Write encodes one message followed by its message boundary
func (w *MessageWriter) Write(msg messages.Message) error {
	fields := msg.AllFields()
	if err := w.packer.PackStructHeader(len(fields), msg.Signature()); err != nil {
		return err
	}
	for _, field := range fields {
		if err := w.packer.Pack(field); err != nil {
			return err
		}
	}
	return w.out.MessageBoundary()
}

// Flush flushes buffered messages to the underlying writer
func (w *MessageWriter) Flush() error {
	return w.out.Flush()
}

// MessageReader decodes Bolt messages from a chunked input
type MessageReader struct {
	unpacker *packstream.Unpacker
	in       *ChunkedInput
}

// NewMessageReader creates a MessageReader over the given chunked input
func NewMessageReader(in *ChunkedInput) *MessageReader {
	return &MessageReader{
		unpacker: packstream.NewUnpacker(in),
		in:       in,
	}
}

// Read decodes one message, dispatches it to handler, and consumes the
// trailing message boundary
func (r *MessageReader) Read(handler MessageHandler) error {
	size, err := r.unpacker.UnpackStructHeader()
	if err != nil {
		return err
	}
	signature, err := r.unpacker.UnpackStructSignature()
	if err != nil {
		return err
	}

	switch signature {
	case messages.InitMessageSignature:
		err = r.readInit(size, handler)
	case messages.RunMessageSignature:
		err = r.readRun(size, handler)
	case messages.DiscardAllMessageSignature:
		err = r.readEmpty("DISCARD_ALL", size, handler.HandleDiscardAll)
	case messages.PullAllMessageSignature:
		err = r.readEmpty("PULL_ALL", size, handler.HandlePullAll)
	case messages.AckFailureMessageSignature:
		err = r.readEmpty("ACK_FAILURE", size, handler.HandleAckFailure)
	case messages.ResetMessageSignature:
		err = r.readEmpty("RESET", size, handler.HandleReset)
	case messages.SuccessMessageSignature:
		err = r.readSuccess(size, handler)
	case messages.RecordMessageSignature:
		err = r.readRecord(size, handler)
	case messages.FailureMessageSignature:
		err = r.readFailure(size, handler)
	case messages.IgnoredMessageSignature:
		err = r.readEmpty("IGNORED", size, handler.HandleIgnored)
	default:
		err = &errors.UnexpectedMessage{Signature: signature}
	}
	if err != nil {
		return err
	}

	return r.in.MessageBoundary()
}

func (r *MessageReader) readInit(size int, handler MessageHandler) error {
	if size != 2 {
		return &errors.InvalidStructSize{StructName: "INIT", Expected: 2, Actual: int64(size)}
	}
	clientName, err := r.unpacker.UnpackString()
	if err != nil {
		return err
	}
	authToken, err := r.unpacker.UnpackMap()
	if err != nil {
		return err
	}
	return handler.HandleInit(clientName, authToken)
}

func (r *MessageReader) readRun(size int, handler MessageHandler) error {
	if size != 2 {
		return &errors.InvalidStructSize{StructName: "RUN", Expected: 2, Actual: int64(size)}
	}
	statement, err := r.unpacker.UnpackString()
	if err != nil {
		return err
	}
	parameters, err := r.unpacker.UnpackMap()
	if err != nil {
		return err
	}
	return handler.HandleRun(statement, parameters)
}

func (r *MessageReader) readEmpty(name string, size int, handle func() error) error {
	if size != 0 {
		return &errors.InvalidStructSize{StructName: name, Expected: 0, Actual: int64(size)}
	}
	return handle()
}

func (r *MessageReader) readSuccess(size int, handler MessageHandler) error {
	if size != 1 {
		return &errors.InvalidStructSize{StructName: "SUCCESS", Expected: 1, Actual: int64(size)}
	}
	metadata, err := r.unpacker.UnpackMap()
	if err != nil {
		return err
	}
	return handler.HandleSuccess(metadata)
}

func (r *MessageReader) readRecord(size int, handler MessageHandler) error {
	if size != 1 {
		return &errors.InvalidStructSize{StructName: "RECORD", Expected: 1, Actual: int64(size)}
	}
	fields, err := r.unpacker.UnpackList()
	if err != nil {
		return err
	}
	return handler.HandleRecord(fields)
}

func (r *MessageReader) readFailure(size int, handler MessageHandler) error {
	if size != 1 {
		return &errors.InvalidStructSize{StructName: "FAILURE", Expected: 1, Actual: int64(size)}
	}
	metadata, err := r.unpacker.UnpackMap()
	if err != nil {
		return err
	}
	code, _ := metadata["code"].(string)
	message, _ := metadata["message"].(string)
	return handler.HandleFailure(code, message)
}
