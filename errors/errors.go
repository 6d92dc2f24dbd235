// Package errors defines the internal error taxonomy of the driver.
//
// Errors fall into four families: transport errors (the ConnectionError
// interface), codec errors (the PackStreamError interface), server failures
// reported in-band by the database, and usage errors for API misuse. Internal
// errors are translated exactly once, at the public API boundary, via Public.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// ConnectionError marks transport-level failures. The underlying connection
// is dead and must be disposed.
type ConnectionError interface {
	error
	connectionError()
}

// PackStreamError marks serialization and deserialization failures, including
// in-band server failures. Apart from a recoverable ServerFailure, these imply
// protocol desync and the connection must be disposed.
type PackStreamError interface {
	error
	packStreamError()
}

// CannotConnect is returned when no connection could be established, or when
// the server hung up before replying to the handshake.
type CannotConnect struct {
	Address string
	Cause   error
}

func NewCannotConnect(address string, cause error) *CannotConnect {
	return &CannotConnect{Address: address, Cause: pkgerrors.WithStack(cause)}
}

func (e *CannotConnect) Error() string {
	return fmt.Sprintf("unable to connect to %s: %v", e.Address, e.Cause)
}
func (e *CannotConnect) Unwrap() error    { return e.Cause }
func (e *CannotConnect) connectionError() {}

// ReadFailure is returned when a read on the byte channel fails.
type ReadFailure struct {
	Cause error
}

func NewReadFailure(cause error) *ReadFailure {
	return &ReadFailure{Cause: pkgerrors.WithStack(cause)}
}

func (e *ReadFailure) Error() string    { return fmt.Sprintf("read failure: %v", e.Cause) }
func (e *ReadFailure) Unwrap() error    { return e.Cause }
func (e *ReadFailure) connectionError() {}

// EndOfStream is returned when the server closes the connection while the
// client is waiting for data.
type EndOfStream struct {
	Expected int
	Data     string
}

func (e *EndOfStream) Error() string {
	data := e.Data
	if data == "" {
		data = "none"
	}
	return fmt.Sprintf("connection terminated while receiving data. This can happen due to network "+
		"instabilities, or due to restarts of the database. Expected %d bytes, received %s", e.Expected, data)
}
func (e *EndOfStream) connectionError() {}

// WriteFailure is returned when a write on the byte channel fails.
type WriteFailure struct {
	Cause error
}

func NewWriteFailure(cause error) *WriteFailure {
	return &WriteFailure{Cause: pkgerrors.WithStack(cause)}
}

func (e *WriteFailure) Error() string    { return fmt.Sprintf("write failure: %v", e.Cause) }
func (e *WriteFailure) Unwrap() error    { return e.Cause }
func (e *WriteFailure) connectionError() {}

// ConnectionClosed is returned when the server closes the connection while the
// client is sending data.
type ConnectionClosed struct {
	Expected int
	Data     string
}

func (e *ConnectionClosed) Error() string {
	data := e.Data
	if data == "" {
		data = "none"
	}
	return fmt.Sprintf("connection terminated while sending data. This can happen due to network "+
		"instabilities, or due to restarts of the database. Expected %d bytes, wrote %s", e.Expected, data)
}
func (e *ConnectionClosed) connectionError() {}

// ConnectionStopped is returned when an operation is attempted on a
// connection that has already been stopped, either by the user closing it or
// by the driver tearing it down after a protocol violation.
type ConnectionStopped struct {
	Address string
}

func (e *ConnectionStopped) Error() string {
	return fmt.Sprintf("connection to %s has been closed and can no longer be used. Open a new session", e.Address)
}
func (e *ConnectionStopped) connectionError() {}

// SSLFailure wraps an error from the TLS layer. The TLS channel is opaque to
// the driver; only the failure itself is surfaced.
type SSLFailure struct {
	Cause error
}

func NewSSLFailure(cause error) *SSLFailure {
	return &SSLFailure{Cause: pkgerrors.WithStack(cause)}
}

func (e *SSLFailure) Error() string    { return fmt.Sprintf("TLS failure: %v", e.Cause) }
func (e *SSLFailure) Unwrap() error    { return e.Cause }
func (e *SSLFailure) connectionError() {}

// HandshakeFailure is returned when version negotiation fails. Version holds
// the four bytes the server replied with.
type HandshakeFailure struct {
	Version uint32
	Message string
}

func (e *HandshakeFailure) Error() string    { return e.Message }
func (e *HandshakeFailure) connectionError() {}

// ImproperlyClosed is returned when closing the byte channel itself fails.
type ImproperlyClosed struct {
	Cause error
}

func (e *ImproperlyClosed) Error() string    { return fmt.Sprintf("improperly closed connection: %v", e.Cause) }
func (e *ImproperlyClosed) Unwrap() error    { return e.Cause }
func (e *ImproperlyClosed) connectionError() {}

// InputFailure is returned when reading from the buffered or chunked input
// fails for a reason other than clean end of stream.
type InputFailure struct {
	Cause error
}

func NewInputFailure(cause error) *InputFailure {
	return &InputFailure{Cause: pkgerrors.WithStack(cause)}
}

func (e *InputFailure) Error() string    { return fmt.Sprintf("input failure: %v", e.Cause) }
func (e *InputFailure) Unwrap() error    { return e.Cause }
func (e *InputFailure) packStreamError() {}

// OutputFailure is returned when flushing packed data to the byte channel fails.
type OutputFailure struct {
	Cause error
}

func NewOutputFailure(cause error) *OutputFailure {
	return &OutputFailure{Cause: pkgerrors.WithStack(cause)}
}

func (e *OutputFailure) Error() string    { return fmt.Sprintf("output failure: %v", e.Cause) }
func (e *OutputFailure) Unwrap() error    { return e.Cause }
func (e *OutputFailure) packStreamError() {}

// EndOfInput is returned when the input ends in the middle of a value.
type EndOfInput struct {
	Expected int
}

func (e *EndOfInput) Error() string {
	return fmt.Sprintf("expected %d bytes available, but no more bytes accessible from underlying stream", e.Expected)
}
func (e *EndOfInput) packStreamError() {}

// InvalidChunkSize is returned for a chunk header that cannot be honored.
type InvalidChunkSize struct {
	Size int
}

func (e *InvalidChunkSize) Error() string    { return fmt.Sprintf("invalid chunk size: %d", e.Size) }
func (e *InvalidChunkSize) packStreamError() {}

// UnexpectedData is returned when a message boundary is reached with unread
// payload still in the current message.
type UnexpectedData struct {
	ContentHex string
	Size       int
}

func (e *UnexpectedData) Error() string {
	return fmt.Sprintf("left in the message content unread: buffer [%s], unread chunk size %d", e.ContentHex, e.Size)
}
func (e *UnexpectedData) packStreamError() {}

// StructureFieldOverflow is returned when packing a structure with more
// fields than the wire format can express.
type StructureFieldOverflow struct {
	Size int
}

func (e *StructureFieldOverflow) Error() string {
	return fmt.Sprintf("structures cannot have more than %d fields, requested %d", 1<<16-1, e.Size)
}
func (e *StructureFieldOverflow) packStreamError() {}

// InvalidStructureSignature is returned when a structure carries a signature
// other than the one the reader expected.
type InvalidStructureSignature struct {
	StructName string
	Expected   byte
	Actual     byte
}

func (e *InvalidStructureSignature) Error() string {
	return fmt.Sprintf("invalid message received, expected a `%s`, signature 0x%x. Received signature was 0x%x",
		e.StructName, e.Expected, e.Actual)
}
func (e *InvalidStructureSignature) packStreamError() {}

// InvalidStructSize is returned when a structure carries the wrong number of
// fields for its signature.
type InvalidStructSize struct {
	StructName string
	Expected   int
	Actual     int64
}

func (e *InvalidStructSize) Error() string {
	return fmt.Sprintf("invalid message received, serialized %s structures should have %d fields, "+
		"received %s structure has %d fields", e.StructName, e.Expected, e.StructName, e.Actual)
}
func (e *InvalidStructSize) packStreamError() {}

// CannotRepresent is returned when a 32-bit sized value exceeds what this
// platform can index.
type CannotRepresent struct {
	Type string
	Size int64
}

func (e *CannotRepresent) Error() string {
	return fmt.Sprintf("%s of size %d is too long for this platform", e.Type, e.Size)
}
func (e *CannotRepresent) packStreamError() {}

// UnsupportedType is returned when the unpacker meets a value type the caller
// cannot receive.
type UnsupportedType struct {
	Type string
}

func (e *UnsupportedType) Error() string    { return fmt.Sprintf("unknown value type: %s", e.Type) }
func (e *UnsupportedType) packStreamError() {}

// UnexpectedType is returned when the next marker byte does not introduce the
// requested type. Reserved marker bytes always produce this error.
type UnexpectedType struct {
	Actual   byte
	Type     string
	Expected []byte
}

func (e *UnexpectedType) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "expected a %s", e.Type)
	if len(e.Expected) > 0 {
		sep := " (denoted by "
		for i, b := range e.Expected {
			if i == len(e.Expected)-1 && i > 0 {
				sb.WriteString(" or ")
			} else {
				sb.WriteString(sep)
			}
			fmt.Fprintf(&sb, "%#x", b)
			sep = ", "
		}
		sb.WriteString(")")
	}
	fmt.Fprintf(&sb, ", but got: %#x", e.Actual)
	return sb.String()
}
func (e *UnexpectedType) packStreamError() {}

// UnexpectedMessage is returned when the reader meets a structure signature
// that is not a known message, or a message that is invalid in the current
// protocol state.
type UnexpectedMessage struct {
	Signature byte
}

func (e *UnexpectedMessage) Error() string {
	return fmt.Sprintf("unknown message type: %#x", e.Signature)
}
func (e *UnexpectedMessage) packStreamError() {}

// Unpackable is returned when the packer is handed a value of a type that has
// no PackStream representation.
type Unpackable struct {
	Value interface{}
}

func (e *Unpackable) Error() string {
	return fmt.Sprintf("cannot pack <%+v> of type %T", e.Value, e.Value)
}
func (e *Unpackable) packStreamError() {}

// ServerFailure is a failure reported in-band by the server through a FAILURE
// message. Codes are dot-separated: Neo.<classification>.<category>.<title>.
type ServerFailure struct {
	Code    string
	Message string
}

func (e *ServerFailure) Error() string {
	return fmt.Sprintf("server failure: %s (%s)", e.Code, e.Message)
}
func (e *ServerFailure) packStreamError() {}

// IsProtocolViolation reports whether the server rejected the request as
// malformed. The session cannot be trusted afterwards.
func (e *ServerFailure) IsProtocolViolation() bool {
	return strings.HasPrefix(e.Code, "Neo.ClientError.Request")
}

// IsUnrecoverable reports whether the connection must be disposed rather than
// recovered with ACK_FAILURE.
func (e *ServerFailure) IsUnrecoverable() bool {
	return e.IsProtocolViolation() ||
		!(strings.Contains(e.Code, "ClientError") || strings.Contains(e.Code, "TransientError"))
}

// Classification returns the second segment of the failure code, e.g.
// "ClientError" for "Neo.ClientError.Statement.SyntaxError".
func (e *ServerFailure) Classification() string {
	parts := strings.Split(e.Code, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// PoolFull is returned when a connection could not be acquired from the pool
// before the acquisition timeout elapsed.
type PoolFull struct {
	Address string
	Cause   error
}

func (e *PoolFull) Error() string {
	return fmt.Sprintf("failed to acquire a connection to %s from the pool within the configured timeout: %v",
		e.Address, e.Cause)
}
func (e *PoolFull) Unwrap() error { return e.Cause }

// WithSuppressed attaches a secondary error raised while handling Err, for
// example a failed ACK_FAILURE issued in response to the primary failure.
// Unwrap exposes the primary so classification still applies.
type WithSuppressed struct {
	Err        error
	Suppressed error
}

func (e *WithSuppressed) Error() string {
	return fmt.Sprintf("%v (suppressed: %v)", e.Err, e.Suppressed)
}
func (e *WithSuppressed) Unwrap() error { return e.Err }
