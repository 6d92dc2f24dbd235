package bolt

import (
	"crypto/tls"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/graphwire/bolt/errors"
	"github.com/graphwire/bolt/log"
	"github.com/graphwire/bolt/messages"
)

var (
	// magicPreamble identifies the connection as a Bolt client
	magicPreamble = []byte{0x60, 0x60, 0xb0, 0x17}

	// supportedVersions proposes protocol version 1 followed by three
	// empty slots
	supportedVersions = []byte{
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
)

const (
	protocolVersion1 = 1
	// httpSignature is what an HTTP server echoes back when it receives
	// the handshake ("HTTP" in ASCII)
	httpSignature = 0x48545450
)

// SocketClient owns a single TCP (optionally TLS) connection to a Bolt
// server, performs the version handshake, and moves whole messages across it.
type SocketClient struct {
	address string
	config  *Config
	conn    net.Conn
	writer  *MessageWriter
	reader  *MessageReader
}

// NewSocketClient creates an unconnected SocketClient for the given
// host:port address
func NewSocketClient(address string, config *Config) *SocketClient {
	if config == nil {
		config = DefaultConfig()
	}
	return &SocketClient{
		address: address,
		config:  config,
	}
}

// Address returns the host:port this client connects to
func (s *SocketClient) Address() string {
	return s.address
}

// IsOpen reports whether the connection is established
func (s *SocketClient) IsOpen() bool {
	return s.conn != nil
}

// Start dials the server, negotiates TLS if configured, and performs the
// Bolt version handshake
func (s *SocketClient) Start() error {
	conn, err := net.DialTimeout("tcp", s.address, s.config.ConnectTimeout)
	if err != nil {
		return errors.NewCannotConnect(s.address, err)
	}

	if s.config.TLSConfig != nil {
		tlsConn := tls.Client(conn, s.config.TLSConfig)
		if err := tlsConn.Handshake(); err != nil {
			conn.Close()
			return errors.NewSSLFailure(err)
		}
		conn = tlsConn
	}

	if err := s.handshake(conn); err != nil {
		conn.Close()
		return err
	}

	s.conn = conn
	s.writer = NewMessageWriter(NewChunkedOutput(conn, s.config.ChunkSize))
	s.reader = NewMessageReader(NewChunkedInput(conn))
	log.Infof("connection established to %s, protocol version %d", s.address, protocolVersion1)
	return nil
}

func (s *SocketClient) handshake(conn net.Conn) error {
	request := make([]byte, 0, len(magicPreamble)+len(supportedVersions))
	request = append(request, magicPreamble...)
	request = append(request, supportedVersions...)
	if _, err := conn.Write(request); err != nil {
		return errors.NewWriteFailure(err)
	}

	response := make([]byte, 4)
	if _, err := io.ReadFull(conn, response); err != nil {
		// A clean close here usually means the server refused us at
		// the network level, e.g. a TLS-only listener
		return errors.NewCannotConnect(s.address, errors.NewReadFailure(err))
	}

	switch version := binary.BigEndian.Uint32(response); version {
	case protocolVersion1:
		return nil
	case 0:
		return &errors.HandshakeFailure{Version: version, Message: "The server does not support any of the " +
			"protocol versions supported by this driver. Ensure that you are using driver and server versions " +
			"that are compatible with one another."}
	case httpSignature:
		return &errors.HandshakeFailure{Version: version, Message: "Server responded HTTP. Make sure you are not " +
			"trying to connect to the http endpoint (HTTP defaults to port 7474 whereas BOLT defaults to port 7687)"}
	default:
		return &errors.HandshakeFailure{Version: version,
			Message: fmt.Sprintf("Protocol error, server suggested unexpected protocol version: %d", version)}
	}
}

// Send writes the given request messages and flushes them if any were
// written. A stopped client refuses to send.
func (s *SocketClient) Send(msgs []messages.Message) error {
	if s.conn == nil {
		return &errors.ConnectionStopped{Address: s.address}
	}
	for _, msg := range msgs {
		log.Tracef("C: %T %v", msg, msg.AllFields())
		if err := s.writer.Write(msg); err != nil {
			return err
		}
	}
	if len(msgs) > 0 {
		return s.writer.Flush()
	}
	return nil
}

// ReceiveOne reads a single server message and dispatches it to handler. If
// the server reports a protocol violation the connection is stopped and the
// failure returned.
func (s *SocketClient) ReceiveOne(handler *ResponseHandler) error {
	if s.conn == nil {
		return &errors.ConnectionStopped{Address: s.address}
	}
	if err := s.reader.Read(handler); err != nil {
		return err
	}
	if handler.ProtocolViolationErrorOccurred() {
		failure := handler.ServerFailure()
		handler.ClearError()
		s.Stop()
		return failure
	}
	return nil
}

// ReceiveAll reads server messages until no collectors are waiting
func (s *SocketClient) ReceiveAll(handler *ResponseHandler) error {
	for handler.CollectorsWaiting() > 0 {
		if err := s.ReceiveOne(handler); err != nil {
			return err
		}
	}
	return nil
}

// Stop closes the connection. Close errors are logged, not returned; a
// stopped client stays stopped.
func (s *SocketClient) Stop() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		log.Errorf("error closing connection to %s: %v", s.address, err)
	}
	s.conn = nil
	s.writer = nil
	s.reader = nil
}
