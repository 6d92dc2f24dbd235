package bolt

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/graphwire/bolt/messages"
)

// serverMsg is one request as seen by the fake server
type serverMsg struct {
	kind       string
	clientName string
	authToken  map[string]interface{}
	statement  string
	parameters map[string]interface{}
}

// serverIO writes scripted responses back to the client
type serverIO struct {
	writer *MessageWriter
}

func (s *serverIO) success(metadata map[string]interface{}) {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	s.writer.Write(messages.NewSuccessMessage(metadata))
}

func (s *serverIO) record(fields ...interface{}) {
	s.writer.Write(messages.NewRecordMessage(fields))
}

func (s *serverIO) failure(code, message string) {
	s.writer.Write(messages.NewFailureMessage(map[string]interface{}{"code": code, "message": message}))
}

func (s *serverIO) ignored() {
	s.writer.Write(messages.NewIgnoredMessage())
}

// scriptedHandler feeds each decoded request to the server script
type scriptedHandler struct {
	io      *serverIO
	respond func(*serverIO, serverMsg)
}

func (h *scriptedHandler) HandleInit(clientName string, authToken map[string]interface{}) error {
	h.respond(h.io, serverMsg{kind: "INIT", clientName: clientName, authToken: authToken})
	return nil
}

func (h *scriptedHandler) HandleRun(statement string, parameters map[string]interface{}) error {
	h.respond(h.io, serverMsg{kind: "RUN", statement: statement, parameters: parameters})
	return nil
}

func (h *scriptedHandler) HandleDiscardAll() error {
	h.respond(h.io, serverMsg{kind: "DISCARD_ALL"})
	return nil
}

func (h *scriptedHandler) HandlePullAll() error {
	h.respond(h.io, serverMsg{kind: "PULL_ALL"})
	return nil
}

func (h *scriptedHandler) HandleAckFailure() error {
	h.respond(h.io, serverMsg{kind: "ACK_FAILURE"})
	return nil
}

func (h *scriptedHandler) HandleReset() error {
	h.respond(h.io, serverMsg{kind: "RESET"})
	return nil
}

func (h *scriptedHandler) HandleSuccess(metadata map[string]interface{}) error  { return nil }
func (h *scriptedHandler) HandleRecord(fields []interface{}) error              { return nil }
func (h *scriptedHandler) HandleFailure(code string, message string) error      { return nil }
func (h *scriptedHandler) HandleIgnored() error                                 { return nil }

// startFakeServer runs a Bolt v1 server that answers every request through
// respond. It serves any number of connections until the test ends.
func startFakeServer(t *testing.T, respond func(*serverIO, serverMsg)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("An error occurred listening: %s", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveFakeConn(conn, respond)
		}
	}()
	return ln.Addr().String()
}

func serveFakeConn(conn net.Conn, respond func(*serverIO, serverMsg)) {
	defer conn.Close()

	handshake := make([]byte, 20)
	if _, err := io.ReadFull(conn, handshake); err != nil {
		return
	}
	if !bytes.Equal(handshake[:4], magicPreamble) {
		return
	}
	agreed := make([]byte, 4)
	binary.BigEndian.PutUint32(agreed, protocolVersion1)
	if _, err := conn.Write(agreed); err != nil {
		return
	}

	srvIO := &serverIO{writer: NewMessageWriter(NewChunkedOutput(conn, 8192))}
	handler := &scriptedHandler{io: srvIO, respond: respond}
	reader := NewMessageReader(NewChunkedInput(conn))
	for {
		if err := reader.Read(handler); err != nil {
			return
		}
		if err := srvIO.writer.Flush(); err != nil {
			return
		}
	}
}

// wellBehavedServer answers every request with plausible success responses
func wellBehavedServer(srv *serverIO, msg serverMsg) {
	switch msg.kind {
	case "INIT":
		srv.success(map[string]interface{}{"server": "FakeBolt/1.0"})
	case "RUN":
		srv.success(map[string]interface{}{"fields": []interface{}{"n"}})
	case "PULL_ALL":
		srv.record(int64(1))
		srv.success(map[string]interface{}{"type": "r"})
	default:
		srv.success(nil)
	}
}
