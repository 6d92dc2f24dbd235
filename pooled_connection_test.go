package bolt

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/graphwire/bolt/errors"
)

// stubConnection is a scriptable Connection for tests. syncErrs is consumed
// one error per Sync call; nil entries mean success.
type stubConnection struct {
	calls    map[string]int
	syncErrs []error
	ackMuted bool
	closed   bool
}

func (s *stubConnection) called(name string) {
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[name]++
}

func (s *stubConnection) Init(clientName string, authToken map[string]interface{}) error {
	s.called("Init")
	return nil
}

func (s *stubConnection) Run(statement string, parameters map[string]interface{}, c Collector) error {
	s.called("Run")
	return nil
}

func (s *stubConnection) DiscardAll(c Collector) error {
	s.called("DiscardAll")
	return nil
}

func (s *stubConnection) PullAll(c Collector) error {
	s.called("PullAll")
	return nil
}

func (s *stubConnection) AckFailure(c Collector) error {
	s.called("AckFailure")
	return nil
}

func (s *stubConnection) Reset(c Collector) error {
	s.called("Reset")
	return nil
}

func (s *stubConnection) Flush() error {
	s.called("Flush")
	return nil
}

func (s *stubConnection) ReceiveOne() error {
	s.called("ReceiveOne")
	return nil
}

func (s *stubConnection) Sync() error {
	s.called("Sync")
	if len(s.syncErrs) > 0 {
		err := s.syncErrs[0]
		s.syncErrs = s.syncErrs[1:]
		return err
	}
	return nil
}

func (s *stubConnection) ResetAsync() error {
	s.called("ResetAsync")
	return nil
}

func (s *stubConnection) IsAckFailureMuted() bool { return s.ackMuted }
func (s *stubConnection) Server() string          { return "StubBolt/1.0" }
func (s *stubConnection) Address() string         { return "stub:7687" }
func (s *stubConnection) IsOpen() bool            { return !s.closed }

func (s *stubConnection) Close() error {
	s.called("Close")
	s.closed = true
	return nil
}

// fakeClock hands out a controllable time
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func serverFailure(code string) *errors.ServerFailure {
	return &errors.ServerFailure{Code: code, Message: "msg"}
}

func TestPooledConnectionRecoverableFailuresAreAcked(t *testing.T) {
	codes := []string{
		"Neo.ClientError.General.ReadOnly",
		"Neo.TransientError.General.ReadOnly",
	}
	for _, code := range codes {
		stub := &stubConnection{syncErrs: []error{serverFailure(code)}}
		pooled := NewPooledConnection(stub, SystemClock{}, nil)

		err := pooled.Sync()
		var failure *errors.ServerFailure
		if !stderrors.As(err, &failure) || failure.Code != code {
			t.Fatalf("%s: expected the failure to surface, got %v", code, err)
		}
		if pooled.HasUnrecoverableErrors() {
			t.Fatalf("%s: a recoverable failure must not poison the connection", code)
		}
		if stub.calls["AckFailure"] != 1 {
			t.Fatalf("%s: expected one ACK_FAILURE, got %d", code, stub.calls["AckFailure"])
		}
		// the initial Sync plus the ack round trip
		if stub.calls["Sync"] != 2 {
			t.Fatalf("%s: expected two Sync calls, got %d", code, stub.calls["Sync"])
		}
	}
}

func TestPooledConnectionUnrecoverableFailuresPoison(t *testing.T) {
	codes := []string{
		"Neo.ClientError.Request.Invalid",
		"Neo.ClientError.Request.InvalidFormat",
		"Neo.DatabaseError.General.UnknownError",
	}
	for _, code := range codes {
		stub := &stubConnection{syncErrs: []error{serverFailure(code)}}
		pooled := NewPooledConnection(stub, SystemClock{}, nil)

		if err := pooled.Sync(); err == nil {
			t.Fatalf("%s: expected the failure to surface", code)
		}
		if !pooled.HasUnrecoverableErrors() {
			t.Fatalf("%s: expected the connection to be poisoned", code)
		}
		if stub.calls["AckFailure"] != 0 {
			t.Fatalf("%s: an unrecoverable failure must not be acknowledged", code)
		}
	}
}

func TestPooledConnectionMutedFailuresNotAcked(t *testing.T) {
	stub := &stubConnection{
		syncErrs: []error{serverFailure("Neo.ClientError.General.ReadOnly")},
		ackMuted: true,
	}
	pooled := NewPooledConnection(stub, SystemClock{}, nil)

	if err := pooled.Sync(); err == nil {
		t.Fatal("Expected the failure to surface")
	}
	if stub.calls["AckFailure"] != 0 {
		t.Fatal("A muted connection must not acknowledge failures")
	}
	if pooled.HasUnrecoverableErrors() {
		t.Fatal("A recoverable failure must not poison the connection")
	}
}

func TestPooledConnectionFailedAckIsSuppressed(t *testing.T) {
	ackErr := &errors.EndOfStream{Expected: 2}
	stub := &stubConnection{
		syncErrs: []error{serverFailure("Neo.ClientError.General.ReadOnly"), ackErr},
	}
	pooled := NewPooledConnection(stub, SystemClock{}, nil)

	err := pooled.Sync()
	if err == nil {
		t.Fatal("Expected the failure to surface")
	}
	suppressed, ok := err.(*errors.WithSuppressed)
	if !ok {
		t.Fatalf("Expected WithSuppressed, got %T: %v", err, err)
	}
	var failure *errors.ServerFailure
	if !stderrors.As(suppressed.Err, &failure) {
		t.Fatalf("The primary must stay the server failure, got %v", suppressed.Err)
	}
	if suppressed.Suppressed == nil {
		t.Fatal("Expected the ack error to be attached")
	}
}

func TestPooledConnectionTransportErrorPassesThrough(t *testing.T) {
	transportErr := &errors.EndOfStream{Expected: 4}
	stub := &stubConnection{syncErrs: []error{transportErr}}
	pooled := NewPooledConnection(stub, SystemClock{}, nil)

	if err := pooled.Sync(); err != transportErr {
		t.Fatalf("Expected the transport error unchanged, got %v", err)
	}
	if stub.calls["AckFailure"] != 0 {
		t.Fatal("Transport errors must not trigger ACK_FAILURE")
	}
}

func TestPooledConnectionOnErrorCallback(t *testing.T) {
	stub := &stubConnection{syncErrs: []error{serverFailure("Neo.DatabaseError.General.UnknownError")}}
	pooled := NewPooledConnection(stub, SystemClock{}, nil)

	var seen error
	pooled.OnError(func(err error) { seen = err })

	err := pooled.Sync()
	if seen == nil || seen != err {
		t.Fatalf("Expected the callback to see the returned error, got %v", seen)
	}
}

func TestPooledConnectionCloseReleases(t *testing.T) {
	stub := &stubConnection{}
	released := false
	var releasedConn *PooledConnection
	pooled := NewPooledConnection(stub, SystemClock{}, func(c *PooledConnection) {
		released = true
		releasedConn = c
	})

	if err := pooled.Close(); err != nil {
		t.Fatalf("An error occurred closing: %s", err)
	}
	if !released || releasedConn != pooled {
		t.Fatal("Close must hand the connection back to the pool")
	}
	if stub.calls["Close"] != 0 {
		t.Fatal("Close must not close the underlying connection")
	}

	if err := pooled.Dispose(); err != nil {
		t.Fatalf("An error occurred disposing: %s", err)
	}
	if stub.calls["Close"] != 1 {
		t.Fatal("Dispose must close the underlying connection")
	}
}

func TestPooledConnectionIdleTime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	pooled := NewPooledConnection(&stubConnection{}, clock, nil)

	clock.advance(300 * time.Millisecond)
	if pooled.IdleTime() != 300*time.Millisecond {
		t.Fatalf("Unexpected idle time: %s", pooled.IdleTime())
	}

	pooled.UpdateTimestamp()
	if pooled.IdleTime() != 0 {
		t.Fatalf("Idle time should reset, got %s", pooled.IdleTime())
	}
}
