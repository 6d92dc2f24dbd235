package bolt

import (
	"sync"
	"sync/atomic"

	"github.com/graphwire/bolt/errors"
	"github.com/graphwire/bolt/messages"
)

// Connection is a logical session with a Bolt server. Request methods queue
// messages; nothing hits the wire until Flush or Sync. Responses are routed
// to the collectors given with each request, in request order.
type Connection interface {
	// Init authenticates the session and must complete before any other
	// request. It is synchronous.
	Init(clientName string, authToken map[string]interface{}) error
	// Run queues a RUN request
	Run(statement string, parameters map[string]interface{}, c Collector) error
	// DiscardAll queues a DISCARD_ALL request
	DiscardAll(c Collector) error
	// PullAll queues a PULL_ALL request
	PullAll(c Collector) error
	// AckFailure queues an ACK_FAILURE request
	AckFailure(c Collector) error
	// Reset queues a RESET request
	Reset(c Collector) error
	// Flush sends all queued requests
	Flush() error
	// ReceiveOne consumes a single server response
	ReceiveOne() error
	// Sync flushes queued requests and consumes responses until every
	// collector has completed
	Sync() error
	// ResetAsync interrupts the session from another goroutine: it sends
	// a RESET immediately and poisons the session until the matching
	// SUCCESS is consumed
	ResetAsync() error
	// IsAckFailureMuted reports whether failures must not be acknowledged
	// because a RESET is already in flight
	IsAckFailureMuted() bool
	// Server returns the server identification captured during Init
	Server() string
	// Address returns the remote host:port
	Address() string
	// IsOpen reports whether the underlying socket is usable
	IsOpen() bool
	// Close tears down the underlying socket
	Close() error
}

// SocketConnection implements Connection over a SocketClient
type SocketConnection struct {
	socket  *SocketClient
	handler *ResponseHandler

	// mu guards pending and the socket write path
	mu      sync.Mutex
	pending []messages.Message

	interrupted     atomic.Bool
	ackFailureMuted atomic.Bool

	server string
}

// Connect dials address and returns a started, uninitialized connection
func Connect(address string, config *Config) (*SocketConnection, error) {
	socket := NewSocketClient(address, config)
	if err := socket.Start(); err != nil {
		return nil, err
	}
	return &SocketConnection{
		socket:  socket,
		handler: NewResponseHandler(),
	}, nil
}

// Init sends INIT and waits for the server's verdict
func (c *SocketConnection) Init(clientName string, authToken map[string]interface{}) error {
	collector := &InitCollector{}
	if err := c.queueMessage(messages.NewInitMessage(clientName, authToken), collector); err != nil {
		return err
	}
	if err := c.Sync(); err != nil {
		return err
	}
	c.server = collector.Server()
	return nil
}

// Run queues a RUN request
func (c *SocketConnection) Run(statement string, parameters map[string]interface{}, col Collector) error {
	return c.queueMessage(messages.NewRunMessage(statement, parameters), col)
}

// DiscardAll queues a DISCARD_ALL request
func (c *SocketConnection) DiscardAll(col Collector) error {
	return c.queueMessage(messages.NewDiscardAllMessage(), col)
}

// PullAll queues a PULL_ALL request
func (c *SocketConnection) PullAll(col Collector) error {
	return c.queueMessage(messages.NewPullAllMessage(), col)
}

// AckFailure queues an ACK_FAILURE request
func (c *SocketConnection) AckFailure(col Collector) error {
	return c.queueMessage(messages.NewAckFailureMessage(), col)
}

// Reset queues a RESET request
func (c *SocketConnection) Reset(col Collector) error {
	return c.queueMessage(messages.NewResetMessage(), col)
}

// Flush sends all queued requests
func (c *SocketConnection) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureNotInterrupted(); err != nil {
		return err
	}
	return c.flush()
}

// ReceiveOne consumes a single server response
func (c *SocketConnection) ReceiveOne() error {
	if err := c.socket.ReceiveOne(c.handler); err != nil {
		return err
	}
	return c.assertNoServerFailure()
}

// Sync flushes queued requests and consumes responses until every collector
// has completed
func (c *SocketConnection) Sync() error {
	if err := c.Flush(); err != nil {
		return err
	}
	for c.handler.CollectorsWaiting() > 0 {
		if err := c.ReceiveOne(); err != nil {
			return err
		}
	}
	return nil
}

// ResetAsync interrupts the session. Safe to call from another goroutine
// while the owning goroutine is mid-exchange: only a RESET goes out, and the
// interrupted state holds until its SUCCESS comes back.
func (c *SocketConnection) ResetAsync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	collector := &ResetCollector{doneSuccess: func() {
		c.interrupted.Store(false)
		c.ackFailureMuted.Store(false)
	}}
	c.pending = append(c.pending, messages.NewResetMessage())
	c.handler.EnqueueCollector(collector)
	if err := c.flush(); err != nil {
		return err
	}
	c.interrupted.Store(true)
	c.ackFailureMuted.Store(true)
	return nil
}

// IsAckFailureMuted reports whether a RESET is in flight
func (c *SocketConnection) IsAckFailureMuted() bool {
	return c.ackFailureMuted.Load()
}

// Server returns the server identification captured during Init
func (c *SocketConnection) Server() string {
	return c.server
}

// Address returns the remote host:port
func (c *SocketConnection) Address() string {
	return c.socket.Address()
}

// IsOpen reports whether the underlying socket is usable
func (c *SocketConnection) IsOpen() bool {
	return c.socket.IsOpen()
}

// Close tears down the underlying socket
func (c *SocketConnection) Close() error {
	c.socket.Stop()
	return nil
}

func (c *SocketConnection) queueMessage(msg messages.Message, col Collector) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureNotInterrupted(); err != nil {
		return err
	}
	c.pending = append(c.pending, msg)
	c.handler.EnqueueCollector(col)
	return nil
}

// flush requires mu to be held
func (c *SocketConnection) flush() error {
	if err := c.socket.Send(c.pending); err != nil {
		return err
	}
	c.pending = nil
	return nil
}

// ensureNotInterrupted drains outstanding responses while the session is
// interrupted, so the RESET's outcome is known before new work is queued.
// Requires mu to be held.
func (c *SocketConnection) ensureNotInterrupted() error {
	if !c.interrupted.Load() {
		return nil
	}
	for c.handler.CollectorsWaiting() > 0 {
		if err := c.ReceiveOne(); err != nil {
			return &errors.ClientError{
				Message: "An error has occurred due to the cancellation of executing a previous statement. " +
					"You received this error because the driver cannot verify that the session is no longer " +
					"in use. You may consider closing this session.",
				Cause: err,
			}
		}
	}
	return nil
}

// assertNoServerFailure surfaces a recorded FAILURE exactly once
func (c *SocketConnection) assertNoServerFailure() error {
	if !c.handler.ServerFailureOccurred() {
		return nil
	}
	failure := c.handler.ServerFailure()
	c.handler.ClearError()
	c.interrupted.Store(false)
	return failure
}
