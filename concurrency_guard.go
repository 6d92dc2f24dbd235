package bolt

import (
	"sync/atomic"

	"github.com/graphwire/bolt/errors"
)

const multipleLocationsMsg = "You are using a session from multiple locations at the same time, " +
	"which is not supported. If you want to use multiple threads, you should ensure that each session is " +
	"used by only one thread at a time. One way to achieve that is to give each thread its own session and result."

// ConcurrencyGuardingConnection rejects overlapping use of a connection
// instead of corrupting the message stream. Every operation claims the
// connection for its duration; a second caller arriving while it is claimed
// gets an error. ResetAsync is deliberately unguarded since its purpose is to
// interrupt an operation in progress on another goroutine.
type ConcurrencyGuardingConnection struct {
	delegate Connection
	inUse    atomic.Bool
}

// NewConcurrencyGuardingConnection wraps delegate with overlap detection
func NewConcurrencyGuardingConnection(delegate Connection) *ConcurrencyGuardingConnection {
	return &ConcurrencyGuardingConnection{delegate: delegate}
}

func (c *ConcurrencyGuardingConnection) acquire() error {
	if !c.inUse.CompareAndSwap(false, true) {
		return &errors.ClientError{Message: multipleLocationsMsg}
	}
	return nil
}

func (c *ConcurrencyGuardingConnection) release() {
	c.inUse.Store(false)
}

func (c *ConcurrencyGuardingConnection) Init(clientName string, authToken map[string]interface{}) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	return c.delegate.Init(clientName, authToken)
}

func (c *ConcurrencyGuardingConnection) Run(statement string, parameters map[string]interface{}, col Collector) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	return c.delegate.Run(statement, parameters, col)
}

func (c *ConcurrencyGuardingConnection) DiscardAll(col Collector) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	return c.delegate.DiscardAll(col)
}

func (c *ConcurrencyGuardingConnection) PullAll(col Collector) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	return c.delegate.PullAll(col)
}

func (c *ConcurrencyGuardingConnection) AckFailure(col Collector) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	return c.delegate.AckFailure(col)
}

func (c *ConcurrencyGuardingConnection) Reset(col Collector) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	return c.delegate.Reset(col)
}

func (c *ConcurrencyGuardingConnection) Flush() error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	return c.delegate.Flush()
}

func (c *ConcurrencyGuardingConnection) ReceiveOne() error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	return c.delegate.ReceiveOne()
}

func (c *ConcurrencyGuardingConnection) Sync() error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	return c.delegate.Sync()
}

// ResetAsync passes straight through; it must work while another goroutine
// holds the connection
func (c *ConcurrencyGuardingConnection) ResetAsync() error {
	return c.delegate.ResetAsync()
}

func (c *ConcurrencyGuardingConnection) IsAckFailureMuted() bool {
	return c.delegate.IsAckFailureMuted()
}

func (c *ConcurrencyGuardingConnection) Server() string {
	return c.delegate.Server()
}

func (c *ConcurrencyGuardingConnection) Address() string {
	return c.delegate.Address()
}

func (c *ConcurrencyGuardingConnection) IsOpen() bool {
	return c.delegate.IsOpen()
}

func (c *ConcurrencyGuardingConnection) Close() error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	return c.delegate.Close()
}
