package bolt

import (
	stderrors "errors"
	"time"

	"github.com/graphwire/bolt/errors"
	"github.com/graphwire/bolt/log"
)

// PooledConnection wraps a Connection owned by a pool. It tracks whether the
// connection can be reused, recovers the session with ACK_FAILURE after
// recoverable server failures, and turns Close into a return to the pool.
type PooledConnection struct {
	delegate Connection
	release  func(*PooledConnection)
	clock    Clock

	lastUsed      time.Time
	unrecoverable bool
	onError       func(error)
}

// NewPooledConnection wraps delegate; release is invoked on Close to hand
// the connection back to its pool
func NewPooledConnection(delegate Connection, clock Clock, release func(*PooledConnection)) *PooledConnection {
	return &PooledConnection{
		delegate: delegate,
		release:  release,
		clock:    clock,
		lastUsed: clock.Now(),
	}
}

// OnError registers a callback invoked with every error a delegate operation
// produces, before the error is returned
func (p *PooledConnection) OnError(fn func(error)) {
	p.onError = fn
}

// HasUnrecoverableErrors reports whether the connection must be disposed
// instead of reused
func (p *PooledConnection) HasUnrecoverableErrors() bool {
	return p.unrecoverable
}

// IdleTime returns how long the connection has been out of use
func (p *PooledConnection) IdleTime() time.Duration {
	return p.clock.Now().Sub(p.lastUsed)
}

// UpdateTimestamp marks the connection as used now
func (p *PooledConnection) UpdateTimestamp() {
	p.lastUsed = p.clock.Now()
}

func (p *PooledConnection) Init(clientName string, authToken map[string]interface{}) error {
	return p.handleError(p.delegate.Init(clientName, authToken))
}

func (p *PooledConnection) Run(statement string, parameters map[string]interface{}, col Collector) error {
	return p.handleError(p.delegate.Run(statement, parameters, col))
}

func (p *PooledConnection) DiscardAll(col Collector) error {
	return p.handleError(p.delegate.DiscardAll(col))
}

func (p *PooledConnection) PullAll(col Collector) error {
	return p.handleError(p.delegate.PullAll(col))
}

func (p *PooledConnection) AckFailure(col Collector) error {
	return p.handleError(p.delegate.AckFailure(col))
}

func (p *PooledConnection) Reset(col Collector) error {
	return p.handleError(p.delegate.Reset(col))
}

func (p *PooledConnection) Flush() error {
	return p.handleError(p.delegate.Flush())
}

func (p *PooledConnection) ReceiveOne() error {
	return p.handleError(p.delegate.ReceiveOne())
}

func (p *PooledConnection) Sync() error {
	return p.handleError(p.delegate.Sync())
}

func (p *PooledConnection) ResetAsync() error {
	return p.delegate.ResetAsync()
}

func (p *PooledConnection) IsAckFailureMuted() bool {
	return p.delegate.IsAckFailureMuted()
}

func (p *PooledConnection) Server() string {
	return p.delegate.Server()
}

func (p *PooledConnection) Address() string {
	return p.delegate.Address()
}

func (p *PooledConnection) IsOpen() bool {
	return p.delegate.IsOpen()
}

// Close returns the connection to its pool rather than closing the socket
func (p *PooledConnection) Close() error {
	p.UpdateTimestamp()
	if p.release != nil {
		p.release(p)
	}
	return nil
}

// Dispose closes the underlying connection for real
func (p *PooledConnection) Dispose() error {
	return p.delegate.Close()
}

// handleError classifies an error from a delegate operation. An
// unrecoverable server failure poisons the connection; a recoverable one is
// acknowledged right away so the session can continue, unless a RESET is
// already in flight.
func (p *PooledConnection) handleError(err error) error {
	if err == nil {
		return nil
	}
	var failure *errors.ServerFailure
	if stderrors.As(err, &failure) {
		if failure.IsUnrecoverable() {
			p.unrecoverable = true
		} else if !p.delegate.IsAckFailureMuted() {
			if ackErr := p.ackFailure(); ackErr != nil {
				err = &errors.WithSuppressed{Err: err, Suppressed: ackErr}
			}
		}
	}
	if p.onError != nil {
		p.onError(err)
	}
	return err
}

// ackFailure performs a complete ACK_FAILURE round trip
func (p *PooledConnection) ackFailure() error {
	if err := p.delegate.AckFailure(NoOpCollector{}); err != nil {
		return err
	}
	if err := p.delegate.Sync(); err != nil {
		log.Infof("failed to acknowledge server failure on %s: %v", p.delegate.Address(), err)
		return err
	}
	return nil
}
