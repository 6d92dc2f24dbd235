package bolt

import (
	"context"
	"sync"

	pool "github.com/jolestar/go-commons-pool"

	"github.com/graphwire/bolt/errors"
	"github.com/graphwire/bolt/log"
)

// Connector establishes a new, initialized connection to an address
type Connector func(address string) (Connection, error)

// ConnectionPool hands out pooled connections per server address. Acquired
// connections are wrapped so that Close returns them to the pool, where they
// are health-checked before reuse; connections that went bad are disposed.
type ConnectionPool struct {
	settings  PoolSettings
	connector Connector
	clock     Clock

	mu     sync.Mutex
	pools  map[string]*pool.ObjectPool
	closed bool
}

// NewConnectionPool creates a ConnectionPool that uses connector to open new
// connections
func NewConnectionPool(settings PoolSettings, connector Connector, clock Clock) *ConnectionPool {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ConnectionPool{
		settings:  settings,
		connector: connector,
		clock:     clock,
		pools:     make(map[string]*pool.ObjectPool),
	}
}

// Acquire returns a connection to address, reusing an idle one when
// available. It blocks up to the acquisition timeout when all slots are
// taken, then fails with a pool exhaustion error.
func (cp *ConnectionPool) Acquire(address string) (Connection, error) {
	p, err := cp.poolFor(address)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cp.settings.AcquireTimeout)
	defer cancel()

	obj, err := p.BorrowObject(ctx)
	if err != nil {
		// a timed-out borrow means exhaustion; anything else is a
		// connect failure that should keep its own identity
		if ctx.Err() != nil {
			return nil, &errors.PoolFull{Address: address, Cause: err}
		}
		return nil, err
	}

	conn := obj.(*PooledConnection)
	conn.UpdateTimestamp()
	return NewConcurrencyGuardingConnection(conn), nil
}

// Close disposes every pooled connection and refuses further acquisition
func (cp *ConnectionPool) Close() {
	cp.mu.Lock()
	pools := cp.pools
	cp.pools = make(map[string]*pool.ObjectPool)
	cp.closed = true
	cp.mu.Unlock()

	ctx := context.Background()
	for address, p := range pools {
		log.Infof("closing connection pool for %s", address)
		p.Close(ctx)
	}
}

func (cp *ConnectionPool) poolFor(address string) (*pool.ObjectPool, error) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.closed {
		return nil, &errors.ClientError{Message: "connection pool is closed"}
	}
	if p, ok := cp.pools[address]; ok {
		return p, nil
	}

	factory := &connectionFactory{pool: cp, address: address}
	config := pool.NewDefaultPoolConfig()
	config.MaxTotal = cp.settings.MaxSessions
	config.MaxIdle = cp.settings.MaxSessions
	config.TestOnBorrow = true
	config.BlockWhenExhausted = true
	// oldest idle connection is reused first
	config.LIFO = false

	p := pool.NewObjectPool(context.Background(), factory, config)
	cp.pools[address] = p
	return p, nil
}

// release is invoked when a caller closes a pooled connection. Connections
// with unrecoverable errors are disposed; the rest must survive a RESET
// round trip before going back on the shelf.
func (cp *ConnectionPool) release(conn *PooledConnection) {
	p := cp.lookupPool(conn.Address())
	ctx := context.Background()
	if p == nil {
		if err := conn.Dispose(); err != nil {
			log.Errorf("error disposing connection to %s: %v", conn.Address(), err)
		}
		return
	}
	if conn.HasUnrecoverableErrors() || !conn.IsOpen() {
		if err := p.InvalidateObject(ctx, conn); err != nil {
			log.Errorf("error invalidating connection to %s: %v", conn.Address(), err)
		}
		return
	}
	if err := resetAndSync(conn); err != nil {
		log.Infof("disposing connection to %s that failed its health check: %v", conn.Address(), err)
		if err := p.InvalidateObject(ctx, conn); err != nil {
			log.Errorf("error invalidating connection to %s: %v", conn.Address(), err)
		}
		return
	}
	if err := p.ReturnObject(ctx, conn); err != nil {
		log.Errorf("error returning connection to pool for %s: %v", conn.Address(), err)
	}
}

func (cp *ConnectionPool) lookupPool(address string) *pool.ObjectPool {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.pools[address]
}

// resetAndSync round-trips a RESET to prove the connection is alive and in a
// clean state
func resetAndSync(conn Connection) error {
	if err := conn.Reset(NoOpCollector{}); err != nil {
		return err
	}
	return conn.Sync()
}

// connectionFactory adapts the pool's object lifecycle to connections
type connectionFactory struct {
	pool    *ConnectionPool
	address string
}

// MakeObject opens and wraps a new connection
func (f *connectionFactory) MakeObject(ctx context.Context) (*pool.PooledObject, error) {
	conn, err := f.pool.connector(f.address)
	if err != nil {
		return nil, err
	}
	pooled := NewPooledConnection(conn, f.pool.clock, f.pool.release)
	return pool.NewPooledObject(pooled), nil
}

// DestroyObject closes the underlying socket
func (f *connectionFactory) DestroyObject(ctx context.Context, object *pool.PooledObject) error {
	return object.Object.(*PooledConnection).Dispose()
}

// ValidateObject tests connections that sat idle past the configured
// threshold with a RESET round trip
func (f *connectionFactory) ValidateObject(ctx context.Context, object *pool.PooledObject) bool {
	conn := object.Object.(*PooledConnection)
	if !conn.IsOpen() || conn.HasUnrecoverableErrors() {
		return false
	}
	if conn.IdleTime() < f.pool.settings.IdleTimeBeforeConnectionTest {
		return true
	}
	if err := resetAndSync(conn); err != nil {
		log.Infof("connection to %s failed its idle test: %v", f.address, err)
		return false
	}
	return true
}

// ActivateObject is a no-op; borrow-time checks happen in ValidateObject
func (f *connectionFactory) ActivateObject(ctx context.Context, object *pool.PooledObject) error {
	return nil
}

// PassivateObject is a no-op; return-time checks happen in release
func (f *connectionFactory) PassivateObject(ctx context.Context, object *pool.PooledObject) error {
	return nil
}
