package bolt

import (
	"crypto/tls"
	"time"
)

const (
	// DefaultConnectTimeout bounds TCP dialing and the TLS handshake
	DefaultConnectTimeout = 5 * time.Second
	// DefaultChunkSize is the outgoing chunk buffer size in bytes
	DefaultChunkSize = 8192
	// DefaultMaxSessions caps the connections pooled per server address
	DefaultMaxSessions = 50
	// DefaultIdleTimeBeforeConnectionTest is how long a pooled connection
	// may sit idle before it is pinged on acquisition
	DefaultIdleTimeBeforeConnectionTest = 200 * time.Millisecond
	// DefaultAcquireTimeout bounds how long Acquire waits for a free slot
	DefaultAcquireTimeout = 30 * time.Second
)

// Config holds per-connection settings
type Config struct {
	// ConnectTimeout bounds establishing the TCP connection
	ConnectTimeout time.Duration
	// TLSConfig enables encryption when non-nil
	TLSConfig *tls.Config
	// ChunkSize is the outgoing buffer size; chunks never exceed it
	ChunkSize int
	// Clock supplies the time used for idle tracking
	Clock Clock
}

// DefaultConfig returns a Config with the default settings and no TLS
func DefaultConfig() *Config {
	return &Config{
		ConnectTimeout: DefaultConnectTimeout,
		ChunkSize:      DefaultChunkSize,
		Clock:          SystemClock{},
	}
}

// PoolSettings holds connection pool tuning
type PoolSettings struct {
	// MaxSessions caps concurrently live connections per address
	MaxSessions int
	// IdleTimeBeforeConnectionTest is the idle threshold beyond which an
	// acquired connection is tested with a RESET round trip first
	IdleTimeBeforeConnectionTest time.Duration
	// AcquireTimeout bounds how long Acquire blocks when the pool is full
	AcquireTimeout time.Duration
	// ConnectTimeout bounds establishing new connections
	ConnectTimeout time.Duration
}

// DefaultPoolSettings returns the default pool tuning
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxSessions:                  DefaultMaxSessions,
		IdleTimeBeforeConnectionTest: DefaultIdleTimeBeforeConnectionTest,
		AcquireTimeout:               DefaultAcquireTimeout,
		ConnectTimeout:               DefaultConnectTimeout,
	}
}
