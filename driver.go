package bolt

import (
	"github.com/graphwire/bolt/errors"
)

const version = "1.0"

// clientID identifies this driver to the server in the INIT message
var clientID = "GraphwireBolt/" + version

// BasicAuth builds an auth token for username/password authentication
func BasicAuth(username, password string) map[string]interface{} {
	return map[string]interface{}{
		"scheme":      "basic",
		"principal":   username,
		"credentials": password,
	}
}

// NoAuth builds an auth token for servers with authentication disabled
func NoAuth() map[string]interface{} {
	return map[string]interface{}{"scheme": "none"}
}

// Driver opens sessions against a single Bolt server, multiplexing them over
// a connection pool. Errors returned by the driver and its sessions are the
// public error types from the errors package.
type Driver struct {
	address   string
	authToken map[string]interface{}
	pool      *ConnectionPool
}

// NewDriver creates a Driver for the server at address. A nil config or zero
// poolSettings get the defaults.
func NewDriver(address string, authToken map[string]interface{}, config *Config, poolSettings PoolSettings) *Driver {
	if config == nil {
		config = DefaultConfig()
	}
	if poolSettings.MaxSessions == 0 {
		poolSettings = DefaultPoolSettings()
	}
	config.ConnectTimeout = poolSettings.ConnectTimeout

	d := &Driver{
		address:   address,
		authToken: authToken,
	}
	d.pool = NewConnectionPool(poolSettings, func(addr string) (Connection, error) {
		conn, err := Connect(addr, config)
		if err != nil {
			return nil, err
		}
		if err := conn.Init(clientID, d.authToken); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}, config.Clock)
	return d
}

// Address returns the host:port this driver connects to
func (d *Driver) Address() string {
	return d.address
}

// Session acquires a connection from the pool. Closing the returned
// connection puts it back.
func (d *Driver) Session() (Connection, error) {
	conn, err := d.pool.Acquire(d.address)
	if err != nil {
		return nil, errors.Public(err)
	}
	return publicConnection{conn}, nil
}

// Close disposes all pooled connections
func (d *Driver) Close() {
	d.pool.Close()
}

// publicConnection translates internal errors into the public taxonomy at
// the driver boundary
type publicConnection struct {
	delegate Connection
}

func (p publicConnection) Init(clientName string, authToken map[string]interface{}) error {
	return errors.Public(p.delegate.Init(clientName, authToken))
}

func (p publicConnection) Run(statement string, parameters map[string]interface{}, c Collector) error {
	return errors.Public(p.delegate.Run(statement, parameters, c))
}

func (p publicConnection) DiscardAll(c Collector) error {
	return errors.Public(p.delegate.DiscardAll(c))
}

func (p publicConnection) PullAll(c Collector) error {
	return errors.Public(p.delegate.PullAll(c))
}

func (p publicConnection) AckFailure(c Collector) error {
	return errors.Public(p.delegate.AckFailure(c))
}

func (p publicConnection) Reset(c Collector) error {
	return errors.Public(p.delegate.Reset(c))
}

func (p publicConnection) Flush() error {
	return errors.Public(p.delegate.Flush())
}

func (p publicConnection) ReceiveOne() error {
	return errors.Public(p.delegate.ReceiveOne())
}

func (p publicConnection) Sync() error {
	return errors.Public(p.delegate.Sync())
}

func (p publicConnection) ResetAsync() error {
	return errors.Public(p.delegate.ResetAsync())
}

func (p publicConnection) IsAckFailureMuted() bool {
	return p.delegate.IsAckFailureMuted()
}

func (p publicConnection) Server() string {
	return p.delegate.Server()
}

func (p publicConnection) Address() string {
	return p.delegate.Address()
}

func (p publicConnection) IsOpen() bool {
	return p.delegate.IsOpen()
}

func (p publicConnection) Close() error {
	return errors.Public(p.delegate.Close())
}
