// Package bolt implements a client for version 1 of the Bolt graph database
// protocol: PackStream serialization, chunked message framing, the session
// request/response state machine, and a per-address connection pool.
//
// The usual entry point is NewDriver:
//
//	driver := bolt.NewDriver("localhost:7687", bolt.BasicAuth("neo4j", "secret"), nil, bolt.DefaultPoolSettings())
//	defer driver.Close()
//
//	conn, err := driver.Session()
//	if err != nil {
//		// handle
//	}
//	defer conn.Close()
//
//	records := &bolt.RecordCollector{}
//	conn.Run("RETURN 1 AS n", nil, bolt.NoOpCollector{})
//	conn.PullAll(records)
//	if err := conn.Sync(); err != nil {
//		// handle
//	}
//
// Requests are pipelined: Run, PullAll and friends only queue messages, and
// Sync flushes them and consumes the responses. Set the BOLT_DRIVER_LOG
// environment variable to "info" or "trace" to watch the exchange.
package bolt
