package bolt

import (
	"reflect"
	"testing"

	"github.com/graphwire/bolt/errors"
)

func TestDriverSession(t *testing.T) {
	address := startFakeServer(t, wellBehavedServer)
	driver := NewDriver(address, NoAuth(), nil, DefaultPoolSettings())
	defer driver.Close()

	conn, err := driver.Session()
	if err != nil {
		t.Fatalf("An error occurred opening session: %s", err)
	}
	defer conn.Close()

	records := &RecordCollector{}
	if err := conn.Run("RETURN 1 AS n", nil, NoOpCollector{}); err != nil {
		t.Fatalf("An error occurred running: %s", err)
	}
	if err := conn.PullAll(records); err != nil {
		t.Fatalf("An error occurred pulling: %s", err)
	}
	if err := conn.Sync(); err != nil {
		t.Fatalf("An error occurred syncing: %s", err)
	}

	if !reflect.DeepEqual(records.Records, [][]interface{}{{int64(1)}}) {
		t.Fatalf("Unexpected records: %v", records.Records)
	}
	if conn.Server() != "FakeBolt/1.0" {
		t.Fatalf("Unexpected server identification: %q", conn.Server())
	}
}

func TestDriverSessionErrorsArePublic(t *testing.T) {
	address := startFakeServer(t, func(srv *serverIO, msg serverMsg) {
		if msg.kind == "RUN" {
			srv.failure("Neo.ClientError.Statement.SyntaxError", "Invalid input")
			return
		}
		wellBehavedServer(srv, msg)
	})
	driver := NewDriver(address, NoAuth(), nil, DefaultPoolSettings())
	defer driver.Close()

	conn, err := driver.Session()
	if err != nil {
		t.Fatalf("An error occurred opening session: %s", err)
	}
	defer conn.Close()

	if err := conn.Run("RETRUN 1", nil, NoOpCollector{}); err != nil {
		t.Fatalf("An error occurred running: %s", err)
	}
	err = conn.Sync()
	clientErr, ok := err.(*errors.ClientError)
	if !ok {
		t.Fatalf("Expected the public ClientError, got %T: %v", err, err)
	}
	if clientErr.Code != "Neo.ClientError.Statement.SyntaxError" {
		t.Fatalf("Unexpected code: %s", clientErr.Code)
	}
}

func TestDriverUnreachableServer(t *testing.T) {
	driver := NewDriver("127.0.0.1:1", NoAuth(), nil, DefaultPoolSettings())
	defer driver.Close()

	_, err := driver.Session()
	if err == nil {
		t.Fatal("Expected an error for an unreachable server")
	}
	if _, ok := err.(*errors.ServiceUnavailableError); !ok {
		t.Fatalf("Expected ServiceUnavailableError, got %T: %v", err, err)
	}
}

func TestDriverRejectedCredentials(t *testing.T) {
	address := startFakeServer(t, func(srv *serverIO, msg serverMsg) {
		if msg.kind == "INIT" {
			srv.failure("Neo.ClientError.Security.Unauthorized", "The client is unauthorized due to authentication failure.")
			return
		}
		wellBehavedServer(srv, msg)
	})
	driver := NewDriver(address, BasicAuth("neo4j", "wrong"), nil, DefaultPoolSettings())
	defer driver.Close()

	_, err := driver.Session()
	clientErr, ok := err.(*errors.ClientError)
	if !ok {
		t.Fatalf("Expected the public ClientError, got %T: %v", err, err)
	}
	if clientErr.Code != "Neo.ClientError.Security.Unauthorized" {
		t.Fatalf("Unexpected code: %s", clientErr.Code)
	}
}

func TestBasicAuthToken(t *testing.T) {
	token := BasicAuth("neo4j", "secret")
	expected := map[string]interface{}{
		"scheme":      "basic",
		"principal":   "neo4j",
		"credentials": "secret",
	}
	if !reflect.DeepEqual(token, expected) {
		t.Fatalf("Unexpected auth token: %v", token)
	}
}
