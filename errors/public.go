package errors

import (
	stderrors "errors"
	"fmt"
)

// The public error types exposed to users of the driver. Internal errors are
// mapped onto exactly these four at the API boundary.

// ServiceUnavailableError means the driver could not talk to the server at
// all: connecting failed or the connection died mid-conversation.
type ServiceUnavailableError struct {
	Message string
	Cause   error
}

func (e *ServiceUnavailableError) Error() string { return e.Message }
func (e *ServiceUnavailableError) Unwrap() error { return e.Cause }

// ClientError means the client sent something the server or driver could not
// process: a protocol or codec fault, API misuse, or a Neo.ClientError code.
type ClientError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}
func (e *ClientError) Unwrap() error { return e.Cause }

// TransientError is a server failure that may succeed if retried.
type TransientError struct {
	Code    string
	Message string
}

func (e *TransientError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// DatabaseError is a server-side failure that is neither a client fault nor
// transient.
type DatabaseError struct {
	Code    string
	Message string
}

func (e *DatabaseError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Public translates an internal error into its public form. It is the single
// place where the internal taxonomy meets the exported one; callers above the
// driver boundary only ever see the four public types. Errors already public,
// and unrecognized errors, pass through unchanged.
func Public(err error) error {
	if err == nil {
		return nil
	}

	var serverFailure *ServerFailure
	if stderrors.As(err, &serverFailure) {
		switch serverFailure.Classification() {
		case "ClientError":
			return &ClientError{Code: serverFailure.Code, Message: serverFailure.Message}
		case "TransientError":
			return &TransientError{Code: serverFailure.Code, Message: serverFailure.Message}
		default:
			return &DatabaseError{Code: serverFailure.Code, Message: serverFailure.Message}
		}
	}

	var cannotConnect *CannotConnect
	if stderrors.As(err, &cannotConnect) {
		return &ServiceUnavailableError{
			Message: fmt.Sprintf("Unable to connect to %s, ensure the database is running and that there is a "+
				"working network connection to it.", cannotConnect.Address),
			Cause: cannotConnect,
		}
	}

	var handshake *HandshakeFailure
	if stderrors.As(err, &handshake) {
		return &ClientError{Message: handshake.Message, Cause: handshake}
	}

	var poolFull *PoolFull
	if stderrors.As(err, &poolFull) {
		return &ClientError{Message: poolFull.Error(), Cause: poolFull}
	}

	var connErr ConnectionError
	if stderrors.As(err, &connErr) {
		return &ServiceUnavailableError{
			Message: "Connection to the database terminated. " + connErr.Error(),
			Cause:   connErr,
		}
	}

	var packErr PackStreamError
	if stderrors.As(err, &packErr) {
		return &ClientError{Message: "Unable to process request: " + packErr.Error(), Cause: packErr}
	}

	return err
}
