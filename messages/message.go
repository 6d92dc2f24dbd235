// Package messages defines the nine Bolt v1 protocol messages. Each message
// is a PackStream structure with a fixed signature byte.
package messages

// Message represents a Bolt protocol message structure
type Message interface {
	// Signature gets the signature byte for the struct
	Signature() byte
	// AllFields gets the fields to encode for the struct
	AllFields() []interface{}
}
