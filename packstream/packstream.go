// Package packstream implements the PackStream binary serialization format
// used by the Bolt protocol.
//
// Every value starts with a marker byte. For "tiny" forms the high nibble
// identifies the type and the low nibble carries the size; for sized forms the
// whole byte identifies the type and the size follows as an unsigned 8/16/32
// bit big-endian integer. The Packer and Unpacker are pure byte transformers:
// all I/O goes through the Output and Input abstractions.
package packstream

const (
	// TinyStringMarker represents the marker byte for a tiny string, low nibble holding the size
	TinyStringMarker = 0x80
	// TinyListMarker represents the marker byte for a tiny list, low nibble holding the count
	TinyListMarker = 0x90
	// TinyMapMarker represents the marker byte for a tiny map, low nibble holding the pair count
	TinyMapMarker = 0xA0
	// TinyStructMarker represents the marker byte for a tiny struct, low nibble holding the field count
	TinyStructMarker = 0xB0

	// NilMarker represents the marker byte for a nil object
	NilMarker = 0xC0
	// FloatMarker represents the marker byte for a 64-bit float object
	FloatMarker = 0xC1
	// FalseMarker represents the marker byte for a false boolean object
	FalseMarker = 0xC2
	// TrueMarker represents the marker byte for a true boolean object
	TrueMarker = 0xC3

	// Int8Marker represents the marker byte for an int8 object
	Int8Marker = 0xC8
	// Int16Marker represents the marker byte for an int16 object
	Int16Marker = 0xC9
	// Int32Marker represents the marker byte for an int32 object
	Int32Marker = 0xCA
	// Int64Marker represents the marker byte for an int64 object
	Int64Marker = 0xCB

	// Bytes8Marker represents the marker byte for a byte array object
	Bytes8Marker = 0xCC
	// Bytes16Marker represents the marker byte for a byte array object
	Bytes16Marker = 0xCD
	// Bytes32Marker represents the marker byte for a byte array object
	Bytes32Marker = 0xCE

	// String8Marker represents the marker byte for a string object
	String8Marker = 0xD0
	// String16Marker represents the marker byte for a string object
	String16Marker = 0xD1
	// String32Marker represents the marker byte for a string object
	String32Marker = 0xD2

	// List8Marker represents the marker byte for a list object
	List8Marker = 0xD4
	// List16Marker represents the marker byte for a list object
	List16Marker = 0xD5
	// List32Marker represents the marker byte for a list object
	List32Marker = 0xD6

	// Map8Marker represents the marker byte for a map object
	Map8Marker = 0xD8
	// Map16Marker represents the marker byte for a map object
	Map16Marker = 0xD9
	// Map32Marker represents the marker byte for a map object
	Map32Marker = 0xDA

	// Struct8Marker represents the marker byte for a struct object
	Struct8Marker = 0xDC
	// Struct16Marker represents the marker byte for a struct object
	Struct16Marker = 0xDD
)

// All marker bytes not listed above are reserved. That includes 0xDE, which
// some documents describe as STRUCT_32; the unpacker rejects it.

// PackType identifies the type introduced by the next marker byte.
type PackType int

const (
	TypeNull PackType = iota
	TypeBoolean
	TypeInteger
	TypeFloat
	TypeBytes
	TypeString
	TypeList
	TypeMap
	TypeStruct
	TypeReserved
)

func (t PackType) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeBytes:
		return "BYTES"
	case TypeString:
		return "STRING"
	case TypeList:
		return "LIST"
	case TypeMap:
		return "MAP"
	case TypeStruct:
		return "STRUCT"
	default:
		return "RESERVED"
	}
}

// Structure is a PackStream value carrying a one-byte signature and a
// sequence of field values.
type Structure interface {
	Signature() byte
	AllFields() []interface{}
}

// RawStructure is a structure with no registered decoding; the generic
// unpacker produces these for signatures it does not know.
type RawStructure struct {
	Sig    byte
	Fields []interface{}
}

// Signature gets the signature byte for the struct
func (s *RawStructure) Signature() byte {
	return s.Sig
}

// AllFields gets the fields to encode for the struct
func (s *RawStructure) AllFields() []interface{} {
	return s.Fields
}
