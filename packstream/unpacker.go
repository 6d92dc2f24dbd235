package packstream

import (
	"github.com/graphwire/bolt/errors"
)

const maxInt = int64(^uint(0) >> 1)

// Unpacker decodes values from an Input.
type Unpacker struct {
	in Input
}

// NewUnpacker creates a new Unpacker reading from in.
func NewUnpacker(in Input) *Unpacker {
	return &Unpacker{in: in}
}

// HasNext reports whether another value is available.
func (u *Unpacker) HasNext() (bool, error) {
	return u.in.HasMoreData()
}

// PeekNextType identifies the type of the next value without consuming the
// marker. Reserved marker bytes yield TypeReserved.
func (u *Unpacker) PeekNextType() (PackType, error) {
	marker, err := u.in.PeekByte()
	if err != nil {
		return TypeReserved, err
	}
	return markerType(marker), nil
}

func markerType(marker byte) PackType {
	if marker < 0x80 || marker >= 0xF0 {
		return TypeInteger
	}
	switch marker & 0xF0 {
	case TinyStringMarker:
		return TypeString
	case TinyListMarker:
		return TypeList
	case TinyMapMarker:
		return TypeMap
	case TinyStructMarker:
		return TypeStruct
	}
	switch marker {
	case NilMarker:
		return TypeNull
	case TrueMarker, FalseMarker:
		return TypeBoolean
	case FloatMarker:
		return TypeFloat
	case Int8Marker, Int16Marker, Int32Marker, Int64Marker:
		return TypeInteger
	case Bytes8Marker, Bytes16Marker, Bytes32Marker:
		return TypeBytes
	case String8Marker, String16Marker, String32Marker:
		return TypeString
	case List8Marker, List16Marker, List32Marker:
		return TypeList
	case Map8Marker, Map16Marker, Map32Marker:
		return TypeMap
	case Struct8Marker, Struct16Marker:
		return TypeStruct
	default:
		return TypeReserved
	}
}

// UnpackNull consumes a NULL marker.
func (u *Unpacker) UnpackNull() error {
	marker, err := u.in.ReadByte()
	if err != nil {
		return err
	}
	if marker != NilMarker {
		return &errors.UnexpectedType{Actual: marker, Type: "null", Expected: []byte{NilMarker}}
	}
	return nil
}

func (u *Unpacker) UnpackBool() (bool, error) {
	marker, err := u.in.ReadByte()
	if err != nil {
		return false, err
	}
	switch marker {
	case TrueMarker:
		return true, nil
	case FalseMarker:
		return false, nil
	default:
		return false, &errors.UnexpectedType{Actual: marker, Type: "boolean", Expected: []byte{TrueMarker, FalseMarker}}
	}
}

func (u *Unpacker) UnpackInt() (int64, error) {
	marker, err := u.in.ReadByte()
	if err != nil {
		return 0, err
	}
	if tiny := int8(marker); tiny >= -16 {
		return int64(tiny), nil
	}
	switch marker {
	case Int8Marker:
		b, err := u.in.ReadByte()
		return int64(int8(b)), err
	case Int16Marker:
		v, err := u.in.ReadShort()
		return int64(v), err
	case Int32Marker:
		v, err := u.in.ReadInt()
		return int64(v), err
	case Int64Marker:
		return u.in.ReadLong()
	default:
		return 0, &errors.UnexpectedType{Actual: marker, Type: "integer",
			Expected: []byte{Int8Marker, Int16Marker, Int32Marker, Int64Marker}}
	}
}

func (u *Unpacker) UnpackFloat() (float64, error) {
	marker, err := u.in.ReadByte()
	if err != nil {
		return 0, err
	}
	if marker != FloatMarker {
		return 0, &errors.UnexpectedType{Actual: marker, Type: "float", Expected: []byte{FloatMarker}}
	}
	return u.in.ReadDouble()
}

func (u *Unpacker) UnpackString() (string, error) {
	marker, err := u.in.ReadByte()
	if err != nil {
		return "", err
	}
	size, err := u.stringSize(marker)
	if err != nil {
		return "", err
	}
	if size == 0 {
		return "", nil
	}
	data := make([]byte, size)
	if err := u.in.ReadBytes(data); err != nil {
		return "", err
	}
	return string(data), nil
}

func (u *Unpacker) stringSize(marker byte) (int, error) {
	if marker&0xF0 == TinyStringMarker {
		return int(marker & 0x0F), nil
	}
	switch marker {
	case String8Marker:
		return u.readSize8()
	case String16Marker:
		return u.readSize16()
	case String32Marker:
		return u.readSize32("string (STRING_32)")
	default:
		return 0, &errors.UnexpectedType{Actual: marker, Type: "string",
			Expected: []byte{TinyStringMarker, String8Marker, String16Marker, String32Marker}}
	}
}

func (u *Unpacker) UnpackBytes() ([]byte, error) {
	marker, err := u.in.ReadByte()
	if err != nil {
		return nil, err
	}
	var size int
	switch marker {
	case Bytes8Marker:
		size, err = u.readSize8()
	case Bytes16Marker:
		size, err = u.readSize16()
	case Bytes32Marker:
		size, err = u.readSize32("binary data (BYTES_32)")
	default:
		return nil, &errors.UnexpectedType{Actual: marker, Type: "binary data",
			Expected: []byte{Bytes8Marker, Bytes16Marker, Bytes32Marker}}
	}
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	if err := u.in.ReadBytes(data); err != nil {
		return nil, err
	}
	return data, nil
}

// UnpackListHeader consumes a list marker and returns the element count.
func (u *Unpacker) UnpackListHeader() (int, error) {
	marker, err := u.in.ReadByte()
	if err != nil {
		return 0, err
	}
	if marker&0xF0 == TinyListMarker {
		return int(marker & 0x0F), nil
	}
	switch marker {
	case List8Marker:
		return u.readSize8()
	case List16Marker:
		return u.readSize16()
	case List32Marker:
		return u.readSize32("list (LIST_32)")
	default:
		return 0, &errors.UnexpectedType{Actual: marker, Type: "list",
			Expected: []byte{List8Marker, List16Marker, List32Marker}}
	}
}

// UnpackMapHeader consumes a map marker and returns the pair count.
func (u *Unpacker) UnpackMapHeader() (int, error) {
	marker, err := u.in.ReadByte()
	if err != nil {
		return 0, err
	}
	if marker&0xF0 == TinyMapMarker {
		return int(marker & 0x0F), nil
	}
	switch marker {
	case Map8Marker:
		return u.readSize8()
	case Map16Marker:
		return u.readSize16()
	case Map32Marker:
		return u.readSize32("map (MAP_32)")
	default:
		return 0, &errors.UnexpectedType{Actual: marker, Type: "map",
			Expected: []byte{Map8Marker, Map16Marker, Map32Marker}}
	}
}

// UnpackStructHeader consumes a struct marker and returns the field count.
// The signature byte follows; read it with UnpackStructSignature.
func (u *Unpacker) UnpackStructHeader() (int, error) {
	marker, err := u.in.ReadByte()
	if err != nil {
		return 0, err
	}
	if marker&0xF0 == TinyStructMarker {
		return int(marker & 0x0F), nil
	}
	switch marker {
	case Struct8Marker:
		return u.readSize8()
	case Struct16Marker:
		return u.readSize16()
	default:
		return 0, &errors.UnexpectedType{Actual: marker, Type: "struct",
			Expected: []byte{Struct8Marker, Struct16Marker}}
	}
}

func (u *Unpacker) UnpackStructSignature() (byte, error) {
	return u.in.ReadByte()
}

func (u *Unpacker) readSize8() (int, error) {
	b, err := u.in.ReadByte()
	return int(b), err
}

func (u *Unpacker) readSize16() (int, error) {
	v, err := u.in.ReadShort()
	return int(uint16(v)), err
}

func (u *Unpacker) readSize32(what string) (int, error) {
	v, err := u.in.ReadInt()
	if err != nil {
		return 0, err
	}
	size := int64(uint32(v))
	if size > maxInt {
		return 0, &errors.CannotRepresent{Type: what, Size: size}
	}
	return int(size), nil
}

// UnpackList decodes a full list with generically typed elements.
func (u *Unpacker) UnpackList() ([]interface{}, error) {
	size, err := u.UnpackListHeader()
	if err != nil {
		return nil, err
	}
	list := make([]interface{}, size)
	for i := 0; i < size; i++ {
		item, err := u.Unpack()
		if err != nil {
			return nil, err
		}
		list[i] = item
	}
	return list, nil
}

// UnpackMap decodes a full map with string keys and generically typed values.
func (u *Unpacker) UnpackMap() (map[string]interface{}, error) {
	size, err := u.UnpackMapHeader()
	if err != nil {
		return nil, err
	}
	m := make(map[string]interface{}, size)
	for i := 0; i < size; i++ {
		key, err := u.UnpackString()
		if err != nil {
			return nil, err
		}
		value, err := u.Unpack()
		if err != nil {
			return nil, err
		}
		m[key] = value
	}
	return m, nil
}

// Unpack decodes the next value generically: integers come back as int64,
// structures as *RawStructure.
func (u *Unpacker) Unpack() (interface{}, error) {
	t, err := u.PeekNextType()
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeNull:
		if err := u.UnpackNull(); err != nil {
			return nil, err
		}
		return nil, nil
	case TypeBoolean:
		return u.UnpackBool()
	case TypeInteger:
		return u.UnpackInt()
	case TypeFloat:
		return u.UnpackFloat()
	case TypeBytes:
		return u.UnpackBytes()
	case TypeString:
		return u.UnpackString()
	case TypeList:
		return u.UnpackList()
	case TypeMap:
		return u.UnpackMap()
	case TypeStruct:
		size, err := u.UnpackStructHeader()
		if err != nil {
			return nil, err
		}
		signature, err := u.UnpackStructSignature()
		if err != nil {
			return nil, err
		}
		fields := make([]interface{}, size)
		for i := 0; i < size; i++ {
			field, err := u.Unpack()
			if err != nil {
				return nil, err
			}
			fields[i] = field
		}
		return &RawStructure{Sig: signature, Fields: fields}, nil
	default:
		marker, _ := u.in.ReadByte()
		return nil, &errors.UnexpectedType{Actual: marker, Type: "value"}
	}
}
