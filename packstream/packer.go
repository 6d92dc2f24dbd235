package packstream

import (
	"math"

	"github.com/graphwire/bolt/errors"
)

// Packer encodes values onto an Output. It never frames or flushes on its
// own; message boundaries belong to the layer that owns the Output.
type Packer struct {
	out Output
}

// NewPacker creates a new Packer writing to out.
func NewPacker(out Output) *Packer {
	return &Packer{out: out}
}

// Flush flushes the underlying output.
func (p *Packer) Flush() error {
	return p.out.Flush()
}

// PackRaw writes bytes through without any marker.
func (p *Packer) PackRaw(data []byte) error {
	return p.out.WriteBytes(data)
}

func (p *Packer) PackNull() error {
	return p.out.WriteByte(NilMarker)
}

func (p *Packer) PackBool(val bool) error {
	if val {
		return p.out.WriteByte(TrueMarker)
	}
	return p.out.WriteByte(FalseMarker)
}

// PackInt writes val using the narrowest encoding that fits. The tiny form
// covers [-16, 128).
func (p *Packer) PackInt(val int64) error {
	switch {
	case val >= -16 && val < 128:
		return p.out.WriteByte(byte(int8(val)))
	case val >= math.MinInt8 && val < -16:
		if err := p.out.WriteByte(Int8Marker); err != nil {
			return err
		}
		return p.out.WriteByte(byte(int8(val)))
	case val >= math.MinInt16 && val < math.MaxInt16+1:
		if err := p.out.WriteByte(Int16Marker); err != nil {
			return err
		}
		return p.out.WriteShort(int16(val))
	case val >= math.MinInt32 && val < math.MaxInt32+1:
		if err := p.out.WriteByte(Int32Marker); err != nil {
			return err
		}
		return p.out.WriteInt(int32(val))
	default:
		if err := p.out.WriteByte(Int64Marker); err != nil {
			return err
		}
		return p.out.WriteLong(val)
	}
}

func (p *Packer) PackFloat(val float64) error {
	if err := p.out.WriteByte(FloatMarker); err != nil {
		return err
	}
	return p.out.WriteDouble(val)
}

// PackBytes writes a byte array. A nil slice packs as null.
func (p *Packer) PackBytes(val []byte) error {
	if val == nil {
		return p.PackNull()
	}
	if err := p.PackBytesHeader(len(val)); err != nil {
		return err
	}
	return p.PackRaw(val)
}

func (p *Packer) PackString(val string) error {
	if err := p.PackStringHeader(len(val)); err != nil {
		return err
	}
	return p.PackRaw([]byte(val))
}

// PackBytesHeader writes the header for a byte array of the given size.
// There is no tiny form for bytes.
func (p *Packer) PackBytesHeader(size int) error {
	switch {
	case size <= math.MaxInt8:
		if err := p.out.WriteByte(Bytes8Marker); err != nil {
			return err
		}
		return p.out.WriteByte(byte(size))
	case size < 65536:
		if err := p.out.WriteByte(Bytes16Marker); err != nil {
			return err
		}
		return p.out.WriteShort(int16(size))
	default:
		if err := p.out.WriteByte(Bytes32Marker); err != nil {
			return err
		}
		return p.out.WriteInt(int32(size))
	}
}

func (p *Packer) PackStringHeader(size int) error {
	switch {
	case size < 16:
		return p.out.WriteByte(byte(TinyStringMarker | size))
	case size <= math.MaxInt8:
		if err := p.out.WriteByte(String8Marker); err != nil {
			return err
		}
		return p.out.WriteByte(byte(size))
	case size < 65536:
		if err := p.out.WriteByte(String16Marker); err != nil {
			return err
		}
		return p.out.WriteShort(int16(size))
	default:
		if err := p.out.WriteByte(String32Marker); err != nil {
			return err
		}
		return p.out.WriteInt(int32(size))
	}
}

func (p *Packer) PackListHeader(size int) error {
	switch {
	case size < 16:
		return p.out.WriteByte(byte(TinyListMarker | size))
	case size <= math.MaxInt8:
		if err := p.out.WriteByte(List8Marker); err != nil {
			return err
		}
		return p.out.WriteByte(byte(size))
	case size < 65536:
		if err := p.out.WriteByte(List16Marker); err != nil {
			return err
		}
		return p.out.WriteShort(int16(size))
	default:
		if err := p.out.WriteByte(List32Marker); err != nil {
			return err
		}
		return p.out.WriteInt(int32(size))
	}
}

func (p *Packer) PackMapHeader(size int) error {
	switch {
	case size < 16:
		return p.out.WriteByte(byte(TinyMapMarker | size))
	case size <= math.MaxInt8:
		if err := p.out.WriteByte(Map8Marker); err != nil {
			return err
		}
		return p.out.WriteByte(byte(size))
	case size < 65536:
		if err := p.out.WriteByte(Map16Marker); err != nil {
			return err
		}
		return p.out.WriteShort(int16(size))
	default:
		if err := p.out.WriteByte(Map32Marker); err != nil {
			return err
		}
		return p.out.WriteInt(int32(size))
	}
}

// PackStructHeader writes the header for a structure of size fields with the
// given signature byte. The wire format caps struct sizes at 16 bits.
func (p *Packer) PackStructHeader(size int, signature byte) error {
	switch {
	case size < 16:
		if err := p.out.WriteByte(byte(TinyStructMarker | size)); err != nil {
			return err
		}
		return p.out.WriteByte(signature)
	case size <= math.MaxInt8:
		if err := p.out.WriteByte(Struct8Marker); err != nil {
			return err
		}
		if err := p.out.WriteByte(byte(size)); err != nil {
			return err
		}
		return p.out.WriteByte(signature)
	case size < 65536:
		if err := p.out.WriteByte(Struct16Marker); err != nil {
			return err
		}
		if err := p.out.WriteShort(int16(size)); err != nil {
			return err
		}
		return p.out.WriteByte(signature)
	default:
		return &errors.StructureFieldOverflow{Size: size}
	}
}

// Pack encodes a value of any supported type. Maps iterate in Go map order;
// callers that need a specific pair order pack headers and pairs explicitly.
func (p *Packer) Pack(val interface{}) error {
	switch val := val.(type) {
	case nil:
		return p.PackNull()
	case bool:
		return p.PackBool(val)
	case int:
		return p.PackInt(int64(val))
	case int8:
		return p.PackInt(int64(val))
	case int16:
		return p.PackInt(int64(val))
	case int32:
		return p.PackInt(int64(val))
	case int64:
		return p.PackInt(val)
	case uint:
		return p.PackInt(int64(val))
	case uint8:
		return p.PackInt(int64(val))
	case uint16:
		return p.PackInt(int64(val))
	case uint32:
		return p.PackInt(int64(val))
	case uint64:
		if val > math.MaxInt64 {
			return &errors.Unpackable{Value: val}
		}
		return p.PackInt(int64(val))
	case float32:
		return p.PackFloat(float64(val))
	case float64:
		return p.PackFloat(val)
	case string:
		return p.PackString(val)
	case []byte:
		return p.PackBytes(val)
	case []interface{}:
		if err := p.PackListHeader(len(val)); err != nil {
			return err
		}
		for _, item := range val {
			if err := p.Pack(item); err != nil {
				return err
			}
		}
		return nil
	case []string:
		if err := p.PackListHeader(len(val)); err != nil {
			return err
		}
		for _, item := range val {
			if err := p.PackString(item); err != nil {
				return err
			}
		}
		return nil
	case map[string]interface{}:
		if err := p.PackMapHeader(len(val)); err != nil {
			return err
		}
		for k, v := range val {
			if err := p.PackString(k); err != nil {
				return err
			}
			if err := p.Pack(v); err != nil {
				return err
			}
		}
		return nil
	case Structure:
		fields := val.AllFields()
		if err := p.PackStructHeader(len(fields), val.Signature()); err != nil {
			return err
		}
		for _, field := range fields {
			if err := p.Pack(field); err != nil {
				return err
			}
		}
		return nil
	default:
		return &errors.Unpackable{Value: val}
	}
}
