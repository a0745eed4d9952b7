package binary

import (
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

var errShortBuffer = errors.New("missing data for varint or overflow")

// encoder appends values in protobuf wire encoding without field tags.
// Unsigned integers are varints, signed integers zigzag varints and floats
// fixed64 with their full IEEE 754 bits.
type encoder struct {
	proto.Buffer
}

// The Encode methods of proto.Buffer only fail for messages, not for
// scalar values.

func (e *encoder) uvarint(v uint64) {
	e.EncodeVarint(v)
}

func (e *encoder) varint(v int64) {
	e.EncodeZigzag64(uint64(v))
}

func (e *encoder) float(f float64) {
	e.EncodeFixed64(math.Float64bits(f))
}

func (e *encoder) string(s string) {
	e.EncodeStringBytes(s)
}

// byte writes b as varint, values below 128 take a single byte.
func (e *encoder) byte(b byte) {
	e.EncodeVarint(uint64(b))
}

// decoder reads the values written by encoder. The first error is kept and
// all following reads return zero values.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := proto.DecodeVarint(d.buf[d.off:])
	if n == 0 {
		d.err = errShortBuffer
		return 0
	}
	d.off += n
	return v
}

func (d *decoder) varint() int64 {
	v := d.uvarint()
	return int64(v>>1) ^ int64(v)<<63>>63
}

func (d *decoder) float() float64 {
	if d.err != nil {
		return 0
	}
	if len(d.buf)-d.off < 8 {
		d.err = errShortBuffer
		return 0
	}
	v, err := proto.NewBuffer(d.buf[d.off : d.off+8]).DecodeFixed64()
	if err != nil {
		d.err = err
		return 0
	}
	d.off += 8
	return math.Float64frombits(v)
}

func (d *decoder) string() string {
	l := d.uvarint()
	if d.err != nil {
		return ""
	}
	if uint64(len(d.buf)-d.off) < l {
		d.err = errShortBuffer
		return ""
	}
	s := string(d.buf[d.off : d.off+int(l)])
	d.off += int(l)
	return s
}

func (d *decoder) byte() byte {
	v := d.uvarint()
	if v > math.MaxUint8 {
		d.err = errors.Errorf("byte value %d out of range", v)
		return 0
	}
	return byte(v)
}

// count reads a length prefix and checks that at least min bytes per item
// are left in the buffer.
func (d *decoder) count(min int) int {
	l := d.uvarint()
	if d.err != nil {
		return 0
	}
	if l > uint64(len(d.buf)-d.off)/uint64(min) {
		d.err = errShortBuffer
		return 0
	}
	return int(l)
}

func (d *decoder) finish(what string) error {
	if d.err != nil {
		return errors.Wrapf(d.err, "unmarshal %s", what)
	}
	if d.off != len(d.buf) {
		return errors.Errorf("unmarshal %s: %d trailing bytes", what, len(d.buf)-d.off)
	}
	return nil
}
