package wire

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Encoder wraps msgpack.Encoder with a sticky error so tree encoders can
// write straight-line code and check Err once.
type Encoder struct {
	buf bytes.Buffer
	enc *msgpack.Encoder
	err error
}

func NewEncoder() *Encoder {
	e := &Encoder{}
	e.enc = msgpack.NewEncoder(&e.buf)
	return e
}

func (e *Encoder) keep(err error) {
	if e.err == nil && err != nil {
		e.err = err
	}
}

func (e *Encoder) Err() error { return e.err }

// Bytes returns the encoded buffer; valid only if Err is nil.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// Node opens a tagged tree node with n fields after the tag.
func (e *Encoder) Node(tag uint8, fields int) {
	e.Array(fields + 1)
	e.Uint(uint64(tag))
}

func (e *Encoder) Array(n int) {
	if e.err != nil {
		return
	}
	e.keep(e.enc.EncodeArrayLen(n))
}

func (e *Encoder) Uint(v uint64) {
	if e.err != nil {
		return
	}
	e.keep(e.enc.EncodeUint(v))
}

func (e *Encoder) Int(v int64) {
	if e.err != nil {
		return
	}
	e.keep(e.enc.EncodeInt(v))
}

func (e *Encoder) String(s string) {
	if e.err != nil {
		return
	}
	e.keep(e.enc.EncodeString(s))
}

func (e *Encoder) Bool(b bool) {
	if e.err != nil {
		return
	}
	e.keep(e.enc.EncodeBool(b))
}

func (e *Encoder) Nil() {
	if e.err != nil {
		return
	}
	e.keep(e.enc.EncodeNil())
}

// Strings writes a list of strings.
func (e *Encoder) Strings(ss []string) {
	e.Array(len(ss))
	for _, s := range ss {
		e.String(s)
	}
}

// Decoder mirrors Encoder. The first failure is kept and every later read
// returns a zero value.
type Decoder struct {
	rd     *bytes.Reader
	dec    *msgpack.Decoder
	schema string
	err    error
}

func NewDecoder(data []byte, schema string) *Decoder {
	rd := bytes.NewReader(data)
	return &Decoder{rd: rd, dec: msgpack.NewDecoder(rd), schema: schema}
}

func (d *Decoder) Err() error { return d.err }

// Failed reports whether a previous read failed.
func (d *Decoder) Failed() bool { return d.err != nil }

// Fail records a well-formedness error unless one is already pending.
func (d *Decoder) Fail(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

func (d *Decoder) Failf(format string, args ...any) {
	d.Fail(Malformed(d.schema, format, args...))
}

// SetSchema switches the name used in subsequent errors and returns the old one.
func (d *Decoder) SetSchema(schema string) string {
	old := d.schema
	d.schema = schema
	return old
}

func (d *Decoder) wrap(err error, what string) {
	if err == nil {
		return
	}
	d.Fail(&FormatError{Reason: ReasonMalformed, Schema: d.schema, Detail: "reading " + what, Err: err})
}

func (d *Decoder) Array() int {
	if d.err != nil {
		return 0
	}
	n, err := d.dec.DecodeArrayLen()
	if err != nil {
		d.wrap(err, "array")
		return 0
	}
	if n < 0 {
		d.Failf("expected array, got nil")
		return 0
	}
	if n > d.rd.Len() {
		d.Failf("array length %d exceeds remaining input", n)
		return 0
	}
	return n
}

// Node reads a tagged node header and returns the tag and field count.
func (d *Decoder) Node() (uint8, int) {
	n := d.Array()
	if d.err != nil {
		return 0, 0
	}
	if n == 0 {
		d.Failf("empty node")
		return 0, 0
	}
	return d.Uint8(), n - 1
}

// Expect fails unless got equals want; it names the variant in the error.
func (d *Decoder) Expect(variant string, got, want int) bool {
	if d.err != nil {
		return false
	}
	if got != want {
		d.Failf("%s: expected %d fields, got %d", variant, want, got)
		return false
	}
	return true
}

func (d *Decoder) Uint() uint64 {
	if d.err != nil {
		return 0
	}
	v, err := d.dec.DecodeUint64()
	d.wrap(err, "uint")
	return v
}

func (d *Decoder) Uint8() uint8 {
	v := d.Uint()
	if d.err != nil {
		return 0
	}
	out, err := safecast.Conv[uint8](v)
	if err != nil {
		d.Failf("value %d out of range for tag", v)
		return 0
	}
	return out
}

func (d *Decoder) Uint32() uint32 {
	v := d.Uint()
	if d.err != nil {
		return 0
	}
	out, err := safecast.Conv[uint32](v)
	if err != nil {
		d.Failf("value %d out of range for uint32", v)
		return 0
	}
	return out
}

func (d *Decoder) Int() int64 {
	if d.err != nil {
		return 0
	}
	v, err := d.dec.DecodeInt64()
	d.wrap(err, "int")
	return v
}

func (d *Decoder) String() string {
	if d.err != nil {
		return ""
	}
	s, err := d.dec.DecodeString()
	d.wrap(err, "string")
	return s
}

func (d *Decoder) Bool() bool {
	if d.err != nil {
		return false
	}
	b, err := d.dec.DecodeBool()
	d.wrap(err, "bool")
	return b
}

// IsNil consumes a nil and reports true if the next value is nil.
func (d *Decoder) IsNil() bool {
	if d.err != nil {
		return false
	}
	c, err := d.dec.PeekCode()
	if err != nil {
		d.wrap(err, "value")
		return false
	}
	if c != msgpcode.Nil {
		return false
	}
	d.wrap(d.dec.DecodeNil(), "nil")
	return true
}

func (d *Decoder) Strings() []string {
	n := d.Array()
	if n == 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		out = append(out, d.String())
	}
	return out
}

// Finish fails if unread bytes remain.
func (d *Decoder) Finish() error {
	if d.err == nil && d.rd.Len() != 0 {
		d.Failf("%d trailing bytes", d.rd.Len())
	}
	return d.err
}

// Marshal builds a payload [SchemaVersion, body].
func Marshal(body func(*Encoder)) ([]byte, error) {
	e := NewEncoder()
	e.Array(2)
	e.String(SchemaVersion)
	body(e)
	if err := e.Err(); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return e.Bytes(), nil
}

// Unmarshal validates the payload header and runs body over the tree.
func Unmarshal(payload []byte, schema string, body func(*Decoder)) error {
	d := NewDecoder(payload, schema)
	if n := d.Array(); d.err == nil && n != 2 {
		d.Failf("payload: expected [version, body], got %d elements", n)
	}
	version := d.String()
	if d.err == nil {
		d.Fail(CheckVersion(version))
	}
	if d.err != nil {
		return d.err
	}
	body(d)
	return d.Finish()
}
