package eval

import (
	"errors"

	"langlang/internal/fomega"
	"langlang/internal/wire"
)

const schemaValue = "eval.Value"

// ErrNotTransportable is returned when a value holds a closure or proxy.
var ErrNotTransportable = errors.New("value contains a function and cannot be encoded")

var valueFieldCount = [...]int{
	ValInt:    1,
	ValBool:   1,
	ValString: 1,
	ValUnit:   0,
	ValRecord: 1,
	ValList:   1,
	ValType:   1,
	ValBox:    2,
}

func Marshal(v Value) ([]byte, error) {
	if !v.Transportable() {
		return nil, ErrNotTransportable
	}
	return wire.Marshal(func(e *wire.Encoder) { EncodeValue(e, v) })
}

func Unmarshal(payload []byte) (Value, error) {
	var v Value
	if err := wire.Unmarshal(payload, schemaValue, func(d *wire.Decoder) { v = DecodeValue(d) }); err != nil {
		return Value{}, err
	}
	return v, nil
}

// EncodeValue writes a transportable value.
func EncodeValue(e *wire.Encoder, v Value) {
	e.Node(uint8(v.Kind), valueFieldCount[v.Kind])
	switch v.Kind {
	case ValInt:
		e.Int(v.Int)
	case ValBool:
		e.Bool(v.Bool)
	case ValString:
		e.String(v.Str)
	case ValRecord:
		e.Array(len(v.Fields))
		for _, f := range v.Fields {
			e.Array(2)
			e.String(f.Label)
			EncodeValue(e, f.Value)
		}
	case ValList:
		e.Array(len(v.Elems))
		for _, x := range v.Elems {
			EncodeValue(e, x)
		}
	case ValType:
		fomega.EncodeType(e, v.Type)
	case ValBox:
		fomega.EncodeType(e, v.Type)
		EncodeValue(e, *v.Inner)
	}
}

func DecodeValue(d *wire.Decoder) Value {
	tag, n := d.Node()
	if d.Failed() {
		return Value{}
	}
	k := ValueKind(tag)
	if int(k) >= len(valueFieldCount) || !k.Valid() || k == ValClosure || k == ValTypeClosure {
		d.Fail(wire.UnsupportedVariant(schemaValue, int(tag)))
		return Value{}
	}
	if !d.Expect("value "+k.String(), n, valueFieldCount[k]) {
		return Value{}
	}
	switch k {
	case ValInt:
		return IntValue(d.Int())
	case ValBool:
		return BoolValue(d.Bool())
	case ValString:
		return StringValue(d.String())
	case ValUnit:
		return UnitValue()
	case ValRecord:
		m := d.Array()
		fields := make([]FieldValue, 0, m)
		for i := 0; i < m && !d.Failed(); i++ {
			if !d.Expect("record field", d.Array(), 2) {
				break
			}
			fields = append(fields, FieldValue{Label: d.String(), Value: DecodeValue(d)})
		}
		for i := 1; i < len(fields) && !d.Failed(); i++ {
			if fields[i-1].Label >= fields[i].Label {
				d.Failf("record fields are not sorted: %q before %q", fields[i-1].Label, fields[i].Label)
			}
		}
		return Value{Kind: ValRecord, Fields: fields}
	case ValList:
		m := d.Array()
		elems := make([]Value, 0, m)
		for i := 0; i < m && !d.Failed(); i++ {
			elems = append(elems, DecodeValue(d))
		}
		return ListValue(elems...)
	case ValType:
		t := fomega.DecodeType(d)
		if t == nil && !d.Failed() {
			d.Failf("type value without a type")
		}
		return TypeValue(t)
	case ValBox:
		t := fomega.DecodeType(d)
		if t == nil && !d.Failed() {
			d.Failf("dyn value without a type")
		}
		return box(DecodeValue(d), t)
	}
	return Value{}
}
