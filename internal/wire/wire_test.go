package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, KindAST, []byte("abc")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := WriteFrame(&buf, KindValue, nil); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	kind, payload, err := ReadFrame(&buf)
	if err != nil || kind != KindAST || string(payload) != "abc" {
		t.Fatalf("first frame: %v %q %v", kind, payload, err)
	}
	kind, payload, err = ReadFrame(&buf)
	if err != nil || kind != KindValue || len(payload) != 0 {
		t.Fatalf("second frame: %v %q %v", kind, payload, err)
	}
	if _, _, err := ReadFrame(&buf); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestReadFrameErrors(t *testing.T) {
	var fe *FormatError
	cases := []struct {
		name   string
		data   []byte
		reason Reason
	}{
		{"bad_magic", []byte("XXXX\x01\x00\x00\x00\x00"), ReasonMalformed},
		{"unknown_kind", []byte("LLNG\x09\x00\x00\x00\x00"), ReasonUnsupportedVariant},
		{"short_header", []byte("LLN"), ReasonTruncated},
		{"short_payload", []byte("LLNG\x01\x00\x00\x00\x05ab"), ReasonTruncated},
		{"too_large", []byte("LLNG\x01\xff\xff\xff\xff"), ReasonTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ReadFrame(bytes.NewReader(tc.data))
			if !errors.As(err, &fe) {
				t.Fatalf("expected FormatError, got %v", err)
			}
			if fe.Reason != tc.reason {
				t.Fatalf("reason = %v, want %v", fe.Reason, tc.reason)
			}
		})
	}
}

func TestReadFrameKindMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, KindFOmega, []byte{0x90}); err != nil {
		t.Fatal(err)
	}
	_, err := ReadFrameKind(&buf, KindAST)
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Reason != ReasonUnexpectedKind {
		t.Fatalf("expected unexpected kind, got %v", err)
	}
}

func TestCheckVersion(t *testing.T) {
	for _, v := range []string{"1.0.0", "1.4.2"} {
		if err := CheckVersion(v); err != nil {
			t.Fatalf("CheckVersion(%s): %v", v, err)
		}
	}
	for _, v := range []string{"2.0.0", "0.9.0", "one"} {
		if err := CheckVersion(v); err == nil {
			t.Fatalf("CheckVersion(%s) should fail", v)
		}
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	data, err := Marshal(func(e *Encoder) {
		e.Node(3, 4)
		e.Int(-42)
		e.String("hi")
		e.Bool(true)
		e.Nil()
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var (
		tag    uint8
		fields int
		n      int64
		s      string
		b      bool
		isNil  bool
	)
	err = Unmarshal(data, "test", func(d *Decoder) {
		tag, fields = d.Node()
		n = d.Int()
		s = d.String()
		b = d.Bool()
		isNil = d.IsNil()
	})
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if tag != 3 || fields != 4 || n != -42 || s != "hi" || !b || !isNil {
		t.Fatalf("decoded %d %d %d %q %v %v", tag, fields, n, s, b, isNil)
	}
}

func TestUnmarshalTrailingBytes(t *testing.T) {
	data, err := Marshal(func(e *Encoder) { e.Uint(1) })
	if err != nil {
		t.Fatal(err)
	}
	data = append(data, 0x01)
	err = Unmarshal(data, "test", func(d *Decoder) { d.Uint() })
	if err == nil {
		t.Fatalf("expected trailing-bytes error")
	}
}

func TestUnmarshalIncompatibleVersion(t *testing.T) {
	e := NewEncoder()
	e.Array(2)
	e.String("2.0.0")
	e.Uint(1)
	err := Unmarshal(e.Bytes(), "test", func(d *Decoder) { d.Uint() })
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Reason != ReasonIncompatibleSchema {
		t.Fatalf("expected incompatible schema, got %v", err)
	}
}

func TestUnsupportedVariantMessage(t *testing.T) {
	err := UnsupportedVariant("ast.Expr", 99)
	if got := err.Error(); got != "ast.Expr: unsupported variant tag 99" {
		t.Fatalf("Error() = %q", got)
	}
	if err.Diagnostic().Code.ID() != "MSG1002" {
		t.Fatalf("unexpected code %s", err.Diagnostic().Code.ID())
	}
}
