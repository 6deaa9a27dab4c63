// Package message moves pipeline artifacts across process boundaries.
//
// Every artifact travels as one frame: the stage IRs, a final value, or a
// batch of diagnostics. Readers validate the frame kind and the schema
// version before any part of the payload is used.
package message

import (
	"fmt"
	"io"

	"langlang/internal/ast"
	"langlang/internal/diag"
	"langlang/internal/eval"
	"langlang/internal/fomega"
	"langlang/internal/typedast"
	"langlang/internal/wire"
)

// Message is a decoded frame. Exactly one payload field is set, matching Kind.
type Message struct {
	Kind        wire.Kind
	AST         *ast.Unit
	TypedAST    *typedast.Unit
	FOmega      *fomega.Unit
	Value       *eval.Value
	Diagnostics []diag.Diagnostic
}

func write(w io.Writer, kind wire.Kind, payload []byte, err error) error {
	if err != nil {
		return fmt.Errorf("encode %s message: %w", kind, err)
	}
	return wire.WriteFrame(w, kind, payload)
}

func WriteAST(w io.Writer, u *ast.Unit) error {
	p, err := ast.Marshal(u)
	return write(w, wire.KindAST, p, err)
}

func WriteTypedAST(w io.Writer, u *typedast.Unit) error {
	p, err := typedast.Marshal(u)
	return write(w, wire.KindTypedAST, p, err)
}

func WriteFOmega(w io.Writer, u *fomega.Unit) error {
	p, err := fomega.Marshal(u)
	return write(w, wire.KindFOmega, p, err)
}

// WriteValue fails with eval.ErrNotTransportable for values holding functions.
func WriteValue(w io.Writer, v eval.Value) error {
	p, err := eval.Marshal(v)
	return write(w, wire.KindValue, p, err)
}

func WriteDiagnostics(w io.Writer, ds []diag.Diagnostic) error {
	p, err := MarshalDiagnostics(ds)
	return write(w, wire.KindDiagnostic, p, err)
}

// Write frames m according to its kind.
func Write(w io.Writer, m *Message) error {
	switch m.Kind {
	case wire.KindAST:
		return WriteAST(w, m.AST)
	case wire.KindTypedAST:
		return WriteTypedAST(w, m.TypedAST)
	case wire.KindFOmega:
		return WriteFOmega(w, m.FOmega)
	case wire.KindValue:
		if m.Value == nil {
			return fmt.Errorf("value message without a value")
		}
		return WriteValue(w, *m.Value)
	case wire.KindDiagnostic:
		return WriteDiagnostics(w, m.Diagnostics)
	}
	return wire.Malformed("frame", "cannot write message kind %s", m.Kind)
}

func ReadAST(r io.Reader) (*ast.Unit, error) {
	p, err := wire.ReadFrameKind(r, wire.KindAST)
	if err != nil {
		return nil, err
	}
	return ast.Unmarshal(p)
}

func ReadTypedAST(r io.Reader) (*typedast.Unit, error) {
	p, err := wire.ReadFrameKind(r, wire.KindTypedAST)
	if err != nil {
		return nil, err
	}
	return typedast.Unmarshal(p)
}

func ReadFOmega(r io.Reader) (*fomega.Unit, error) {
	p, err := wire.ReadFrameKind(r, wire.KindFOmega)
	if err != nil {
		return nil, err
	}
	return fomega.Unmarshal(p)
}

func ReadValue(r io.Reader) (eval.Value, error) {
	p, err := wire.ReadFrameKind(r, wire.KindValue)
	if err != nil {
		return eval.Value{}, err
	}
	return eval.Unmarshal(p)
}

func ReadDiagnostics(r io.Reader) ([]diag.Diagnostic, error) {
	p, err := wire.ReadFrameKind(r, wire.KindDiagnostic)
	if err != nil {
		return nil, err
	}
	return UnmarshalDiagnostics(p)
}

// Read decodes the next frame whatever its kind. io.EOF is returned
// unchanged at a clean end of stream.
func Read(r io.Reader) (*Message, error) {
	kind, p, err := wire.ReadFrame(r)
	if err != nil {
		return nil, err
	}
	m := &Message{Kind: kind}
	switch kind {
	case wire.KindAST:
		m.AST, err = ast.Unmarshal(p)
	case wire.KindTypedAST:
		m.TypedAST, err = typedast.Unmarshal(p)
	case wire.KindFOmega:
		m.FOmega, err = fomega.Unmarshal(p)
	case wire.KindValue:
		var v eval.Value
		if v, err = eval.Unmarshal(p); err == nil {
			m.Value = &v
		}
	case wire.KindDiagnostic:
		m.Diagnostics, err = UnmarshalDiagnostics(p)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
