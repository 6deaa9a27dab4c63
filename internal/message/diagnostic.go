package message

import (
	"fortio.org/safecast"

	"langlang/internal/diag"
	"langlang/internal/wire"
)

const schemaDiagnostic = "diag.Diagnostic"

// diagnostic: [severity, code, stage, message, span, node_id, [[span, msg]...]]
const diagnosticFields = 7

func MarshalDiagnostics(ds []diag.Diagnostic) ([]byte, error) {
	return wire.Marshal(func(e *wire.Encoder) {
		e.Array(len(ds))
		for i := range ds {
			encodeDiagnostic(e, &ds[i])
		}
	})
}

func UnmarshalDiagnostics(payload []byte) ([]diag.Diagnostic, error) {
	var out []diag.Diagnostic
	err := wire.Unmarshal(payload, schemaDiagnostic, func(d *wire.Decoder) {
		n := d.Array()
		out = make([]diag.Diagnostic, 0, n)
		for i := 0; i < n && !d.Failed(); i++ {
			out = append(out, decodeDiagnostic(d))
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func encodeDiagnostic(e *wire.Encoder, dg *diag.Diagnostic) {
	e.Array(diagnosticFields)
	e.Uint(uint64(dg.Severity))
	e.Uint(uint64(dg.Code))
	e.Uint(uint64(dg.Stage))
	e.String(dg.Message)
	e.Span(dg.Primary)
	e.Uint(uint64(dg.NodeID))
	e.Array(len(dg.Notes))
	for _, n := range dg.Notes {
		e.Array(2)
		e.Span(n.Span)
		e.String(n.Msg)
	}
}

func decodeDiagnostic(d *wire.Decoder) diag.Diagnostic {
	if !d.Expect("diagnostic", d.Array(), diagnosticFields) {
		return diag.Diagnostic{}
	}
	var dg diag.Diagnostic
	dg.Severity = diag.Severity(d.Uint8())
	if dg.Severity > diag.SevError && !d.Failed() {
		d.Failf("severity %d out of range", dg.Severity)
	}
	code, err := safecast.Conv[uint16](d.Uint())
	if err != nil && !d.Failed() {
		d.Failf("diagnostic code: %v", err)
	}
	dg.Code = diag.Code(code)
	dg.Stage = diag.Stage(d.Uint8())
	if dg.Stage > diag.StageDriver && !d.Failed() {
		d.Failf("stage %d out of range", dg.Stage)
	}
	dg.Message = d.String()
	dg.Primary = d.Span()
	dg.NodeID = d.Uint32()
	n := d.Array()
	for i := 0; i < n && !d.Failed(); i++ {
		if !d.Expect("note", d.Array(), 2) {
			break
		}
		dg.Notes = append(dg.Notes, diag.Note{Span: d.Span(), Msg: d.String()})
	}
	return dg
}
