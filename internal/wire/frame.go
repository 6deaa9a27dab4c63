package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"fortio.org/safecast"
)

// Kind identifies the message carried by a frame.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAST
	KindTypedAST
	KindFOmega
	KindValue
	KindDiagnostic
)

func (k Kind) String() string {
	switch k {
	case KindAST:
		return "ast"
	case KindTypedAST:
		return "typedast"
	case KindFOmega:
		return "fomega"
	case KindValue:
		return "value"
	case KindDiagnostic:
		return "diagnostic"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) Valid() bool { return k >= KindAST && k <= KindDiagnostic }

const (
	Magic      = "LLNG"
	headerSize = len(Magic) + 1 + 4
	// MaxPayload bounds a single frame so a corrupt length cannot exhaust memory.
	MaxPayload = 64 << 20
)

// WriteFrame writes one self-delimiting frame.
func WriteFrame(w io.Writer, kind Kind, payload []byte) error {
	if !kind.Valid() {
		return &FormatError{Reason: ReasonMalformed, Schema: "frame", Detail: fmt.Sprintf("invalid kind %d", kind)}
	}
	if len(payload) > MaxPayload {
		return &FormatError{Reason: ReasonTooLarge, Schema: "frame", Detail: fmt.Sprintf("payload is %d bytes", len(payload))}
	}
	n, err := safecast.Conv[uint32](len(payload))
	if err != nil {
		panic(fmt.Errorf("payload length overflow: %w", err))
	}
	var hdr [headerSize]byte
	copy(hdr[:], Magic)
	hdr[len(Magic)] = byte(kind)
	binary.BigEndian.PutUint32(hdr[len(Magic)+1:], n)
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads exactly one frame. io.EOF is returned unchanged when the
// stream ends before the first header byte.
func ReadFrame(r io.Reader) (Kind, []byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return KindInvalid, nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return KindInvalid, nil, &FormatError{Reason: ReasonTruncated, Schema: "frame", Detail: "short header", Err: err}
		}
		return KindInvalid, nil, fmt.Errorf("read frame header: %w", err)
	}
	if !bytes.Equal(hdr[:len(Magic)], []byte(Magic)) {
		return KindInvalid, nil, &FormatError{Reason: ReasonMalformed, Schema: "frame", Detail: fmt.Sprintf("bad magic %q", hdr[:len(Magic)])}
	}
	kind := Kind(hdr[len(Magic)])
	if !kind.Valid() {
		return KindInvalid, nil, &FormatError{Reason: ReasonUnsupportedVariant, Schema: "frame", Tag: int(kind), Detail: "unknown message kind"}
	}
	size := binary.BigEndian.Uint32(hdr[len(Magic)+1:])
	if uint64(size) > MaxPayload {
		return KindInvalid, nil, &FormatError{Reason: ReasonTooLarge, Schema: "frame", Detail: fmt.Sprintf("payload is %d bytes", size)}
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return KindInvalid, nil, &FormatError{Reason: ReasonTruncated, Schema: "frame", Detail: "short payload", Err: err}
	}
	return kind, payload, nil
}

// ReadFrameKind reads a frame and requires it to carry want.
func ReadFrameKind(r io.Reader, want Kind) ([]byte, error) {
	kind, payload, err := ReadFrame(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FormatError{Reason: ReasonTruncated, Schema: "frame", Detail: "empty input", Err: err}
		}
		return nil, err
	}
	if kind != want {
		return nil, &FormatError{Reason: ReasonUnexpectedKind, Schema: "frame", Detail: fmt.Sprintf("expected %s message, got %s", want, kind)}
	}
	return payload, nil
}
