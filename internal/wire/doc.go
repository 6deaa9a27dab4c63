// Package wire implements the byte layout shared by every stage message.
//
// A frame is
//
//	"LLNG" | kind (1 byte) | payload length (uint32, big endian) | payload
//
// and the payload is a msgpack array [schema_version, body]. Trees are
// msgpack arrays whose first element is the variant tag. Readers validate
// the version, every tag and every field count before a tree is handed
// to a stage.
package wire
