// Package wire frames stored run documents with their generation and the tree
// codec that produced the payload.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Format identifies the tree codec of a framed payload.
type Format byte

const (
	FormatOpaque Format = iota
	FormatJSON
	FormatCBOR
	FormatMsgpack
	FormatProtobuf
)

func (f Format) String() string {
	switch f {
	case FormatOpaque:
		return "opaque"
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	case FormatMsgpack:
		return "msgpack"
	case FormatProtobuf:
		return "protobuf"
	default:
		return fmt.Sprintf("format(%d)", byte(f))
	}
}

const (
	version byte = 1
	hdrLen       = 4 + 1 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("wire: corrupt run entry")
	magic4     = [...]byte{'O', 'P', 'T', 'R'}
)

// Frame is a decoded entry. Payload aliases the input buffer.
type Frame struct {
	Gen     uint64
	Format  Format
	Payload []byte
}

// Encode lays out magic(4) | ver(1) | format(1) | gen(u64 be) | vlen(u32 be) | payload(vlen).
func Encode(gen uint64, format Format, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(byte(format))

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], gen)
	buf.Write(u8[:])

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode parses a frame. The payload length must account for every byte after
// the header.
func Decode(b []byte) (Frame, error) {
	if len(b) < hdrLen || !bytes.Equal(b[:4], magic4[:]) || b[4] != version {
		return Frame{}, ErrCorrupt
	}
	f := Frame{
		Format: Format(b[5]),
		Gen:    binary.BigEndian.Uint64(b[6:14]),
	}
	vlen := uint64(binary.BigEndian.Uint32(b[14:18]))
	if vlen != uint64(len(b)-hdrLen) {
		return Frame{}, ErrCorrupt
	}
	f.Payload = b[hdrLen:]
	return f, nil
}
