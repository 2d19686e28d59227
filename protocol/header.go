package protocol

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed wire header length in bytes.
const HeaderSize = 10

// ProtocolVersion is the only version byte this codec accepts.
const ProtocolVersion byte = 0x01

// Header is the 10-byte fixed wire header preceding every packet's payload. All
// multi-byte fields are big-endian.
type Header struct {
	Version       byte
	PacketID      uint32
	Type          PacketType
	PayloadLength uint32
}

// EncodeHeader serializes h to its 10-byte wire form.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.Version
	binary.BigEndian.PutUint32(buf[1:5], h.PacketID)
	buf[5] = byte(h.Type)
	binary.BigEndian.PutUint32(buf[6:10], h.PayloadLength)
	return buf
}

// DecodeHeader parses exactly HeaderSize bytes into a Header, validating the
// protocol version and packet-type tag.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) != HeaderSize {
		return Header{}, newDecodeError(ErrMalformedPayload, fmt.Sprintf("header must be %d bytes, got %d", HeaderSize, len(buf)))
	}

	version := buf[0]
	if version != ProtocolVersion {
		return Header{}, newDecodeError(ErrVersionMismatch, fmt.Sprintf("got 0x%02x, want 0x%02x", version, ProtocolVersion))
	}

	typ := PacketType(buf[5])
	if !typ.valid() {
		return Header{}, newDecodeError(ErrUnknownPacketType, fmt.Sprintf("0x%02x", byte(typ)))
	}

	return Header{
		Version:       version,
		PacketID:      binary.BigEndian.Uint32(buf[1:5]),
		Type:          typ,
		PayloadLength: binary.BigEndian.Uint32(buf[6:10]),
	}, nil
}
