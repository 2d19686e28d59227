package protocol

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"LatticeDB/types"
)

// Encode produces the header bytes followed by the payload bytes for p. The
// header's payload_length field equals the payload byte count.
func Encode(p Packet) []byte {
	payload := p.EncodePayload()
	header := Header{
		Version:       ProtocolVersion,
		PacketID:      p.ID(),
		Type:          p.Type(),
		PayloadLength: uint32(len(payload)),
	}

	out := make([]byte, 0, HeaderSize+len(payload))
	out = append(out, EncodeHeader(header)...)
	out = append(out, payload...)
	return out
}

// Decode builds the typed packet described by header from payload. payload must be
// exactly header.PayloadLength bytes; the caller (the session's streaming decoder)
// is responsible for buffering until that much is available.
func Decode(header Header, payload []byte) (Packet, error) {
	if uint32(len(payload)) != header.PayloadLength {
		return nil, newDecodeError(ErrMalformedPayload, fmt.Sprintf("payload is %d bytes, header declared %d", len(payload), header.PayloadLength))
	}

	switch header.Type {
	case TypeAuthRequest:
		key, err := decodeUTF8String(payload)
		if err != nil {
			return nil, err
		}
		return &AuthRequest{PacketID: header.PacketID, APIKey: key}, nil

	case TypeAuthResponse:
		status, errorCode, err := decodeStatusPayload(payload)
		if err != nil {
			return nil, err
		}
		return &AuthResponse{PacketID: header.PacketID, Status: status, ErrorCode: errorCode}, nil

	case TypeDataRequest:
		key, err := decodeUTF8String(payload)
		if err != nil {
			return nil, err
		}
		return &DataRequest{PacketID: header.PacketID, Key: key}, nil

	case TypeDataResponse:
		return decodeDataResponse(header, payload)

	case TypeDataAdditionRequest:
		return decodeDataAdditionRequest(header, payload)

	case TypeDataAdditionResponse:
		status, errorCode, err := decodeStatusPayload(payload)
		if err != nil {
			return nil, err
		}
		return &DataAdditionResponse{PacketID: header.PacketID, Status: status, ErrorCode: errorCode}, nil

	case TypeDataRemovalRequest:
		key, err := decodeUTF8String(payload)
		if err != nil {
			return nil, err
		}
		return &DataRemovalRequest{PacketID: header.PacketID, Key: key}, nil

	case TypeDataRemovalResponse:
		status, errorCode, err := decodeStatusPayload(payload)
		if err != nil {
			return nil, err
		}
		return &DataRemovalResponse{PacketID: header.PacketID, Status: status, ErrorCode: errorCode}, nil

	default:
		return nil, newDecodeError(ErrUnknownPacketType, fmt.Sprintf("0x%02x", byte(header.Type)))
	}
}

func decodeUTF8String(payload []byte) (string, error) {
	if !utf8.Valid(payload) {
		return "", newDecodeError(ErrMalformedPayload, "key is not valid UTF-8")
	}
	return string(payload), nil
}

// decodeStatusPayload decodes the common {status} or {status, errorCode} shape
// shared by AuthResponse, DataAdditionResponse and DataRemovalResponse.
func decodeStatusPayload(payload []byte) (status, errorCode byte, err error) {
	if len(payload) == 0 {
		return 0, 0, newDecodeError(ErrMalformedPayload, "empty status payload")
	}
	status = payload[0]
	if status == StatusSuccess {
		return status, 0, nil
	}
	if len(payload) < 2 {
		return 0, 0, newDecodeError(ErrMalformedPayload, "failure payload missing error code")
	}
	return status, payload[1], nil
}

func decodeDataResponse(header Header, payload []byte) (Packet, error) {
	status, errorCode, err := decodeStatusPayload(payload)
	if err != nil {
		return nil, err
	}
	if status != StatusSuccess {
		return &DataResponse{PacketID: header.PacketID, Status: status, ErrorCode: errorCode}, nil
	}
	if len(payload) < 2 {
		return nil, newDecodeError(ErrMalformedPayload, "success payload missing value type")
	}
	kind := types.ValueKind(payload[1])
	raw := append([]byte{}, payload[2:]...)
	v := types.Value{Kind: kind, Raw: raw}
	if err := v.Validate(); err != nil {
		return nil, newDecodeError(ErrMalformedPayload, err.Error())
	}
	return &DataResponse{PacketID: header.PacketID, Status: status, ValueKind: kind, ValueRaw: raw}, nil
}

func decodeDataAdditionRequest(header Header, payload []byte) (Packet, error) {
	if len(payload) < 4 {
		return nil, newDecodeError(ErrMalformedPayload, "addition request shorter than key-length prefix")
	}
	keyLen := binary.BigEndian.Uint32(payload[0:4])
	rest := payload[4:]
	if uint64(keyLen) > uint64(len(rest)) {
		return nil, newDecodeError(ErrMalformedPayload, "key length exceeds remaining payload")
	}
	keyBytes := rest[:keyLen]
	if !utf8.Valid(keyBytes) {
		return nil, newDecodeError(ErrMalformedPayload, "key is not valid UTF-8")
	}
	rest = rest[keyLen:]
	if len(rest) < 1 {
		return nil, newDecodeError(ErrMalformedPayload, "addition request missing value type")
	}
	kind := types.ValueKind(rest[0])
	raw := append([]byte{}, rest[1:]...)
	v := types.Value{Kind: kind, Raw: raw}
	if err := v.Validate(); err != nil {
		return nil, newDecodeError(ErrMalformedPayload, err.Error())
	}
	return &DataAdditionRequest{
		PacketID:  header.PacketID,
		Key:       string(keyBytes),
		ValueKind: kind,
		ValueRaw:  raw,
	}, nil
}
