package protocol

import (
	"encoding/binary"

	"LatticeDB/types"
)

// PacketType tags which of the eight wire packet kinds a header introduces.
type PacketType byte

const (
	TypeAuthRequest          PacketType = 0x01
	TypeAuthResponse         PacketType = 0x02
	TypeDataRequest          PacketType = 0x03
	TypeDataResponse         PacketType = 0x04
	TypeDataAdditionRequest  PacketType = 0x05
	TypeDataAdditionResponse PacketType = 0x06
	TypeDataRemovalRequest   PacketType = 0x07
	TypeDataRemovalResponse  PacketType = 0x08
)

func (t PacketType) valid() bool {
	return t >= TypeAuthRequest && t <= TypeDataRemovalResponse
}

// Status bytes.
const (
	StatusSuccess byte = 0x01
	StatusFailure byte = 0x02
)

// Error codes, carried after a Failure status byte.
const (
	ErrorAuthRequired    byte = 0x01
	ErrorKeyNotFound     byte = 0x02
	ErrorUnexpectedError byte = 0x03
)

// Packet is any of the eight wire packet kinds. A packet id of 0 means the sender
// does not expect a response.
type Packet interface {
	Type() PacketType
	ID() uint32
	SetID(id uint32)
	EncodePayload() []byte
}

// AuthRequest carries the client's shared-secret api key, the packet's entire
// payload.
type AuthRequest struct {
	PacketID uint32
	APIKey   string
}

func (p *AuthRequest) Type() PacketType    { return TypeAuthRequest }
func (p *AuthRequest) ID() uint32          { return p.PacketID }
func (p *AuthRequest) SetID(id uint32)     { p.PacketID = id }
func (p *AuthRequest) EncodePayload() []byte { return []byte(p.APIKey) }

// AuthResponse reports whether authentication succeeded.
type AuthResponse struct {
	PacketID  uint32
	Status    byte
	ErrorCode byte // only meaningful when Status == StatusFailure
}

func (p *AuthResponse) Type() PacketType { return TypeAuthResponse }
func (p *AuthResponse) ID() uint32       { return p.PacketID }
func (p *AuthResponse) SetID(id uint32)  { p.PacketID = id }
func (p *AuthResponse) EncodePayload() []byte {
	if p.Status == StatusSuccess {
		return []byte{StatusSuccess}
	}
	return []byte{StatusFailure, p.ErrorCode}
}

// DataRequest asks for the value stored under Key, the packet's entire payload.
type DataRequest struct {
	PacketID uint32
	Key      string
}

func (p *DataRequest) Type() PacketType      { return TypeDataRequest }
func (p *DataRequest) ID() uint32            { return p.PacketID }
func (p *DataRequest) SetID(id uint32)       { p.PacketID = id }
func (p *DataRequest) EncodePayload() []byte { return []byte(p.Key) }

// DataResponse carries the looked-up value on success, or an error code on failure.
type DataResponse struct {
	PacketID  uint32
	Status    byte
	ErrorCode byte            // only meaningful when Status == StatusFailure
	ValueKind types.ValueKind // only meaningful when Status == StatusSuccess
	ValueRaw  []byte          // only meaningful when Status == StatusSuccess
}

func (p *DataResponse) Type() PacketType { return TypeDataResponse }
func (p *DataResponse) ID() uint32       { return p.PacketID }
func (p *DataResponse) SetID(id uint32)  { p.PacketID = id }
func (p *DataResponse) EncodePayload() []byte {
	if p.Status == StatusSuccess {
		out := make([]byte, 0, 2+len(p.ValueRaw))
		out = append(out, StatusSuccess, byte(p.ValueKind))
		out = append(out, p.ValueRaw...)
		return out
	}
	return []byte{StatusFailure, p.ErrorCode}
}

// DataAdditionRequest asks the store to insert-or-replace Key with a typed value.
type DataAdditionRequest struct {
	PacketID  uint32
	Key       string
	ValueKind types.ValueKind
	ValueRaw  []byte
}

func (p *DataAdditionRequest) Type() PacketType { return TypeDataAdditionRequest }
func (p *DataAdditionRequest) ID() uint32       { return p.PacketID }
func (p *DataAdditionRequest) SetID(id uint32)  { p.PacketID = id }
func (p *DataAdditionRequest) EncodePayload() []byte {
	keyBytes := []byte(p.Key)
	out := make([]byte, 4, 4+len(keyBytes)+1+len(p.ValueRaw))
	binary.BigEndian.PutUint32(out, uint32(len(keyBytes)))
	out = append(out, keyBytes...)
	out = append(out, byte(p.ValueKind))
	out = append(out, p.ValueRaw...)
	return out
}

// DataAdditionResponse reports whether the insert-or-replace succeeded.
type DataAdditionResponse struct {
	PacketID  uint32
	Status    byte
	ErrorCode byte
}

func (p *DataAdditionResponse) Type() PacketType { return TypeDataAdditionResponse }
func (p *DataAdditionResponse) ID() uint32       { return p.PacketID }
func (p *DataAdditionResponse) SetID(id uint32)  { p.PacketID = id }
func (p *DataAdditionResponse) EncodePayload() []byte {
	if p.Status == StatusSuccess {
		return []byte{StatusSuccess}
	}
	return []byte{StatusFailure, p.ErrorCode}
}

// DataRemovalRequest asks the store to remove Key, the packet's entire payload.
type DataRemovalRequest struct {
	PacketID uint32
	Key      string
}

func (p *DataRemovalRequest) Type() PacketType      { return TypeDataRemovalRequest }
func (p *DataRemovalRequest) ID() uint32            { return p.PacketID }
func (p *DataRemovalRequest) SetID(id uint32)       { p.PacketID = id }
func (p *DataRemovalRequest) EncodePayload() []byte { return []byte(p.Key) }

// DataRemovalResponse reports whether the removal succeeded. Removal of an absent
// key always succeeds at the store layer; this response only carries a failure when
// the request could not even be dispatched (auth-required, unexpected engine error).
type DataRemovalResponse struct {
	PacketID  uint32
	Status    byte
	ErrorCode byte
}

func (p *DataRemovalResponse) Type() PacketType { return TypeDataRemovalResponse }
func (p *DataRemovalResponse) ID() uint32       { return p.PacketID }
func (p *DataRemovalResponse) SetID(id uint32)  { p.PacketID = id }
func (p *DataRemovalResponse) EncodePayload() []byte {
	if p.Status == StatusSuccess {
		return []byte{StatusSuccess}
	}
	return []byte{StatusFailure, p.ErrorCode}
}
