package protocol

import (
	"math/rand"
	"reflect"
	"testing"

	"LatticeDB/types"
)

func roundTrip(t *testing.T, p Packet) Packet {
	t.Helper()
	wire := Encode(p)
	if len(wire) != HeaderSize+len(p.EncodePayload()) {
		t.Fatalf("encoded length %d, want %d", len(wire), HeaderSize+len(p.EncodePayload()))
	}
	header, err := DecodeHeader(wire[:HeaderSize])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	got, err := Decode(header, wire[HeaderSize:])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestRoundTripAllPacketKinds(t *testing.T) {
	cases := []Packet{
		&AuthRequest{PacketID: 1, APIKey: "s3cr3t"},
		&AuthResponse{PacketID: 1, Status: StatusSuccess},
		&AuthResponse{PacketID: 2, Status: StatusFailure, ErrorCode: ErrorAuthRequired},
		&DataRequest{PacketID: 3, Key: "k"},
		&DataResponse{PacketID: 3, Status: StatusSuccess, ValueKind: types.ValueString, ValueRaw: []byte("hi")},
		&DataResponse{PacketID: 4, Status: StatusFailure, ErrorCode: ErrorKeyNotFound},
		&DataAdditionRequest{PacketID: 5, Key: "k", ValueKind: types.ValueInt, ValueRaw: []byte{0, 0, 0, 7}},
		&DataAdditionResponse{PacketID: 5, Status: StatusSuccess},
		&DataAdditionResponse{PacketID: 6, Status: StatusFailure, ErrorCode: ErrorUnexpectedError},
		&DataRemovalRequest{PacketID: 7, Key: "k"},
		&DataRemovalResponse{PacketID: 7, Status: StatusSuccess},
		&DataRemovalResponse{PacketID: 8, Status: StatusFailure, ErrorCode: ErrorAuthRequired},
	}

	for _, want := range cases {
		got := roundTrip(t, want)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip mismatch:\n got=%#v\nwant=%#v", got, want)
		}
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	p := &AuthRequest{PacketID: 1, APIKey: "x"}
	wire := Encode(p)
	wire[0] = 0x02

	_, err := DecodeHeader(wire[:HeaderSize])
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrVersionMismatch {
		t.Fatalf("got %v, want ErrVersionMismatch", err)
	}
}

func TestDecodeRejectsUnknownPacketType(t *testing.T) {
	p := &AuthRequest{PacketID: 1, APIKey: "x"}
	wire := Encode(p)
	wire[5] = 0xFF

	_, err := DecodeHeader(wire[:HeaderSize])
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrUnknownPacketType {
		t.Fatalf("got %v, want ErrUnknownPacketType", err)
	}
}

func TestDecodeRejectsMalformedDataAdditionRequest(t *testing.T) {
	header := Header{Version: ProtocolVersion, PacketID: 1, Type: TypeDataAdditionRequest, PayloadLength: 2}
	_, err := Decode(header, []byte{0x00, 0x01})
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrMalformedPayload {
		t.Fatalf("got %v, want ErrMalformedPayload", err)
	}
}

func TestDecodeRejectsInvalidUTF8Key(t *testing.T) {
	header := Header{Version: ProtocolVersion, PacketID: 1, Type: TypeDataRequest, PayloadLength: 2}
	_, err := Decode(header, []byte{0xff, 0xfe})
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrMalformedPayload {
		t.Fatalf("got %v, want ErrMalformedPayload", err)
	}
}

// TestDecodeNeverPanicsOnRandomBytes fuzzes the decoder with random header+payload
// combinations: it must always either decode cleanly or return a *DecodeError, and
// it must never panic.
func TestDecodeNeverPanicsOnRandomBytes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		headerBytes := make([]byte, HeaderSize)
		rng.Read(headerBytes)

		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("DecodeHeader panicked on %x: %v", headerBytes, r)
				}
			}()
			header, err := DecodeHeader(headerBytes)
			if err != nil {
				if _, ok := err.(*DecodeError); !ok {
					t.Fatalf("DecodeHeader returned non-DecodeError: %v", err)
				}
				return
			}

			payloadLen := header.PayloadLength % 256
			payload := make([]byte, payloadLen)
			rng.Read(payload)

			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Decode panicked on header=%+v payload=%x: %v", header, payload, r)
				}
			}()
			header.PayloadLength = uint32(len(payload))
			if _, err := Decode(header, payload); err != nil {
				if _, ok := err.(*DecodeError); !ok {
					t.Fatalf("Decode returned non-DecodeError: %v", err)
				}
			}
		}()
	}
}

// TestWireScenarioAuthHappyPath pins the literal bytes of an authentication round
// trip with secret="S": an AuthRequest and its Success AuthResponse, both carrying
// packet id 0x00000001.
func TestWireScenarioAuthHappyPath(t *testing.T) {
	req := &AuthRequest{PacketID: 1, APIKey: "S"}
	gotWire := Encode(req)
	wantWire := []byte{0x01, 0x00, 0x00, 0x00, 0x01, 0x01, 0x00, 0x00, 0x00, 0x01, 0x53}
	if !reflect.DeepEqual(gotWire, wantWire) {
		t.Fatalf("got % x, want % x", gotWire, wantWire)
	}

	resp := &AuthResponse{PacketID: 1, Status: StatusSuccess}
	gotRespWire := Encode(resp)
	wantRespWire := []byte{0x01, 0x00, 0x00, 0x00, 0x01, 0x02, 0x00, 0x00, 0x00, 0x01, 0x01}
	if !reflect.DeepEqual(gotRespWire, wantRespWire) {
		t.Fatalf("got % x, want % x", gotRespWire, wantRespWire)
	}
}

func TestWireScenarioAddAndFindString(t *testing.T) {
	add := &DataAdditionRequest{PacketID: 2, Key: "k", ValueKind: types.ValueString, ValueRaw: []byte("hi")}
	gotWire := Encode(add)
	wantWire := []byte{
		0x01, 0x00, 0x00, 0x00, 0x02, 0x05, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x00, 0x00, 0x01, 0x6B, 0x01, 0x68, 0x69,
	}
	if !reflect.DeepEqual(gotWire, wantWire) {
		t.Fatalf("got % x, want % x", gotWire, wantWire)
	}

	addResp := &DataAdditionResponse{PacketID: 2, Status: StatusSuccess}
	if got := Encode(addResp); !reflect.DeepEqual(got, []byte{0x01, 0x00, 0x00, 0x00, 0x02, 0x06, 0x00, 0x00, 0x00, 0x01, 0x01}) {
		t.Fatalf("got % x", got)
	}

	find := &DataRequest{PacketID: 3, Key: "k"}
	if got := Encode(find); !reflect.DeepEqual(got, []byte{0x01, 0x00, 0x00, 0x00, 0x03, 0x03, 0x00, 0x00, 0x00, 0x01, 0x6B}) {
		t.Fatalf("got % x", got)
	}

	findResp := &DataResponse{PacketID: 3, Status: StatusSuccess, ValueKind: types.ValueString, ValueRaw: []byte("hi")}
	wantFindResp := []byte{0x01, 0x00, 0x00, 0x00, 0x03, 0x04, 0x00, 0x00, 0x00, 0x04, 0x01, 0x01, 0x68, 0x69}
	if got := Encode(findResp); !reflect.DeepEqual(got, wantFindResp) {
		t.Fatalf("got % x, want % x", got, wantFindResp)
	}
}

func TestWireScenarioFindMissing(t *testing.T) {
	resp := &DataResponse{PacketID: 4, Status: StatusFailure, ErrorCode: ErrorKeyNotFound}
	want := []byte{0x01, 0x00, 0x00, 0x00, 0x04, 0x04, 0x00, 0x00, 0x00, 0x02, 0x02, 0x02}
	if got := Encode(resp); !reflect.DeepEqual(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}
