package signal

import (
	"fmt"
	"reflect"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Subprotocols a client may ask for. Without one the connection speaks JSON.
const (
	SubprotocolJSON = "relay.json"
	SubprotocolCBOR = "relay.cbor"
)

// codec is the envelope encoding of one connection, picked at upgrade time.
type codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// FrameType is the websocket frame type used for outbound events.
	FrameType() int
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) FrameType() int                     { return websocket.TextMessage }

// cborCodec reuses the json struct tags; fxamacker/cbor falls back to them.
type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() cborCodec {
	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	enc, err := encOptions.EncMode()
	if err != nil {
		panic("signal: cbor encoder: " + err.Error())
	}
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("signal: cbor decoder: " + err.Error())
	}
	return cborCodec{enc: enc, dec: dec}
}

func (c cborCodec) Marshal(v any) ([]byte, error)      { return c.enc.Marshal(v) }
func (c cborCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }
func (cborCodec) FrameType() int                       { return websocket.BinaryMessage }

var cborWire = newCBORCodec()

func codecFor(subprotocol string) codec {
	if subprotocol == SubprotocolCBOR {
		return cborWire
	}
	return jsonCodec{}
}

// encodeEvent renders ev in the connection's encoding.
func encodeEvent(c codec, ev core.Event) ([]byte, error) {
	shape, err := wireShape(ev)
	if err != nil {
		return nil, err
	}
	return c.Marshal(shape)
}

// wireShape picks the fields each event type carries. Lists are always present, even when empty.
func wireShape(ev core.Event) (any, error) {
	switch ev.Type {
	case core.EventJoined:
		return struct {
			Type     core.EventType    `json:"type"`
			Room     domain.RoomID     `json:"room"`
			RoomName domain.RoomName   `json:"room_name"`
			Identity domain.Identity   `json:"identity"`
			Members  []domain.Identity `json:"members"`
		}{ev.Type, ev.Room, ev.RoomName, ev.Identity, nonNil(ev.Members)}, nil
	case core.EventHistory:
		return struct {
			Type     core.EventType   `json:"type"`
			Room     domain.RoomID    `json:"room"`
			Messages []domain.Message `json:"messages"`
		}{ev.Type, ev.Room, nonNil(ev.Messages)}, nil
	case core.EventMemberJoined, core.EventMemberLeft:
		return struct {
			Type     core.EventType  `json:"type"`
			Room     domain.RoomID   `json:"room"`
			Identity domain.Identity `json:"identity"`
		}{ev.Type, ev.Room, ev.Identity}, nil
	case core.EventMessage:
		return struct {
			Type    core.EventType `json:"type"`
			Message domain.Message `json:"message"`
		}{ev.Type, ev.Message}, nil
	case core.EventLeft:
		return struct {
			Type core.EventType `json:"type"`
			Room domain.RoomID  `json:"room"`
		}{ev.Type, ev.Room}, nil
	case core.EventError:
		return struct {
			Type   core.EventType `json:"type"`
			Kind   core.ErrorKind `json:"kind"`
			Detail string         `json:"detail"`
		}{ev.Type, ev.Kind, ev.Detail}, nil
	case core.EventPong:
		return struct {
			Type core.EventType `json:"type"`
		}{ev.Type}, nil
	case core.EventWhoAmI:
		return struct {
			Type     core.EventType  `json:"type"`
			Identity domain.Identity `json:"identity"`
			Room     domain.RoomID   `json:"room,omitempty"`
			RoomName domain.RoomName `json:"room_name,omitempty"`
		}{ev.Type, ev.Identity, ev.Room, ev.RoomName}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
