package protocol

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

const typeURLPrefix = "type.googleapis.com/"

var (
	ErrUnknownType  = errors.New("unknown payload type")
	ErrTypeMismatch = errors.New("payload type mismatch")
)

// Envelope is the outer record of every frame. The Any type URL is the tag
// that selects the payload schema.
//
//	message Envelope { google.protobuf.Any payload = 1; }
type Envelope struct {
	Payload *anypb.Any
}

func TypeURL(typeName string) string {
	return typeURLPrefix + typeName
}

// TypeURL returns the payload tag, or "" when the envelope is empty.
func (e *Envelope) TypeURL() string {
	if e == nil || e.Payload == nil {
		return ""
	}
	return e.Payload.GetTypeUrl()
}

// TypeName strips the URL prefix from the payload tag.
func (e *Envelope) TypeName() string {
	url := e.TypeURL()
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		return url[i+1:]
	}
	return url
}

func (e *Envelope) Marshal() ([]byte, error) {
	if e == nil || e.Payload == nil {
		return nil, ErrMissingPayload
	}
	payload, err := proto.MarshalOptions{Deterministic: true}.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	b := protowire.AppendTag(nil, 1, protowire.BytesType)
	return protowire.AppendBytes(b, payload), nil
}

func (e *Envelope) Unmarshal(b []byte) error {
	e.Payload = nil
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		return consumeEmbedded(typ, b, func(v []byte) error {
			payload := &anypb.Any{}
			if err := proto.Unmarshal(v, payload); err != nil {
				return err
			}
			e.Payload = payload
			return nil
		})
	})
	if err != nil {
		return err
	}
	if e.Payload == nil {
		return ErrMissingPayload
	}
	return nil
}

// Equal reports whether both envelopes carry the same payload.
func (e *Envelope) Equal(other *Envelope) bool {
	if e == nil || other == nil {
		return e == other
	}
	return proto.Equal(e.Payload, other.Payload)
}

// Pack wraps msg in a new envelope.
func Pack(msg Message) (*Envelope, error) {
	value, err := msg.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", msg.TypeName(), err)
	}
	return &Envelope{Payload: &anypb.Any{TypeUrl: TypeURL(msg.TypeName()), Value: value}}, nil
}

// Unpack decodes the envelope payload into msg, which must match the tag.
func Unpack(e *Envelope, msg Message) error {
	if want, got := TypeURL(msg.TypeName()), e.TypeURL(); want != got {
		return fmt.Errorf("%w: want %s, got %q", ErrTypeMismatch, want, got)
	}
	if err := msg.Unmarshal(e.Payload.GetValue()); err != nil {
		return fmt.Errorf("unmarshal %s: %w", msg.TypeName(), err)
	}
	return nil
}

var variants = map[string]func() Message{}

func register(newMsg func() Message) {
	variants[TypeURL(newMsg().TypeName())] = newMsg
}

func init() {
	register(func() Message { return &LineOfSightRequest{} })
	register(func() Message { return &OvercastChange{} })
	register(func() Message { return &FogChange{} })
	register(func() Message { return &RainChange{} })
	register(func() Message { return &TimeOfDayChange{} })
	register(func() Message { return &CreateActor{} })
	register(func() Message { return &RemoveActors{} })
	register(func() Message { return &TeleportEntity{} })
	register(func() Message { return &RunScript{} })
	register(func() Message { return &LineOfSightResponse{} })
	register(func() Message { return &GenericResult{} })
}

// Open decodes the envelope into a freshly allocated variant chosen by its tag.
func Open(e *Envelope) (Message, error) {
	newMsg, ok := variants[e.TypeURL()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, e.TypeURL())
	}
	msg := newMsg()
	if err := Unpack(e, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
