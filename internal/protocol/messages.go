package protocol

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every request and response variant that can be
// carried in an Envelope.
type Message interface {
	TypeName() string
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

// CloudState is the coarse cloud cover understood by the simulation.
type CloudState int32

const (
	CloudClear CloudState = iota
	CloudMostlyClear
	CloudPartlyCloudy
	CloudCloudy
	CloudMostlyCloudy
	CloudOvercast
	CloudThunderstorm
)

var cloudStateNames = [...]string{
	"CLEAR", "MOSTLY_CLEAR", "PARTLY_CLOUDY", "CLOUDY", "MOSTLY_CLOUDY", "OVERCAST", "THUNDERSTORM",
}

func (s CloudState) String() string {
	if s.Valid() {
		return cloudStateNames[s]
	}
	return fmt.Sprintf("CloudState(%d)", int32(s))
}

func (s CloudState) Valid() bool {
	return s >= CloudClear && s <= CloudThunderstorm
}

// CloudStateFromValue maps an overcast fraction in [0,1] onto the seven cloud
// states. Out of range values are clamped.
func CloudStateFromValue(v float64) CloudState {
	step := math.Round(v * float64(CloudThunderstorm))
	switch {
	case math.IsNaN(step) || step < 0:
		return CloudClear
	case step > float64(CloudThunderstorm):
		return CloudThunderstorm
	}
	return CloudState(step)
}

// ActorSide is the allegiance of a created actor.
type ActorSide int32

const (
	SideCivilian ActorSide = iota
	SideFriendly
	SideEnemy
)

func (s ActorSide) String() string {
	switch s {
	case SideCivilian:
		return "CIVILIAN"
	case SideFriendly:
		return "FRIENDLY"
	case SideEnemy:
		return "ENEMY"
	}
	return fmt.Sprintf("ActorSide(%d)", int32(s))
}

type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) marshal() []byte {
	var b []byte
	b = appendDouble(b, 1, v.X)
	b = appendDouble(b, 2, v.Y)
	b = appendDouble(b, 3, v.Z)
	return b
}

func (v *Vector3) unmarshal(b []byte) error {
	*v = Vector3{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeDouble(typ, b, &v.X), nil
		case 2:
			return consumeDouble(typ, b, &v.Y), nil
		case 3:
			return consumeDouble(typ, b, &v.Z), nil
		}
		return 0, nil
	})
}

// EntityIdentifier is the DIS-style site/application/entity triple.
type EntityIdentifier struct {
	Site        uint32
	Application uint32
	Entity      uint32
}

func (id EntityIdentifier) IsZero() bool {
	return id == EntityIdentifier{}
}

func (id EntityIdentifier) String() string {
	return fmt.Sprintf("%d:%d:%d", id.Site, id.Application, id.Entity)
}

func (id EntityIdentifier) marshal() []byte {
	var b []byte
	b = appendUint(b, 1, uint64(id.Site))
	b = appendUint(b, 2, uint64(id.Application))
	b = appendUint(b, 3, uint64(id.Entity))
	return b
}

func (id *EntityIdentifier) unmarshal(b []byte) error {
	*id = EntityIdentifier{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint32(typ, b, &id.Site), nil
		case 2:
			return consumeUint32(typ, b, &id.Application), nil
		case 3:
			return consumeUint32(typ, b, &id.Entity), nil
		}
		return 0, nil
	})
}

// LineOfSightRequest asks whether the observer can see Location. The observer
// is looked up by EntityID when set, otherwise by EntityMarking.
type LineOfSightRequest struct {
	EntityID      EntityIdentifier
	EntityMarking string
	Location      Vector3
}

func (*LineOfSightRequest) TypeName() string { return "simbridge.LineOfSightRequest" }

func (m *LineOfSightRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendEmbedded(b, 1, m.EntityID.marshal())
	b = appendString(b, 2, m.EntityMarking)
	b = appendEmbedded(b, 3, m.Location.marshal())
	return b, nil
}

func (m *LineOfSightRequest) Unmarshal(b []byte) error {
	*m = LineOfSightRequest{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeEmbedded(typ, b, m.EntityID.unmarshal)
		case 2:
			return consumeString(typ, b, &m.EntityMarking), nil
		case 3:
			return consumeEmbedded(typ, b, m.Location.unmarshal)
		}
		return 0, nil
	})
}

type OvercastChange struct {
	State    CloudState
	Duration time.Duration
}

func (*OvercastChange) TypeName() string { return "simbridge.OvercastChange" }

func (m *OvercastChange) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint(b, 1, uint64(m.State))
	return appendDuration(b, 2, m.Duration)
}

func (m *OvercastChange) Unmarshal(b []byte) error {
	*m = OvercastChange{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var v int32
			n := consumeInt32(typ, b, &v)
			m.State = CloudState(v)
			return n, nil
		case 2:
			return consumeDuration(typ, b, &m.Duration)
		}
		return 0, nil
	})
}

// FogChange sets fog density in [0,1]. ColorRGB components are in [0,1].
type FogChange struct {
	Density  float64
	Duration time.Duration
	ColorRGB Vector3
}

func (*FogChange) TypeName() string { return "simbridge.FogChange" }

func (m *FogChange) Marshal() ([]byte, error) {
	var b []byte
	b = appendDouble(b, 1, m.Density)
	b, err := appendDuration(b, 2, m.Duration)
	if err != nil {
		return nil, err
	}
	return appendEmbedded(b, 3, m.ColorRGB.marshal()), nil
}

func (m *FogChange) Unmarshal(b []byte) error {
	*m = FogChange{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeDouble(typ, b, &m.Density), nil
		case 2:
			return consumeDuration(typ, b, &m.Duration)
		case 3:
			return consumeEmbedded(typ, b, m.ColorRGB.unmarshal)
		}
		return 0, nil
	})
}

type RainChange struct {
	Intensity float64
	Duration  time.Duration
}

func (*RainChange) TypeName() string { return "simbridge.RainChange" }

func (m *RainChange) Marshal() ([]byte, error) {
	var b []byte
	b = appendDouble(b, 1, m.Intensity)
	return appendDuration(b, 2, m.Duration)
}

func (m *RainChange) Unmarshal(b []byte) error {
	*m = RainChange{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeDouble(typ, b, &m.Intensity), nil
		case 2:
			return consumeDuration(typ, b, &m.Duration)
		}
		return 0, nil
	})
}

type TimeOfDayChange struct {
	TimePastMidnight time.Duration
}

func (*TimeOfDayChange) TypeName() string { return "simbridge.TimeOfDayChange" }

func (m *TimeOfDayChange) Marshal() ([]byte, error) {
	return appendDuration(nil, 1, m.TimePastMidnight)
}

func (m *TimeOfDayChange) Unmarshal(b []byte) error {
	*m = TimeOfDayChange{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeDuration(typ, b, &m.TimePastMidnight)
		}
		return 0, nil
	})
}

type CreateActor struct {
	Type     string
	Side     ActorSide
	Location Vector3
}

func (*CreateActor) TypeName() string { return "simbridge.CreateActor" }

func (m *CreateActor) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Type)
	b = appendUint(b, 2, uint64(m.Side))
	b = appendEmbedded(b, 3, m.Location.marshal())
	return b, nil
}

func (m *CreateActor) Unmarshal(b []byte) error {
	*m = CreateActor{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Type), nil
		case 2:
			var v int32
			n := consumeInt32(typ, b, &v)
			m.Side = ActorSide(v)
			return n, nil
		case 3:
			return consumeEmbedded(typ, b, m.Location.unmarshal)
		}
		return 0, nil
	})
}

type RemoveActors struct {
	EntityMarkings []string
}

func (*RemoveActors) TypeName() string { return "simbridge.RemoveActors" }

func (m *RemoveActors) Marshal() ([]byte, error) {
	var b []byte
	for _, marking := range m.EntityMarkings {
		// repeated strings keep empty elements
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, marking)
	}
	return b, nil
}

func (m *RemoveActors) Unmarshal(b []byte) error {
	*m = RemoveActors{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		var marking string
		n := consumeString(typ, b, &marking)
		if n > 0 {
			m.EntityMarkings = append(m.EntityMarkings, marking)
		}
		return n, nil
	})
}

type TeleportEntity struct {
	EntityMarking string
	Location      Vector3
	Heading       float64
}

func (*TeleportEntity) TypeName() string { return "simbridge.TeleportEntity" }

func (m *TeleportEntity) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.EntityMarking)
	b = appendEmbedded(b, 2, m.Location.marshal())
	b = appendDouble(b, 3, m.Heading)
	return b, nil
}

func (m *TeleportEntity) Unmarshal(b []byte) error {
	*m = TeleportEntity{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.EntityMarking), nil
		case 2:
			return consumeEmbedded(typ, b, m.Location.unmarshal)
		case 3:
			return consumeDouble(typ, b, &m.Heading), nil
		}
		return 0, nil
	})
}

// RunScript executes ScriptText in the simulation. An empty ExecutorMarking
// runs the script without an owning entity.
type RunScript struct {
	ScriptText      string
	ExecutorMarking string
}

func (*RunScript) TypeName() string { return "simbridge.RunScript" }

func (m *RunScript) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.ScriptText)
	b = appendString(b, 2, m.ExecutorMarking)
	return b, nil
}

func (m *RunScript) Unmarshal(b []byte) error {
	*m = RunScript{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.ScriptText), nil
		case 2:
			return consumeString(typ, b, &m.ExecutorMarking), nil
		}
		return 0, nil
	})
}

// LineOfSightResponse carries visibility in [0,1].
type LineOfSightResponse struct {
	Visibility float64
}

func (*LineOfSightResponse) TypeName() string { return "simbridge.LineOfSightResponse" }

func (m *LineOfSightResponse) Marshal() ([]byte, error) {
	return appendDouble(nil, 1, m.Visibility), nil
}

func (m *LineOfSightResponse) Unmarshal(b []byte) error {
	*m = LineOfSightResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeDouble(typ, b, &m.Visibility), nil
		}
		return 0, nil
	})
}

// GenericResult is the reply to every state-changing request and to requests
// that could not be routed.
type GenericResult struct {
	Success bool
	Message string
}

func (*GenericResult) TypeName() string { return "simbridge.GenericResult" }

func (m *GenericResult) Marshal() ([]byte, error) {
	var b []byte
	b = appendBool(b, 1, m.Success)
	b = appendString(b, 2, m.Message)
	return b, nil
}

func (m *GenericResult) Unmarshal(b []byte) error {
	*m = GenericResult{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeBool(typ, b, &m.Success), nil
		case 2:
			return consumeString(typ, b, &m.Message), nil
		}
		return 0, nil
	})
}
