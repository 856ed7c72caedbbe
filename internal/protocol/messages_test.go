package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCloudStateFromValue(t *testing.T) {
	tests := []struct {
		value float64
		want  CloudState
	}{
		{-0.5, CloudClear},
		{0, CloudClear},
		{0.05, CloudClear},
		{0.17, CloudMostlyClear},
		{0.5, CloudCloudy},
		{0.7, CloudMostlyCloudy},
		{0.9, CloudOvercast},
		{1, CloudThunderstorm},
		{3, CloudThunderstorm},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CloudStateFromValue(tt.value), "value %v", tt.value)
	}
	assert.Equal(t, "MOSTLY_CLOUDY", CloudMostlyCloudy.String())
	assert.Equal(t, "CloudState(9)", CloudState(9).String())
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 9, protowire.BytesType)
	b = protowire.AppendString(b, "future field")
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, "tank")
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(SideFriendly))

	var msg CreateActor
	require.NoError(t, msg.Unmarshal(b))
	assert.Equal(t, CreateActor{Type: "tank", Side: SideFriendly}, msg)
}

func TestUnmarshalWrongWireTypeIsIgnored(t *testing.T) {
	// Density sent as a varint instead of a double.
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 3)

	var msg FogChange
	require.NoError(t, msg.Unmarshal(b))
	assert.Zero(t, msg.Density)
}

func TestUnpackTypeMismatch(t *testing.T) {
	env, err := Pack(&RainChange{Intensity: 0.3})
	require.NoError(t, err)

	err = Unpack(env, &FogChange{})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var rain RainChange
	require.NoError(t, Unpack(env, &rain))
	assert.Equal(t, 0.3, rain.Intensity)
	assert.Equal(t, "type.googleapis.com/simbridge.RainChange", env.TypeURL())
	assert.Equal(t, "simbridge.RainChange", env.TypeName())
}

func TestNegativeEnumRoundTrip(t *testing.T) {
	in := OvercastChange{State: CloudState(-1)}
	b, err := in.Marshal()
	require.NoError(t, err)

	var out OvercastChange
	require.NoError(t, out.Unmarshal(b))
	assert.Equal(t, CloudState(-1), out.State)
	assert.False(t, out.State.Valid())
}
