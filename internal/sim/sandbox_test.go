package sim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandboxEntities(t *testing.T) {
	sb := NewSandbox(nil)
	alpha := sb.Spawn("alpha", "rifleman", FactionFriendly, Vec3{X: 1})

	got := sb.QueryEntityByMarking("alpha")
	require.NotNil(t, got)
	assert.Equal(t, alpha, *got)

	byID := sb.QueryEntityByID(alpha.ID)
	require.NotNil(t, byID)
	assert.Equal(t, "alpha", byID.Marking)

	assert.Nil(t, sb.QueryEntityByMarking("missing"))
	assert.Nil(t, sb.QueryEntityByID(EntityID{Site: 9, Application: 9, Entity: 9}))

	created := sb.CreateEntity("Truck", FactionEnemy, Vec3{Y: 5})
	require.NotNil(t, created)
	assert.Equal(t, "truck-2", created.Marking)
	assert.Equal(t, 2, sb.EntityCount())

	assert.Nil(t, sb.CreateEntity("  ", FactionCivilian, Vec3{}))

	assert.True(t, sb.TeleportEntity("alpha", Vec3{X: 50}))
	assert.Equal(t, Vec3{X: 50}, sb.QueryEntityByMarking("alpha").Location)
	assert.False(t, sb.TeleportEntity("ghost", Vec3{}))

	sb.RemoveEntitiesByMarking([]string{"alpha", "ghost"})
	assert.Nil(t, sb.QueryEntityByMarking("alpha"))
	assert.Equal(t, 1, sb.EntityCount())
}

func TestSandboxReturnsCopies(t *testing.T) {
	sb := NewSandbox(nil)
	sb.Spawn("alpha", "rifleman", FactionFriendly, Vec3{})

	e := sb.QueryEntityByMarking("alpha")
	e.Location = Vec3{X: 999}
	assert.Equal(t, Vec3{}, sb.QueryEntityByMarking("alpha").Location)
}

func TestSandboxWeatherAndLineOfSight(t *testing.T) {
	sb := NewSandbox(nil)
	observer := sb.Spawn("eye", "observer", FactionFriendly, Vec3{})

	assert.True(t, sb.ComputeLineOfSight(observer, Vec3{}, Vec3{X: 20000}))

	sb.SetFog(1600, Vec3{X: 0.5})
	assert.False(t, sb.ComputeLineOfSight(observer, Vec3{}, Vec3{X: 2000}))
	assert.True(t, sb.ComputeLineOfSight(observer, Vec3{}, Vec3{X: 1200}))

	sb.SetCloudState(CloudOvercast)
	sb.SetRain(0.4)
	sb.SetTimeOfDay(3600)

	assert.Equal(t, Weather{
		Clouds:        CloudOvercast,
		FogVisibility: 1600,
		FogColor:      Vec3{X: 0.5},
		Rain:          0.4,
		TimeOfDay:     3600,
	}, sb.Weather())
}

func TestSandboxRunScript(t *testing.T) {
	sb := NewSandbox(nil)
	sb.Spawn("player", "rifleman", FactionFriendly, Vec3{})

	assert.True(t, sb.RunScript("player", "hint 1"))
	assert.True(t, sb.RunScript("", "hint 2"))
	assert.False(t, sb.RunScript("nobody", "hint 3"))

	assert.Equal(t, []ScriptRun{
		{Executor: "player", Text: "hint 1"},
		{Executor: "", Text: "hint 2"},
	}, sb.Scripts())
}

func TestSandboxConcurrentUse(t *testing.T) {
	sb := NewSandbox(nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := sb.CreateEntity("drone", FactionEnemy, Vec3{})
			sb.TeleportEntity(e.Marking, Vec3{Z: 100})
			sb.SetRain(0.5)
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, sb.EntityCount())
}
