// Package sim describes the simulation engine capabilities the bridge drives,
// plus an in-memory engine used for standalone runs and tests.
package sim

import (
	"fmt"
	"math"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Distance(o Vec3) float64 {
	return math.Sqrt((v.X-o.X)*(v.X-o.X) + (v.Y-o.Y)*(v.Y-o.Y) + (v.Z-o.Z)*(v.Z-o.Z))
}

type EntityID struct {
	Site        uint32
	Application uint32
	Entity      uint32
}

func (id EntityID) String() string {
	return fmt.Sprintf("%d:%d:%d", id.Site, id.Application, id.Entity)
}

type Faction int

const (
	FactionCivilian Faction = iota
	FactionFriendly
	FactionEnemy
)

func (f Faction) String() string {
	switch f {
	case FactionCivilian:
		return "civilian"
	case FactionFriendly:
		return "friendly"
	case FactionEnemy:
		return "enemy"
	}
	return fmt.Sprintf("faction(%d)", int(f))
}

type CloudState int

const (
	CloudClear CloudState = iota
	CloudMostlyClear
	CloudPartlyCloudy
	CloudCloudy
	CloudMostlyCloudy
	CloudOvercast
	CloudThunderstorm
)

type Entity struct {
	ID       EntityID
	Marking  string
	Type     string
	Faction  Faction
	Location Vec3
}

// Facade is the capability surface of the simulation engine.
//
// The bridge calls it from one goroutine per client connection and holds no
// lock of its own, so implementations must be safe for concurrent use. If the
// underlying engine is not reentrant the implementation has to serialize
// calls itself.
//
// Lookups return nil when nothing matches. Boolean results report whether the
// engine carried out the operation.
type Facade interface {
	QueryEntityByID(id EntityID) *Entity
	QueryEntityByMarking(marking string) *Entity
	ComputeLineOfSight(observer Entity, from, to Vec3) bool

	SetCloudState(state CloudState)
	SetFog(visibility float64, color Vec3)
	SetRain(intensity float64)
	SetTimeOfDay(secondsPastMidnight float64)

	CreateEntity(entityType string, faction Faction, location Vec3) *Entity
	RemoveEntitiesByMarking(markings []string)
	TeleportEntity(marking string, location Vec3) bool
	RunScript(executorMarking, scriptText string) bool
}
