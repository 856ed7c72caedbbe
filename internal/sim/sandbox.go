package sim

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

const (
	// ClearVisibility is the fog-free visibility range in meters.
	ClearVisibility = 30000.0

	sandboxSite        = 1
	sandboxApplication = 3001
)

var _ Facade = (*Sandbox)(nil)

type Weather struct {
	Clouds        CloudState `json:"clouds"`
	FogVisibility float64    `json:"fog_visibility"`
	FogColor      Vec3       `json:"fog_color"`
	Rain          float64    `json:"rain"`
	TimeOfDay     float64    `json:"time_of_day"`
}

type ScriptRun struct {
	Executor string
	Text     string
}

// Sandbox is an in-memory Facade. Every call takes a single mutex, so it is
// safe for concurrent connections.
//
// Line of sight is clear whenever the target lies within the current fog
// visibility range of the observer.
type Sandbox struct {
	mu         sync.Mutex
	logger     *slog.Logger
	nextEntity uint32
	entities   map[string]*Entity // keyed by marking
	weather    Weather
	scripts    []ScriptRun
}

func NewSandbox(logger *slog.Logger) *Sandbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sandbox{
		logger:   logger.With("component", "sandbox"),
		entities: make(map[string]*Entity),
		weather: Weather{
			FogVisibility: ClearVisibility,
			TimeOfDay:     12 * 3600,
		},
	}
}

// Spawn adds an entity under a caller-chosen marking, replacing any entity
// that already uses it.
func (s *Sandbox) Spawn(marking, entityType string, faction Faction, location Vec3) Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.add(marking, entityType, faction, location)
}

func (s *Sandbox) add(marking, entityType string, faction Faction, location Vec3) *Entity {
	s.nextEntity++
	e := &Entity{
		ID:       EntityID{Site: sandboxSite, Application: sandboxApplication, Entity: s.nextEntity},
		Marking:  marking,
		Type:     entityType,
		Faction:  faction,
		Location: location,
	}
	s.entities[marking] = e
	return e
}

func (s *Sandbox) QueryEntityByID(id EntityID) *Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entities {
		if e.ID == id {
			found := *e
			return &found
		}
	}
	return nil
}

func (s *Sandbox) QueryEntityByMarking(marking string) *Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[marking]; ok {
		found := *e
		return &found
	}
	return nil
}

func (s *Sandbox) ComputeLineOfSight(observer Entity, from, to Vec3) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return from.Distance(to) <= s.weather.FogVisibility
}

func (s *Sandbox) SetCloudState(state CloudState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather.Clouds = state
}

func (s *Sandbox) SetFog(visibility float64, color Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather.FogVisibility = visibility
	s.weather.FogColor = color
}

func (s *Sandbox) SetRain(intensity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather.Rain = intensity
}

func (s *Sandbox) SetTimeOfDay(secondsPastMidnight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather.TimeOfDay = secondsPastMidnight
}

func (s *Sandbox) CreateEntity(entityType string, faction Faction, location Vec3) *Entity {
	if strings.TrimSpace(entityType) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	marking := fmt.Sprintf("%s-%d", strings.ToLower(entityType), s.nextEntity+1)
	created := *s.add(marking, entityType, faction, location)
	s.logger.Debug("entity_created", "marking", marking, "id", created.ID.String())
	return &created
}

func (s *Sandbox) RemoveEntitiesByMarking(markings []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, marking := range markings {
		delete(s.entities, marking)
	}
}

func (s *Sandbox) TeleportEntity(marking string, location Vec3) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[marking]
	if !ok {
		return false
	}
	e.Location = location
	return true
}

func (s *Sandbox) RunScript(executorMarking, scriptText string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if executorMarking != "" {
		if _, ok := s.entities[executorMarking]; !ok {
			return false
		}
	}
	s.scripts = append(s.scripts, ScriptRun{Executor: executorMarking, Text: scriptText})
	return true
}

func (s *Sandbox) Weather() Weather {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weather
}

func (s *Sandbox) Scripts() []ScriptRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ScriptRun(nil), s.scripts...)
}

func (s *Sandbox) EntityCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities)
}
