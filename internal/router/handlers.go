package router

import (
	"strings"

	"simbridge/internal/protocol"
	"simbridge/internal/sim"
)

const secondsPerDay = 24 * 60 * 60

func toVec3(v protocol.Vector3) sim.Vec3 {
	return sim.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func toFaction(side protocol.ActorSide) sim.Faction {
	switch side {
	case protocol.SideFriendly:
		return sim.FactionFriendly
	case protocol.SideEnemy:
		return sim.FactionEnemy
	}
	return sim.FactionCivilian
}

func (r *Router) handleLineOfSight(req *protocol.LineOfSightRequest) protocol.Message {
	var observer *sim.Entity
	var observerRef string
	if !req.EntityID.IsZero() {
		observerRef = req.EntityID.String()
		observer = r.facade.QueryEntityByID(sim.EntityID{
			Site:        req.EntityID.Site,
			Application: req.EntityID.Application,
			Entity:      req.EntityID.Entity,
		})
	} else {
		observerRef = req.EntityMarking
		if observerRef == "" {
			return failure("line of sight request names no observer")
		}
		observer = r.facade.QueryEntityByMarking(req.EntityMarking)
	}
	if observer == nil {
		return failure("observer %q not found", observerRef)
	}

	target := toVec3(req.Location)
	visible := r.facade.ComputeLineOfSight(*observer, observer.Location, target)
	r.logger.Debug("line_of_sight_computed",
		"observer", observer.Marking,
		"visible", visible,
	)
	if visible {
		return &protocol.LineOfSightResponse{Visibility: 1}
	}
	return &protocol.LineOfSightResponse{Visibility: 0}
}

func (r *Router) handleOvercast(req *protocol.OvercastChange) protocol.Message {
	if !req.State.Valid() {
		return failure("unsupported cloud state %s", req.State)
	}
	r.logger.Debug("overcast_change",
		"state", req.State.String(),
		"duration", req.Duration,
	)
	r.facade.SetCloudState(sim.CloudState(req.State))
	return success("cloud state set to %s", req.State)
}

func (r *Router) handleFog(req *protocol.FogChange) protocol.Message {
	if !(req.Density >= 0 && req.Density <= 1) {
		return failure("fog density %v outside [0,1]", req.Density)
	}
	visibility := FogVisibility(req.Density)
	r.logger.Debug("fog_change",
		"density", req.Density,
		"visibility", visibility,
		"duration", req.Duration,
	)
	r.facade.SetFog(visibility, toVec3(req.ColorRGB))
	return success("fog visibility set to %.0f m", visibility)
}

func (r *Router) handleRain(req *protocol.RainChange) protocol.Message {
	if !(req.Intensity >= 0 && req.Intensity <= 1) {
		return failure("rain intensity %v outside [0,1]", req.Intensity)
	}
	r.logger.Debug("rain_change",
		"intensity", req.Intensity,
		"duration", req.Duration,
	)
	r.facade.SetRain(req.Intensity)
	return success("rain intensity set to %.2f", req.Intensity)
}

func (r *Router) handleTimeOfDay(req *protocol.TimeOfDayChange) protocol.Message {
	seconds := req.TimePastMidnight.Seconds()
	if seconds < 0 || seconds >= secondsPerDay {
		return failure("time of day %s outside one day", req.TimePastMidnight)
	}
	r.facade.SetTimeOfDay(seconds)
	return success("time of day set to %.0f seconds past midnight", seconds)
}

func (r *Router) handleCreateActor(req *protocol.CreateActor) protocol.Message {
	if strings.TrimSpace(req.Type) == "" {
		return failure("actor type is required")
	}
	created := r.facade.CreateEntity(req.Type, toFaction(req.Side), toVec3(req.Location))
	if created == nil {
		return failure("failed to create actor of type %q", req.Type)
	}
	r.logger.Info("actor_created",
		"type", req.Type,
		"side", req.Side.String(),
		"marking", created.Marking,
	)
	return success("created %s", created.Marking)
}

// Markings that are not present are reported but do not fail the request.
func (r *Router) handleRemoveActors(req *protocol.RemoveActors) protocol.Message {
	if len(req.EntityMarkings) == 0 {
		return failure("no entity markings to remove")
	}

	var missing []string
	for _, marking := range req.EntityMarkings {
		if r.facade.QueryEntityByMarking(marking) == nil {
			missing = append(missing, marking)
		}
	}
	r.facade.RemoveEntitiesByMarking(req.EntityMarkings)

	if len(missing) > 0 {
		r.logger.Info("remove_actors_missing", "markings", missing)
		return success("removed %d actor(s); not found: %s",
			len(req.EntityMarkings)-len(missing), strings.Join(missing, ", "))
	}
	return success("removed %d actor(s)", len(req.EntityMarkings))
}

func (r *Router) handleTeleport(req *protocol.TeleportEntity) protocol.Message {
	if req.EntityMarking == "" {
		return failure("teleport request names no entity")
	}
	r.logger.Debug("teleport_entity",
		"marking", req.EntityMarking,
		"heading", req.Heading,
	)
	if !r.facade.TeleportEntity(req.EntityMarking, toVec3(req.Location)) {
		return failure("failed to teleport entity %q: not found", req.EntityMarking)
	}
	return success("teleported %s", req.EntityMarking)
}

func (r *Router) handleRunScript(req *protocol.RunScript) protocol.Message {
	if strings.TrimSpace(req.ScriptText) == "" {
		return failure("script text is empty")
	}
	if !r.facade.RunScript(req.ExecutorMarking, req.ScriptText) {
		if req.ExecutorMarking != "" {
			return failure("script rejected for executor %q", req.ExecutorMarking)
		}
		return failure("script rejected")
	}
	return success("script executed")
}
