package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"simbridge/internal/protocol"
)

// parseVector reads "x,y,z".
func parseVector(s string) (protocol.Vector3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return protocol.Vector3{}, fmt.Errorf("invalid vector %q: want x,y,z", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return protocol.Vector3{}, fmt.Errorf("invalid vector %q: %w", s, err)
		}
		v[i] = f
	}
	return protocol.Vector3{X: v[0], Y: v[1], Z: v[2]}, nil
}

// parseEntityID reads "site:application:entity".
func parseEntityID(s string) (protocol.EntityIdentifier, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return protocol.EntityIdentifier{}, fmt.Errorf("invalid entity id %q: want site:application:entity", s)
	}
	var n [3]uint32
	for i, p := range parts {
		u, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return protocol.EntityIdentifier{}, fmt.Errorf("invalid entity id %q: %w", s, err)
		}
		n[i] = uint32(u)
	}
	return protocol.EntityIdentifier{Site: n[0], Application: n[1], Entity: n[2]}, nil
}

// parseClock reads "HH:MM" or "HH:MM:SS" as time past midnight.
func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM or HH:MM:SS", s)
	}
	limits := []int{24, 60, 60}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n >= limits[i] {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		d += time.Duration(n) * units[i]
	}
	return d, nil
}

func parseSide(s string) (protocol.ActorSide, error) {
	switch strings.ToLower(s) {
	case "civilian":
		return protocol.SideCivilian, nil
	case "friendly", "blufor":
		return protocol.SideFriendly, nil
	case "enemy", "opfor":
		return protocol.SideEnemy, nil
	default:
		return 0, fmt.Errorf("unknown side %q: want civilian, friendly or enemy", s)
	}
}
