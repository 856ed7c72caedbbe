package router

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"simbridge/internal/protocol"
	"simbridge/internal/sim"
)

// HandlerFunc turns the raw payload bytes of one request into its response.
// It must always return a non-nil Message.
type HandlerFunc func(payload []byte) protocol.Message

// Router dispatches decoded envelopes to handlers keyed by payload type URL.
// It keeps no per-request state and is safe for concurrent use as long as the
// Facade is.
type Router struct {
	facade   sim.Facade
	logger   *slog.Logger
	handlers map[string]HandlerFunc
	stats    *stats
}

func New(facade sim.Facade, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		facade:   facade,
		logger:   logger.With("component", "router"),
		handlers: make(map[string]HandlerFunc),
	}

	register(r.handlers, r.handleLineOfSight)
	register(r.handlers, r.handleOvercast)
	register(r.handlers, r.handleFog)
	register(r.handlers, r.handleRain)
	register(r.handlers, r.handleTimeOfDay)
	register(r.handlers, r.handleCreateActor)
	register(r.handlers, r.handleRemoveActors)
	register(r.handlers, r.handleTeleport)
	register(r.handlers, r.handleRunScript)

	r.stats = newStats(r.handlers)
	return r
}

// register adds the handler for request type T under T's type URL.
func register[T any, PT interface {
	*T
	protocol.Message
}](handlers map[string]HandlerFunc, handle func(PT) protocol.Message) {
	name := PT(new(T)).TypeName()
	handlers[protocol.TypeURL(name)] = func(payload []byte) protocol.Message {
		req := PT(new(T))
		if err := req.Unmarshal(payload); err != nil {
			return failure("malformed %s payload: %v", name, err)
		}
		return handle(req)
	}
}

// Route never returns nil: unknown tags, malformed payloads and handler
// failures all produce a GenericResult with Success=false.
func (r *Router) Route(env *protocol.Envelope) *protocol.Envelope {
	url := env.TypeURL()
	// A frame with no payload field never gets here, the decoder rejects it
	// with ErrMissingPayload. This branch sees a payload whose type URL is
	// empty, or a nil envelope from an in-process caller.
	if url == "" {
		r.logger.Warn("empty_envelope")
		r.stats.unknown.Add(1)
		return r.reply(failure("envelope carries no payload"))
	}

	handle, ok := r.handlers[url]
	if !ok {
		r.logger.Warn("unknown_payload_type", "payload_type", url)
		r.stats.unknown.Add(1)
		return r.reply(RoutingFailure(url))
	}

	r.stats.routed[url].Add(1)
	result := r.invoke(url, handle, env.Payload.GetValue())
	if res, ok := result.(*protocol.GenericResult); ok && !res.Success {
		r.stats.failures.Add(1)
		r.logger.Info("request_failed",
			"payload_type", env.TypeName(),
			"reason", res.Message,
		)
	}
	return r.reply(result)
}

func (r *Router) invoke(url string, handle HandlerFunc, payload []byte) (result protocol.Message) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler_panic",
				"payload_type", url,
				"panic", fmt.Sprint(rec),
			)
			result = failure("internal error while handling %s", url)
		}
	}()
	result = handle(payload)
	if result == nil {
		result = failure("handler for %s produced no result", url)
	}
	return result
}

func (r *Router) reply(msg protocol.Message) *protocol.Envelope {
	env, err := protocol.Pack(msg)
	if err != nil {
		r.logger.Error("response_encode_failed",
			"payload_type", msg.TypeName(),
			"error", err.Error(),
		)
		// GenericResult marshaling cannot fail.
		env, _ = protocol.Pack(failure("failed to encode %s response", msg.TypeName()))
	}
	return env
}

// Handles reports whether a handler is registered for the type URL.
func (r *Router) Handles(typeURL string) bool {
	_, ok := r.handlers[typeURL]
	return ok
}

// RoutingFailure is the result returned for a payload tag with no handler.
func RoutingFailure(typeURL string) *protocol.GenericResult {
	return failure("no handler registered for payload type %q", typeURL)
}

func failure(format string, args ...any) *protocol.GenericResult {
	return &protocol.GenericResult{Success: false, Message: fmt.Sprintf(format, args...)}
}

func success(format string, args ...any) *protocol.GenericResult {
	return &protocol.GenericResult{Success: true, Message: fmt.Sprintf(format, args...)}
}

type stats struct {
	routed   map[string]*atomic.Int64 // fixed key set, read-only after newStats
	unknown  atomic.Int64
	failures atomic.Int64
}

func newStats(handlers map[string]HandlerFunc) *stats {
	s := &stats{routed: make(map[string]*atomic.Int64, len(handlers))}
	for url := range handlers {
		s.routed[url] = &atomic.Int64{}
	}
	return s
}

// Stats is a point-in-time copy of the routing counters.
type Stats struct {
	Routed          map[string]int64 `json:"routed"`
	UnknownPayloads int64            `json:"unknown_payloads"`
	Failures        int64            `json:"failures"`
}

func (r *Router) Stats() Stats {
	snap := Stats{
		Routed:          make(map[string]int64, len(r.stats.routed)),
		UnknownPayloads: r.stats.unknown.Load(),
		Failures:        r.stats.failures.Load(),
	}
	for url, n := range r.stats.routed {
		snap.Routed[trimTypeURL(url)] = n.Load()
	}
	return snap
}

func trimTypeURL(url string) string {
	return url[strings.LastIndexByte(url, '/')+1:]
}
