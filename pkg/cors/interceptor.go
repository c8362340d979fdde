package cors

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/corsgate/corsgate/pkg/stream"
	"github.com/sirupsen/logrus"
)

// fallbackBody is the payload of the synthesized error response.
const fallbackBody = `{"message": "Internal Server Error"}`

type channelState int

const (
	awaitingStart channelState = iota
	started
	complete
)

// Handler drives zero or more events onto the given emitter and either
// returns normally or returns an error. A panic inside the handler is
// treated the same as a returned error by Drive.
type Handler func(ctx context.Context, emit stream.Emitter) error

// Interceptor decorates a transport emitter and guarantees that the resolved
// CORS headers are present on the response-start event, whether that event
// comes from the downstream handler or from the interceptor's own fault
// synthesis. One Interceptor serves exactly one request.
type Interceptor struct {
	next     stream.Emitter
	resolved []stream.Header
	logger   *logrus.Logger
	state    channelState
	faulted  bool
}

func NewInterceptor(next stream.Emitter, resolved []stream.Header, logger *logrus.Logger) *Interceptor {
	return &Interceptor{
		next:     next,
		resolved: resolved,
		logger:   logger,
	}
}

// Emit forwards an event to the transport, injecting the resolved headers
// into the first response-start it observes. Injected headers win on name
// collision: a handler unaware of CORS must not be able to suppress the
// guarantee. Out-of-order events are forwarded unchanged; the contract is
// inject-when-seen, not validate-ordering.
func (i *Interceptor) Emit(event stream.Event) error {
	switch ev := event.(type) {
	case stream.StartEvent:
		if i.state != awaitingStart {
			return i.next.Emit(event)
		}
		ev.Headers = mergeHeaders(ev.Headers, i.resolved)
		i.state = started
		return i.next.Emit(ev)
	case stream.BodyEvent:
		if i.state == started && !ev.More {
			i.state = complete
		}
		return i.next.Emit(event)
	default:
		return i.next.Emit(event)
	}
}

// Started reports whether a response-start has been forwarded to the
// transport.
func (i *Interceptor) Started() bool {
	return i.state != awaitingStart
}

// Faulted reports whether the downstream handler failed.
func (i *Interceptor) Faulted() bool {
	return i.faulted
}

// Drive invokes the downstream handler, routing its events through the
// interceptor. A returned error or a panic is absorbed by the fault path and
// never propagates to the caller.
func (i *Interceptor) Drive(ctx context.Context, handler Handler) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panic: %v", r)
			}
		}()
		return handler(ctx, i)
	}()

	if err != nil {
		i.fault(err)
	}
}

// fault handles an unrecovered downstream error. If no response-start has
// been forwarded yet, a generic 500 JSON response is synthesized and pushed
// back through Emit so the resolved headers are injected by the same code
// path as a normal response. If the response had already started, the
// headers are transport-committed and the channel simply terminates: a
// second response-start must never reach the transport.
func (i *Interceptor) fault(err error) {
	i.faulted = true

	if i.state != awaitingStart {
		i.logger.WithError(err).Error("downstream handler failed mid-stream, terminating response channel")
		return
	}

	i.logger.WithError(err).Error("downstream handler failed, synthesizing error response")

	startErr := i.Emit(stream.StartEvent{
		Status: http.StatusInternalServerError,
		Headers: []stream.Header{
			{Name: "Content-Type", Value: "application/json"},
		},
	})
	if startErr != nil {
		i.logger.WithError(startErr).Error("failed to emit synthesized response start")
		return
	}
	if bodyErr := i.Emit(stream.BodyEvent{Bytes: []byte(fallbackBody), More: false}); bodyErr != nil {
		i.logger.WithError(bodyErr).Error("failed to emit synthesized response body")
	}
}

// mergeHeaders overlays injected onto base. An injected header replaces a
// base header of the same name; header names compare case-insensitively.
func mergeHeaders(base, injected []stream.Header) []stream.Header {
	merged := make([]stream.Header, 0, len(base)+len(injected))
	for _, h := range base {
		if !containsHeader(injected, h.Name) {
			merged = append(merged, h)
		}
	}
	return append(merged, injected...)
}

func containsHeader(headers []stream.Header, name string) bool {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}
