package stream

// Header is a single response header name/value pair. Order is preserved
// end to end, so emitters receive headers exactly as they were resolved.
type Header struct {
	Name  string
	Value string
}

// Event is one outbound message of a response. A well-behaved handler emits
// exactly one StartEvent followed by zero or more BodyEvents, the last of
// which has More set to false.
type Event interface {
	isEvent()
}

// StartEvent fixes the response status and header set. Once forwarded to the
// transport the headers are committed and cannot be amended.
type StartEvent struct {
	Status  int
	Headers []Header
}

// BodyEvent carries a chunk of the response body. More indicates whether
// further chunks follow.
type BodyEvent struct {
	Bytes []byte
	More  bool
}

func (StartEvent) isEvent() {}
func (BodyEvent) isEvent()  {}

// Emitter is the outbound side of a response channel.
type Emitter interface {
	Emit(event Event) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(event Event) error

func (f EmitterFunc) Emit(event Event) error {
	return f(event)
}

// Recorder is an Emitter that retains every event it receives. It stands in
// for a real transport channel in tests.
type Recorder struct {
	Events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(event Event) error {
	r.Events = append(r.Events, event)
	return nil
}

// Starts returns the start events received so far.
func (r *Recorder) Starts() []StartEvent {
	var starts []StartEvent
	for _, ev := range r.Events {
		if s, ok := ev.(StartEvent); ok {
			starts = append(starts, s)
		}
	}
	return starts
}

// Body concatenates the payload of every body event received so far.
func (r *Recorder) Body() []byte {
	var body []byte
	for _, ev := range r.Events {
		if b, ok := ev.(BodyEvent); ok {
			body = append(body, b.Bytes...)
		}
	}
	return body
}
