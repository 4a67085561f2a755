package eventlog

import (
	"replisync/internal/model"
	"sync"

	"go.uber.org/zap"
)

// Sink receives events in the order actions are performed.
type Sink interface {
	Emit(event model.Event)
}

type SinkFunc func(event model.Event)

func (f SinkFunc) Emit(event model.Event) {
	f(event)
}

// Fanout forwards every event to each sink in order.
type Fanout []Sink

func (f Fanout) Emit(event model.Event) {
	for _, s := range f {
		if s != nil {
			s.Emit(event)
		}
	}
}

// LogSink writes one structured entry per event.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(event model.Event) {
	fields := make([]zap.Field, 0, 3)
	if event.RelPath != "" {
		fields = append(fields, zap.String("rel", event.RelPath))
	}
	if event.FullPath != "" {
		fields = append(fields, zap.String("path", event.FullPath))
	}
	if d := event.Describe(); d != "" {
		fields = append(fields, zap.String("detail", d))
	}

	s.log.Info(event.Action.String(), fields...)
}

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Actions() []model.Action {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Action, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
