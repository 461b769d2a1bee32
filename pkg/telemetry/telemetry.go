package telemetry

import (
	"time"

	"go.uber.org/zap"
)

// Event is one pipeline transition: stage name, how many candidates
// survived it and how long it took.
type Event struct {
	Name       string
	Stage      string
	Candidates int
	Duration   time.Duration
	Fields     map[string]interface{}
}

// Sink consumes events. Sinks must never return an error to the pipeline;
// telemetry failures cannot affect results.
type Sink interface {
	Log(event Event)
}

type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Log(event Event) {
	fields := []zap.Field{
		zap.String("stage", event.Stage),
		zap.Int("candidates", event.Candidates),
		zap.Duration("duration", event.Duration),
	}
	for k, v := range event.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	s.logger.Info(event.Name, fields...)
}

// Emitter decouples the orchestrator from the sink through a buffered
// channel. Emit never blocks; when the buffer is full the event is dropped.
type Emitter struct {
	events chan Event
	done   chan struct{}
}

func NewEmitter(sink Sink, buffer int) *Emitter {
	if buffer <= 0 {
		buffer = 256
	}
	e := &Emitter{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(e.done)
		for ev := range e.events {
			sink.Log(ev)
		}
	}()
	return e
}

func (e *Emitter) Emit(event Event) {
	select {
	case e.events <- event:
	default:
	}
}

// Close drains remaining events and stops the consumer goroutine.
func (e *Emitter) Close() {
	close(e.events)
	<-e.done
}
