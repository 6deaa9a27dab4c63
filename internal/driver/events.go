package driver

import "time"

// Stage names one pipeline step as the driver and the CLI see it.
type Stage string

const (
	StageParse Stage = "parse"
	StageCheck Stage = "check"
	StageLower Stage = "lower"
	StageEval  Stage = "eval"
)

// Stages lists the pipeline in execution order.
var Stages = []Stage{StageParse, StageCheck, StageLower, StageEval}

// ParseStage converts a CLI name into a Stage.
func ParseStage(s string) (Stage, bool) {
	for _, st := range Stages {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// index returns the position of s in Stages, or len(Stages) for "".
func (s Stage) index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return len(Stages)
}

// Status captures progress state of one unit.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a unit (or for the whole batch when Unit is empty).
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from several
// goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) { f(ev) }

// ChannelSink forwards events to a channel; the UI reads from it.
type ChannelSink chan<- Event

func (c ChannelSink) OnEvent(ev Event) { c <- ev }

func emit(s ProgressSink, ev Event) {
	if s != nil {
		s.OnEvent(ev)
	}
}
