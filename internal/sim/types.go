package sim

import (
	"fmt"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
)

// Phase is the controller's run state.
type Phase int

const (
	// Idle: freshly initialized or reset, no step taken since.
	Idle Phase = iota
	Running
	// Paused: stopped after at least one Start, or halted by a fault.
	Paused
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// HistorySample is one probe reading. Step is the zero-based index of the
// completed step that produced it.
type HistorySample struct {
	Step  int     `json:"step"`
	Value float64 `json:"value"`
}

// History holds the probe series of a run. Both series always have the
// same length.
type History struct {
	Pressure    []HistorySample `json:"pressure"`
	Temperature []HistorySample `json:"temperature"`
}

func (h History) Len() int { return len(h.Pressure) }

func (h History) clone() History {
	return History{
		Pressure:    append([]HistorySample(nil), h.Pressure...),
		Temperature: append([]HistorySample(nil), h.Temperature...),
	}
}

// Snapshot is a read-only copy of the controller's state at one instant.
type Snapshot struct {
	Step     int
	Time     float64
	TimeStep float64
	Phase    Phase
	Grid     dynamo.Params
	Probe    dynamo.Cell
	State    *dynamo.State
}

// Observer is notified after every completed step. The snapshot is shared by
// all observers of that step and must not be modified.
type Observer interface {
	OnStep(step int, snap Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, snap Snapshot)

func (f ObserverFunc) OnStep(step int, snap Snapshot) { f(step, snap) }

// Scheduler is the host frame clock. RequestFrame arranges for fn to be called
// once on the next frame; callbacks must never run concurrently.
type Scheduler interface {
	RequestFrame(fn func())
}
