package trace

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Heartbeat wraps a tracer and periodically reports which units are still
// inside which stage. A heartbeat that keeps naming the same stage for one
// unit points at a hung check or a diverging evaluation.
type Heartbeat struct {
	Tracer
	interval time.Duration

	mu   sync.Mutex
	open map[uint64]openSpan
	beat uint64

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type openSpan struct {
	unit  string
	stage string
	since time.Time
}

// StartHeartbeat starts beating through t every interval. It returns nil
// when t is disabled or interval is not positive; a nil *Heartbeat is a
// valid no-op.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		Tracer:   t,
		interval: interval,
		open:     make(map[uint64]openSpan),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.loop()
	return h
}

// Emit records stage spans as they open and close, then forwards ev.
func (h *Heartbeat) Emit(ev *Event) {
	if ev.Scope == ScopeStage && ev.SpanID != 0 {
		h.mu.Lock()
		switch ev.Kind {
		case KindSpanBegin:
			h.open[ev.SpanID] = openSpan{unit: ev.Unit, stage: ev.Name, since: ev.Time}
		case KindSpanEnd:
			delete(h.open, ev.SpanID)
		}
		h.mu.Unlock()
	}
	h.Tracer.Emit(ev)
}

func (h *Heartbeat) loop() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			h.pulse(now)
		case <-h.stop:
			return
		}
	}
}

func (h *Heartbeat) pulse(now time.Time) {
	h.mu.Lock()
	h.beat++
	detail := fmt.Sprintf("#%d %s", h.beat, describeOpen(h.open, now))
	h.mu.Unlock()
	h.Tracer.Emit(&Event{
		Time:   now,
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		GID:    getGoroutineID(),
		Name:   "heartbeat",
		Detail: detail,
	})
}

// describeOpen lists open stages oldest first: "a.ll/check 1.2s, b.ll/eval 40ms".
func describeOpen(open map[uint64]openSpan, now time.Time) string {
	if len(open) == 0 {
		return "idle"
	}
	spans := make([]openSpan, 0, len(open))
	for _, sp := range open {
		spans = append(spans, sp)
	}
	slices.SortFunc(spans, func(a, b openSpan) int {
		if c := a.since.Compare(b.since); c != 0 {
			return c
		}
		return strings.Compare(a.unit, b.unit)
	})
	parts := make([]string, len(spans))
	for i, sp := range spans {
		unit := sp.unit
		if unit == "" {
			unit = "-"
		}
		parts[i] = fmt.Sprintf("%s/%s %s", unit, sp.stage, now.Sub(sp.since).Round(time.Millisecond))
	}
	return strings.Join(parts, ", ")
}

// Stop ends the beating goroutine and waits for it. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		close(h.stop)
		<-h.done
	})
}

// Close stops the heartbeat, then closes the wrapped tracer.
func (h *Heartbeat) Close() error {
	h.Stop()
	return h.Tracer.Close()
}
