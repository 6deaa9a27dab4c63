package ui

import (
	"errors"
	"strings"
	"testing"

	"langlang/internal/driver"
)

func newModel(units ...string) *progressModel {
	return NewProgressModel("batch", units, nil).(*progressModel)
}

func TestApplyEvents(t *testing.T) {
	m := newModel("a.ll", "b.ll")
	m.applyEvent(driver.Event{Unit: "a.ll", Stage: driver.StageCheck, Status: driver.StatusWorking})
	if got := m.percent(); got < 0.14 || got > 0.16 {
		t.Fatalf("percent = %v", got)
	}
	m.applyEvent(driver.Event{Unit: "a.ll", Stage: driver.StageEval, Status: driver.StatusDone})
	m.applyEvent(driver.Event{Unit: "b.ll", Stage: driver.StageCheck, Status: driver.StatusError, Err: errors.New("boom")})
	if m.percent() != 1.0 || m.finished() != 2 || m.failed != 1 {
		t.Fatalf("percent=%v finished=%d failed=%d", m.percent(), m.finished(), m.failed)
	}

	// a late event must not reopen a finished unit
	m.applyEvent(driver.Event{Unit: "b.ll", Stage: driver.StageLower, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{Unit: "unknown.ll", Status: driver.StatusWorking})
	if m.items[1].status != driver.StatusError || m.failed != 1 {
		t.Fatalf("item = %+v", m.items[1])
	}
}

func TestView(t *testing.T) {
	m := newModel("a.ll", "b.ll")
	m.applyEvent(driver.Event{Unit: "a.ll", Stage: driver.StageLower, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{Unit: "b.ll", Stage: driver.StageCheck, Status: driver.StatusError})
	view := m.View()
	for _, want := range []string{"batch (1/2), 1 failed", "lowering", "error:check", "a.ll", "b.ll"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
	m.done = true
	if !strings.Contains(m.View(), "done: batch") {
		t.Errorf("done view:\n%s", m.View())
	}
	if newModel().View() != "" {
		t.Error("empty model renders output")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a-very-long-name.ll", 10, "a-very-..."},
		{"abcdef", 2, "ab"},
		{"любой", 0, "любой"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
