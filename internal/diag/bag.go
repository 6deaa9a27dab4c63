package diag

import (
	"errors"
	"fmt"
	"sort"
)

type Bag struct {
	items []Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 100
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 16)),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddError converts a stage error into a diagnostic. Errors that do not
// describe themselves are reported under UnknownCode.
func (b *Bag) AddError(stage Stage, err error) bool {
	if err == nil {
		return false
	}
	return b.Add(FromError(stage, err))
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag.
// Увеличивает max, если нужно вместить все элементы.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if newTotal > b.max {
		b.max = newTotal
	}
	b.items = append(b.items, other.items...)
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc)
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i].Primary, b.items[j].Primary
		if di.File != dj.File {
			return di.File < dj.File
		}
		if di.StartLine != dj.StartLine {
			return di.StartLine < dj.StartLine
		}
		if di.StartCol != dj.StartCol {
			return di.StartCol < dj.StartCol
		}
		if b.items[i].Severity != b.items[j].Severity {
			return b.items[i].Severity > b.items[j].Severity
		}
		return b.items[i].Code < b.items[j].Code
	})
}

// FromError maps an error to a diagnostic.
func FromError(stage Stage, err error) Diagnostic {
	var d Diagnoser
	if errors.As(err, &d) {
		out := d.Diagnostic()
		if out.Stage == StageUnknown {
			out.Stage = stage
		}
		return out
	}
	return Diagnostic{
		Severity: SevError,
		Code:     UnknownCode,
		Stage:    stage,
		Message:  err.Error(),
	}
}

// Short renders one diagnostic as a single stable line.
func Short(d Diagnostic) string {
	loc := d.Primary.String()
	if d.Primary.IsZero() && d.NodeID != 0 {
		loc = fmt.Sprintf("node#%d", d.NodeID)
	}
	return fmt.Sprintf("%s %s %s: %s", loc, d.Severity, d.Code.ID(), d.Message)
}
