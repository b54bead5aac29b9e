package conversation

import (
	"strings"

	"github.com/huandu/go-clone"
)

// Dialogue is an ordered sequence of turns. Insertion order is conversational
// order: turns are never reordered or deduplicated.
//
// The zero value is an empty dialogue ready to use.
type Dialogue struct {
	turns []Turn
}

func NewDialogue(turns ...Turn) Dialogue {
	d := Dialogue{}
	for _, t := range turns {
		d.Append(t)
	}
	return d
}

func (d *Dialogue) Append(t Turn) {
	d.turns = append(d.turns, t)
}

func (d *Dialogue) Clear() {
	d.turns = nil
}

func (d Dialogue) Len() int {
	return len(d.turns)
}

func (d Dialogue) IsEmpty() bool {
	return len(d.turns) == 0
}

// Turns returns a copy of the turns in order.
func (d Dialogue) Turns() []Turn {
	if len(d.turns) == 0 {
		return nil
	}
	ret := make([]Turn, len(d.turns))
	copy(ret, d.turns)
	return ret
}

// KeepLast drops the oldest turns so that at most n remain, and returns how
// many were dropped.
func (d *Dialogue) KeepLast(n int) int {
	if n < 0 {
		n = 0
	}
	dropped := len(d.turns) - n
	if dropped <= 0 {
		return 0
	}
	kept := make([]Turn, n)
	copy(kept, d.turns[dropped:])
	d.turns = kept
	return dropped
}

// Clone returns a deep copy that shares no storage with d.
func (d Dialogue) Clone() Dialogue {
	return clone.Clone(d).(Dialogue)
}

// String concatenates the rendered turns. Each turn carries its own trailing
// newline, so nothing is inserted between them.
func (d Dialogue) String() string {
	var sb strings.Builder
	for _, t := range d.turns {
		sb.WriteString(t.String())
	}
	return sb.String()
}
